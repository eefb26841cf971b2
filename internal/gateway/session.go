package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bugout/internal/domain"
)

const sendBuffer = 64

// Session is one websocket connection. A client may hold several.
type Session struct {
	id       domain.SessionID
	clientID domain.ClientID
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	once     sync.Once

	mu       sync.Mutex
	game     *domain.GameID
	color    *domain.Player
	lastPong time.Time
}

func newSession(id domain.SessionID, client domain.ClientID, conn *websocket.Conn, now time.Time) *Session {
	return &Session{
		id:       id,
		clientID: client,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		lastPong: now,
	}
}

func (s *Session) ID() domain.SessionID {
	return s.id
}

func (s *Session) ClientID() domain.ClientID {
	return s.clientID
}

// Enqueue queues msg for the write pump. It reports false when the session
// is closed or its buffer is full.
func (s *Session) Enqueue(msg []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
}

func (s *Session) Game() (domain.GameID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return domain.GameID{}, false
	}
	return *s.game, true
}

func (s *Session) setGame(id domain.GameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil || *s.game != id {
		s.color = nil
	}
	s.game = &id
}

// Color is the color this session plays in its current game, once known.
func (s *Session) Color() (domain.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.color == nil {
		return 0, false
	}
	return *s.color, true
}

func (s *Session) setColor(p domain.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = &p
}

func (s *Session) touch(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPong = at
}

func (s *Session) LastPong() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPong
}
