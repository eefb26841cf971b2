package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"bugout/internal/bus"
	"bugout/internal/domain"
	"bugout/internal/domain/sgf"
	errs "bugout/internal/errors"
	"bugout/internal/httpresponse"
	repo "bugout/internal/repository"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxMessage   = 64 << 10
	outboundSize = 256
	storeTimeout = 2 * time.Second
)

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v interface{}) error
}

type SessionStore interface {
	StoreSession(ctx context.Context, s repo.Session) error
	SetCurrentGame(ctx context.Context, id domain.SessionID, game domain.GameID) error
	TouchPong(ctx context.Context, id domain.SessionID, at time.Time) error
	DeleteSession(ctx context.Context, id domain.SessionID) error
}

type StateStore interface {
	Get(ctx context.Context, id domain.GameID) (domain.GameState, error)
}

type outbound struct {
	topic   string
	key     string
	payload interface{}
}

// Server terminates client websockets and bridges them to the bus.
type Server struct {
	log         *zap.SugaredLogger
	topics      bus.Topics
	hub         *Hub
	monitor     *IdleMonitor
	sessions    SessionStore
	states      StateStore
	pub         Publisher
	out         chan outbound
	idleTimeout time.Duration
	upgrader    websocket.Upgrader
	now         func() time.Time
}

func NewServer(log *zap.SugaredLogger, topics bus.Topics, pub Publisher, sessions SessionStore, states StateStore, monitor *IdleMonitor, idleTimeout time.Duration) *Server {
	return &Server{
		log:         log,
		topics:      topics,
		hub:         NewHub(),
		monitor:     monitor,
		sessions:    sessions,
		states:      states,
		pub:         pub,
		out:         make(chan outbound, outboundSize),
		idleTimeout: idleTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now: time.Now,
	}
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/gateway", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Get("/idle-status", s.handleIdleStatus)
	r.Get("/games/{gameId}/sgf", s.handleSGF)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, map[string]int{"sessions": s.hub.Len()})
}

func (s *Server) handleIdleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.monitor.Status(r.Context())
	if err != nil {
		s.log.Warnw("idle status unavailable", "err", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, status)
}

func (s *Server) handleSGF(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseGameID(chi.URLParam(r, "gameId"))
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}
	state, err := s.states.Get(r.Context(), id)
	switch {
	case errors.Is(err, errs.ErrGameNotFound):
		httpresponse.WriteResponseWithStatus(w, http.StatusNotFound, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	case err != nil:
		s.log.Errorw("load game for sgf", "game", id, "err", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	record := sgf.Serialize(sgf.FromGameState(state, "", "", s.now().Format("2006-01-02")))
	w.Header().Set("Content-Type", "application/x-go-sgf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(record))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	client := domain.NewClientID()
	if raw := r.URL.Query().Get("clientId"); raw != "" {
		if parsed, err := domain.ParseClientID(raw); err == nil {
			client = parsed
		}
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "err", err)
		return
	}
	sess := newSession(domain.NewSessionID(), client, conn, s.now())
	s.hub.Add(sess)
	s.storeOp("store session", func(ctx context.Context) error {
		return s.sessions.StoreSession(ctx, repo.Session{ID: sess.id, ClientID: client, LastPongAt: sess.LastPong()})
	})
	s.log.Infow("session opened", "session", sess.id, "client", client)

	s.send(sess, EventHello, helloEvent{ClientID: client, SessionID: sess.id})
	go s.writePump(sess)
	s.readPump(sess)
}

func (s *Server) readPump(sess *Session) {
	defer s.disconnect(sess)
	conn := sess.conn
	conn.SetReadLimit(maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		s.onPong(sess)
		return nil
	})
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Infow("session read failed", "session", sess.id, "err", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		msg, err := DecodeClientMessage(raw)
		if err != nil {
			s.log.Warnw("dropping client message", "session", sess.id, "err", err)
			continue
		}
		s.handleClient(sess, msg)
	}
}

func (s *Server) writePump(sess *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sess.Close()
	}()
	conn := sess.conn
	for {
		select {
		case <-sess.done:
			return
		case msg := <-sess.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Infow("session write failed", "session", sess.id, "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnect forgets a session. The bot host is reported idle once the
// last session is gone.
func (s *Server) disconnect(sess *Session) {
	s.hub.Remove(sess)
	if s.hub.Len() == 0 {
		s.monitor.Shutdown()
	}
	sess.Close()
	s.storeOp("delete session", func(ctx context.Context) error {
		return s.sessions.DeleteSession(ctx, sess.id)
	})
	s.log.Infow("session closed", "session", sess.id, "client", sess.clientID)
}

func (s *Server) onPong(sess *Session) {
	at := s.now()
	sess.touch(at)
	s.storeOp("touch pong", func(ctx context.Context) error {
		return s.sessions.TouchPong(ctx, sess.id, at)
	})
	s.enqueue(s.topics.ClientHeartbeat, sess.clientID.String(), domain.ClientHeartbeat{
		ClientID:      sess.clientID,
		HeartbeatType: domain.WebSocketPong,
	})
}

// send encodes one event and queues it on a session.
func (s *Server) send(sess *Session, typ string, payload interface{}) {
	msg, err := EncodeEvent(typ, payload)
	if err != nil {
		s.log.Errorw("encode event", "type", typ, "err", err)
		return
	}
	if !sess.Enqueue(msg) {
		s.log.Warnw("session buffer full, dropping event", "session", sess.id, "type", typ)
	}
}

func (s *Server) storeOp(op string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		s.log.Warnw("session store", "op", op, "err", err)
	}
}

// enqueue hands a command to the publisher goroutine without blocking. A
// full buffer drops the command with a warning.
func (s *Server) enqueue(topic, key string, payload interface{}) {
	select {
	case s.out <- outbound{topic: topic, key: key, payload: payload}:
	default:
		s.log.Warnw("outbound buffer full, dropping command", "topic", topic, "key", key)
	}
}

// RunPublisher drains the outbound buffer onto the bus until ctx is done.
func (s *Server) RunPublisher(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case o := <-s.out:
			if err := s.pub.PublishJSON(ctx, o.topic, o.key, o.payload); err != nil {
				if errs.IsFatal(err) {
					return err
				}
				s.log.Warnw("publish command", "topic", o.topic, "err", err)
			}
		}
	}
}

// RunSweeper closes sessions whose last pong is older than the idle timeout.
func (s *Server) RunSweeper(ctx context.Context) error {
	interval := s.idleTimeout / 4
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Server) sweep() {
	deadline := s.now().Add(-s.idleTimeout)
	for _, sess := range s.hub.All() {
		if sess.LastPong().Before(deadline) {
			s.log.Infow("closing idle session", "session", sess.id, "lastPong", sess.LastPong())
			sess.Close()
		}
	}
}

// CloseAll drops every live session.
func (s *Server) CloseAll() {
	for _, sess := range s.hub.All() {
		sess.Close()
	}
}
