package gateway

import (
	"sync"

	"github.com/samber/lo"

	"bugout/internal/domain"
)

// Hub indexes live sessions by id, client and game.
type Hub struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*Session
	byClient map[domain.ClientID]map[domain.SessionID]*Session
	byGame   map[domain.GameID]map[domain.SessionID]*Session
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[domain.SessionID]*Session),
		byClient: make(map[domain.ClientID]map[domain.SessionID]*Session),
		byGame:   make(map[domain.GameID]map[domain.SessionID]*Session),
	}
}

func (h *Hub) Add(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.id] = s
	index(h.byClient, s.clientID, s)
}

func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s.id)
	unindex(h.byClient, s.clientID, s)
	if g, ok := s.Game(); ok {
		unindex(h.byGame, g, s)
	}
}

// Join moves the session into a game, leaving its previous one.
func (h *Hub) Join(s *Session, game domain.GameID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, live := h.sessions[s.id]; !live {
		return
	}
	if old, ok := s.Game(); ok {
		if old == game {
			return
		}
		unindex(h.byGame, old, s)
	}
	s.setGame(game)
	index(h.byGame, game, s)
}

func (h *Hub) ForClient(id domain.ClientID) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Values(h.byClient[id])
}

func (h *Hub) ForGame(id domain.GameID) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Values(h.byGame[id])
}

func (h *Hub) All() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Values(h.sessions)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func index[K comparable](m map[K]map[domain.SessionID]*Session, k K, s *Session) {
	set, ok := m[k]
	if !ok {
		set = make(map[domain.SessionID]*Session)
		m[k] = set
	}
	set[s.id] = s
}

func unindex[K comparable](m map[K]map[domain.SessionID]*Session, k K, s *Session) {
	set, ok := m[k]
	if !ok {
		return
	}
	delete(set, s.id)
	if len(set) == 0 {
		delete(m, k)
	}
}
