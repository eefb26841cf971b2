package gateway

import (
	"context"

	"bugout/internal/delivery/stream"
	"bugout/internal/domain"
)

// Register binds the events the gateway forwards to its clients.
func (s *Server) Register(r *stream.Router) {
	r.Handle(s.topics.MoveMadeEv, stream.JSON(s.onMoveMade))
	r.Handle(s.topics.MoveRejectedEv, stream.JSON(s.onMoveRejected))
	r.Handle(s.topics.GameReadyEv, stream.JSON(s.onGameReady))
	r.Handle(s.topics.WaitForOpponentEv, stream.JSON(s.onWaitForOpponent))
	r.Handle(s.topics.PrivateGameRejectedEv, stream.JSON(s.onPrivateGameRejected))
	r.Handle(s.topics.ColorsChosenEv, stream.JSON(s.onColorsChosen))
	r.Handle(s.topics.BotAttachedEv, stream.JSON(s.onBotAttached))
	r.Handle(s.topics.MoveUndoneEv, stream.JSON(s.onMoveUndone))
	r.Handle(s.topics.HistoryProvidedEv, stream.JSON(s.onHistoryProvided))
}

func (s *Server) toGame(game domain.GameID, typ string, payload interface{}) {
	for _, sess := range s.hub.ForGame(game) {
		s.send(sess, typ, payload)
	}
}

func (s *Server) toClient(client domain.ClientID, typ string, payload interface{}) {
	for _, sess := range s.hub.ForClient(client) {
		s.send(sess, typ, payload)
	}
}

// enter moves every session of the client into the game.
func (s *Server) enter(client domain.ClientID, game domain.GameID) {
	for _, sess := range s.hub.ForClient(client) {
		s.hub.Join(sess, game)
		id := sess.id
		s.storeOp("set current game", func(ctx context.Context) error {
			return s.sessions.SetCurrentGame(ctx, id, game)
		})
	}
}

func (s *Server) onMoveMade(_ context.Context, ev domain.MoveMade) error {
	s.monitor.Observe()
	s.toGame(ev.GameID, EventMoveMade, ev)
	return nil
}

func (s *Server) onMoveRejected(_ context.Context, ev domain.MoveRejected) error {
	s.monitor.Observe()
	s.toGame(ev.GameID, EventMoveRejected, ev)
	return nil
}

func (s *Server) onGameReady(_ context.Context, ev domain.GameReady) error {
	s.monitor.Observe()
	for _, client := range ev.Players {
		s.enter(client, ev.GameID)
	}
	s.toGame(ev.GameID, EventGameReady, ev)
	return nil
}

func (s *Server) onWaitForOpponent(_ context.Context, ev domain.WaitForOpponent) error {
	s.monitor.Observe()
	s.enter(ev.ClientID, ev.GameID)
	s.toClient(ev.ClientID, EventWaitForOpponent, ev)
	return nil
}

func (s *Server) onPrivateGameRejected(_ context.Context, ev domain.PrivateGameRejected) error {
	s.monitor.Observe()
	s.toClient(ev.ClientID, EventPrivateGameRejected, ev)
	return nil
}

func (s *Server) onColorsChosen(_ context.Context, ev domain.ColorsChosen) error {
	s.monitor.Observe()
	for _, sess := range s.hub.ForGame(ev.GameID) {
		switch sess.clientID {
		case ev.Black:
			sess.setColor(domain.Black)
		case ev.White:
			sess.setColor(domain.White)
		}
		s.send(sess, EventColorsChosen, ev)
	}
	return nil
}

func (s *Server) onBotAttached(_ context.Context, ev domain.BotAttached) error {
	s.monitor.Observe()
	s.toGame(ev.GameID, EventBotAttached, ev)
	return nil
}

func (s *Server) onMoveUndone(_ context.Context, ev domain.MoveUndone) error {
	s.monitor.Observe()
	s.toGame(ev.GameID, EventMoveUndone, ev)
	return nil
}

func (s *Server) onHistoryProvided(_ context.Context, ev domain.HistoryProvided) error {
	s.monitor.Observe()
	s.toGame(ev.GameID, EventHistoryProvided, ev)
	return nil
}
