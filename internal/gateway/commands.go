package gateway

import (
	"context"
	"time"

	"bugout/internal/domain"
)

const statusTimeout = time.Second

// handleClient translates one client message into a bus command. Game
// commands are keyed by game id, the rest by client id.
func (s *Server) handleClient(sess *Session, msg ClientMessage) {
	client := sess.clientID.String()
	switch p := msg.Payload.(type) {
	case *makeMoveMsg:
		player, ok := s.playerFor(sess, p.GameID, p.Player)
		if !ok {
			s.log.Warnw("move without a known color", "session", sess.id, "game", p.GameID)
			return
		}
		s.hub.Join(sess, p.GameID)
		s.enqueue(s.topics.MakeMoveCmd, p.GameID.String(), domain.MakeMoveCommand{
			GameID: p.GameID,
			ReqID:  p.ReqID,
			Player: player,
			Coord:  p.Coord,
		})
	case *gameMsg:
		s.enqueue(s.topics.JoinPrivateGameCmd, client, domain.JoinPrivateGame{GameID: p.GameID, ClientID: sess.clientID})
	case *createGameMsg:
		visibility := p.Visibility
		if !visibility.Valid() {
			visibility = domain.Public
		}
		s.enqueue(s.topics.CreateGameCmd, client, domain.CreateGame{ClientID: sess.clientID, Visibility: visibility})
	case *colorPrefMsg:
		if !p.ColorPref.Valid() {
			s.log.Warnw("unknown color preference", "session", sess.id, "pref", p.ColorPref)
			return
		}
		s.enqueue(s.topics.ChooseColorPrefCmd, client, domain.ChooseColorPref{
			ClientID:  sess.clientID,
			SessionID: sess.id,
			ColorPref: p.ColorPref,
		})
	case *heartbeatMsg:
		kind := p.HeartbeatType
		if kind == "" {
			kind = domain.UserInterfaceBeep
		}
		s.enqueue(s.topics.ClientHeartbeat, client, domain.ClientHeartbeat{ClientID: sess.clientID, HeartbeatType: kind})
	case *provideHistoryMsg:
		s.hub.Join(sess, p.GameID)
		s.enqueue(s.topics.ProvideHistoryCmd, p.GameID.String(), domain.ProvideHistory{GameID: p.GameID, ReqID: p.ReqID})
	case *attachBotMsg:
		if !p.Player.Valid() {
			s.log.Warnw("attach bot without a color", "session", sess.id, "game", p.GameID)
			return
		}
		s.hub.Join(sess, p.GameID)
		s.monitor.Boot()
		s.enqueue(s.topics.AttachBotCmd, p.GameID.String(), domain.AttachBot{GameID: p.GameID, Player: p.Player})
	case *undoMoveMsg:
		player, ok := s.playerFor(sess, p.GameID, p.Player)
		if !ok {
			s.log.Warnw("undo without a known color", "session", sess.id, "game", p.GameID)
			return
		}
		s.enqueue(s.topics.UndoMoveCmd, p.GameID.String(), domain.UndoMove{GameID: p.GameID, Player: player, ReqID: p.ReqID})
	default:
		switch msg.Type {
		case TypeFindPublicGame:
			s.enqueue(s.topics.FindPublicGameCmd, client, domain.FindPublicGame{ClientID: sess.clientID})
		case TypeRequestIdleStatus:
			ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
			defer cancel()
			status, err := s.monitor.Status(ctx)
			if err != nil {
				s.log.Warnw("idle status unavailable", "err", err)
				return
			}
			s.send(sess, EventIdleStatusResponse, status)
		}
	}
}

// playerFor prefers the color assigned to the session for this game and
// falls back to the one named in the message.
func (s *Server) playerFor(sess *Session, game domain.GameID, named *domain.Player) (domain.Player, bool) {
	if current, ok := sess.Game(); ok && current == game {
		if color, ok := sess.Color(); ok {
			return color, true
		}
	}
	if named != nil && named.Valid() {
		return *named, true
	}
	return 0, false
}
