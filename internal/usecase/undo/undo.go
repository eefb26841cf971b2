package undo

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bugout/internal/bus"
	"bugout/internal/domain"
	errs "bugout/internal/errors"
)

type HistoryStore interface {
	Push(ctx context.Context, m domain.MoveMade) (bool, error)
	Top(ctx context.Context, id domain.GameID) (domain.MoveMade, bool, error)
	Pop(ctx context.Context, id domain.GameID) error
}

type StateStore interface {
	Get(ctx context.Context, id domain.GameID) (domain.GameState, error)
}

type BotnessStore interface {
	Get(ctx context.Context, id domain.GameID) (domain.Botness, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v interface{}) error
}

type UndoUseCase struct {
	log     *zap.SugaredLogger
	history HistoryStore
	states  StateStore
	bots    BotnessStore
	pub     Publisher
	topics  bus.Topics
}

func NewUndoUseCase(log *zap.SugaredLogger, history HistoryStore, states StateStore, bots BotnessStore, pub Publisher, topics bus.Topics) *UndoUseCase {
	return &UndoUseCase{
		log:     log,
		history: history,
		states:  states,
		bots:    bots,
		pub:     pub,
		topics:  topics,
	}
}

func (u *UndoUseCase) HandleMoveAccepted(ctx context.Context, m domain.MoveMade) error {
	_, err := u.history.Push(ctx, m)
	return err
}

// HandleUndoMove takes back the requester's last move while the opponent
// has not answered it yet.
func (u *UndoUseCase) HandleUndoMove(ctx context.Context, cmd domain.UndoMove) error {
	last, why, err := u.eligible(ctx, cmd)
	if err != nil {
		return err
	}
	if why != "" {
		u.log.Infow("undo refused", "game", cmd.GameID.String(), "player", cmd.Player.String(), "reason", why)
		return nil
	}
	err = u.pub.PublishJSON(ctx, u.topics.MoveUndoneEv, cmd.GameID.String(), domain.MoveUndone{
		GameID:     cmd.GameID,
		ReplyTo:    cmd.ReqID,
		UndoneMove: last,
		EventID:    domain.NewEventID(),
	})
	if err != nil {
		return err
	}
	return u.history.Pop(ctx, cmd.GameID)
}

func (u *UndoUseCase) eligible(ctx context.Context, cmd domain.UndoMove) (domain.MoveMade, string, error) {
	state, err := u.states.Get(ctx, cmd.GameID)
	if errors.Is(err, errs.ErrGameNotFound) {
		return domain.MoveMade{}, "unknown game", nil
	}
	if err != nil {
		return domain.MoveMade{}, "", err
	}
	if state.IsTerminal() {
		return domain.MoveMade{}, "game over", nil
	}
	if state.PlayerUp != cmd.Player.Other() {
		return domain.MoveMade{}, "opponent already moved", nil
	}
	last, ok := state.LastMove()
	if !ok || last.Player != cmd.Player {
		return domain.MoveMade{}, "no move to undo", nil
	}
	top, ok, err := u.history.Top(ctx, cmd.GameID)
	if err != nil {
		return domain.MoveMade{}, "", err
	}
	if !ok || top.EventID != last.EventID {
		return domain.MoveMade{}, "history out of date", nil
	}
	botness, err := u.bots.Get(ctx, cmd.GameID)
	if err != nil {
		return domain.MoveMade{}, "", err
	}
	if botness.IsBot(cmd.Player) {
		return domain.MoveMade{}, "requester is a bot", nil
	}
	return last, "", nil
}
