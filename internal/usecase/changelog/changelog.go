package changelog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bugout/internal/bus"
	"bugout/internal/domain"
	errs "bugout/internal/errors"
	"bugout/internal/rules"
)

type StateStore interface {
	Get(ctx context.Context, id domain.GameID) (domain.GameState, error)
	Exists(ctx context.Context, id domain.GameID) (bool, error)
	Put(ctx context.Context, id domain.GameID, state domain.GameState) error
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v interface{}) error
	PublishGameState(ctx context.Context, topic string, id domain.GameID, state domain.GameState) error
}

// ChangelogUseCase is the only writer of game states. Every write is
// followed by a changelog entry carrying the full state.
type ChangelogUseCase struct {
	log       *zap.SugaredLogger
	store     StateStore
	pub       Publisher
	topics    bus.Topics
	boardSize int
}

func NewChangelogUseCase(log *zap.SugaredLogger, store StateStore, pub Publisher, topics bus.Topics, boardSize int) *ChangelogUseCase {
	return &ChangelogUseCase{
		log:       log,
		store:     store,
		pub:       pub,
		topics:    topics,
		boardSize: boardSize,
	}
}

// HandleGameReady creates the initial state of a game once.
func (c *ChangelogUseCase) HandleGameReady(ctx context.Context, ev domain.GameReady) error {
	exists, err := c.store.Exists(ctx, ev.GameID)
	if err != nil {
		return err
	}
	if exists {
		c.log.Debugw("game already initialized", "game", ev.GameID.String())
		return nil
	}
	size := ev.BoardSize
	if size <= 0 {
		size = c.boardSize
	}
	state := domain.NewGameState(size)
	if err := c.store.Put(ctx, ev.GameID, state); err != nil {
		return err
	}
	c.log.Infow("game initialized", "game", ev.GameID.String(), "boardSize", size)
	return c.pub.PublishGameState(ctx, c.topics.GameStatesChangelog, ev.GameID, state)
}

// HandleMoveAccepted applies an accepted move. A move already in the game is
// not applied twice; if it is the latest move its events are published again
// in case the previous run stopped before publishing them.
func (c *ChangelogUseCase) HandleMoveAccepted(ctx context.Context, m domain.MoveMade) error {
	state, err := c.store.Get(ctx, m.GameID)
	if errors.Is(err, errs.ErrGameNotFound) {
		return fmt.Errorf("%w: accepted move %s for missing game %s", errs.ErrInvariant, m.EventID, m.GameID)
	}
	if err != nil {
		return err
	}

	if idx := state.MoveIndex(m.EventID); idx >= 0 {
		if idx != len(state.Moves)-1 {
			return nil
		}
		c.log.Infow("republishing latest move", "game", m.GameID.String(), "event", m.EventID.String())
		return c.publish(ctx, m.GameID, state, state.Moves[idx])
	}

	next, made, reason := rules.Play(state, m)
	if reason != "" {
		c.log.Warnw("accepted move does not apply", "game", m.GameID.String(), "event", m.EventID.String(), "reason", string(reason))
		return nil
	}
	if int(next.Turn) != len(next.Moves)+1 {
		return fmt.Errorf("%w: game %s turn %d after %d moves", errs.ErrInvariant, m.GameID, next.Turn, len(next.Moves))
	}
	if err := c.store.Put(ctx, m.GameID, next); err != nil {
		return err
	}
	return c.publish(ctx, m.GameID, next, made)
}

// HandleMoveUndone rebuilds the game without its last move.
func (c *ChangelogUseCase) HandleMoveUndone(ctx context.Context, ev domain.MoveUndone) error {
	state, err := c.store.Get(ctx, ev.GameID)
	if errors.Is(err, errs.ErrGameNotFound) {
		c.log.Warnw("undo for unknown game", "game", ev.GameID.String())
		return nil
	}
	if err != nil {
		return err
	}
	last, ok := state.LastMove()
	if !ok || last.EventID != ev.UndoneMove.EventID {
		c.log.Infow("undo does not match the last move", "game", ev.GameID.String(), "event", ev.UndoneMove.EventID.String())
		return nil
	}
	prev, err := rules.Replay(state.Board.Size, state.Moves[:len(state.Moves)-1])
	if err != nil {
		return fmt.Errorf("%w: game %s: %w", errs.ErrInvariant, ev.GameID, err)
	}
	if err := c.store.Put(ctx, ev.GameID, prev); err != nil {
		return err
	}
	c.log.Infow("move undone", "game", ev.GameID.String(), "turn", prev.Turn)
	return c.pub.PublishGameState(ctx, c.topics.GameStatesChangelog, ev.GameID, prev)
}

func (c *ChangelogUseCase) publish(ctx context.Context, id domain.GameID, state domain.GameState, made domain.MoveMade) error {
	if err := c.pub.PublishGameState(ctx, c.topics.GameStatesChangelog, id, state); err != nil {
		return err
	}
	return c.pub.PublishJSON(ctx, c.topics.MoveMadeEv, id.String(), made)
}
