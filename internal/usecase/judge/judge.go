package judge

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bugout/internal/bus"
	"bugout/internal/domain"
	errs "bugout/internal/errors"
	"bugout/internal/rules"
)

type StateStore interface {
	Get(ctx context.Context, id domain.GameID) (domain.GameState, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v interface{}) error
}

// projection is the judge's view of a game. While pending, the judge has
// accepted a move the changelog has not materialized yet. undone is set
// between a move-undone event and the changelog entry that drops the move.
type projection struct {
	state   domain.GameState
	pending bool
	undone  *domain.EventID
}

// JudgeUseCase validates moves. It never writes game state: accepted moves
// are published and the changelog materializes them. Handlers must be
// called from a single goroutine.
type JudgeUseCase struct {
	log    *zap.SugaredLogger
	store  StateStore
	pub    Publisher
	topics bus.Topics
	games  map[domain.GameID]*projection
}

func NewJudgeUseCase(log *zap.SugaredLogger, store StateStore, pub Publisher, topics bus.Topics) *JudgeUseCase {
	return &JudgeUseCase{
		log:    log,
		store:  store,
		pub:    pub,
		topics: topics,
		games:  make(map[domain.GameID]*projection),
	}
}

func (j *JudgeUseCase) HandleMakeMove(ctx context.Context, cmd domain.MakeMoveCommand) error {
	p, err := j.projection(ctx, cmd.GameID)
	if errors.Is(err, errs.ErrGameNotFound) {
		j.log.Warnw("move for unknown game", "game", cmd.GameID.String(), "req", cmd.ReqID.String())
		return nil
	}
	if err != nil {
		return err
	}

	move := domain.MoveMade{
		GameID:  cmd.GameID,
		ReplyTo: cmd.ReqID,
		Player:  cmd.Player,
		Coord:   cmd.Coord,
		EventID: domain.NewEventID(),
	}
	next, made, reason := rules.Play(p.state, move)
	if reason != "" {
		j.log.Infow("move rejected", "game", cmd.GameID.String(), "player", cmd.Player.String(), "coord", cmd.Coord.String(), "reason", string(reason))
		return j.pub.PublishJSON(ctx, j.topics.MoveRejectedEv, cmd.GameID.String(), domain.MoveRejected{
			GameID:  cmd.GameID,
			ReplyTo: cmd.ReqID,
			Player:  cmd.Player,
			Coord:   cmd.Coord,
			Reason:  reason,
			EventID: domain.NewEventID(),
		})
	}

	if err := j.pub.PublishJSON(ctx, j.topics.MoveAcceptedEv, cmd.GameID.String(), made); err != nil {
		return err
	}
	p.state = next
	p.pending = true
	return nil
}

// HandleMoveUndone arms the projection to go back one move. Only the
// changelog entry without the undone move is allowed to roll it back.
func (j *JudgeUseCase) HandleMoveUndone(_ context.Context, ev domain.MoveUndone) error {
	p, ok := j.games[ev.GameID]
	if !ok {
		return nil
	}
	if p.state.MoveIndex(ev.UndoneMove.EventID) < 0 {
		j.log.Warnw("undone move not in projection", "game", ev.GameID.String(), "event", ev.UndoneMove.EventID.String())
		return nil
	}
	undone := ev.UndoneMove.EventID
	p.undone = &undone
	return nil
}

// HandleGameState folds a changelog entry into the projection. Finished
// games are evicted; a late move for one is judged from the store. Entries
// behind the projection are stale unless an undo is in flight.
func (j *JudgeUseCase) HandleGameState(_ context.Context, id domain.GameID, state domain.GameState) error {
	p, ok := j.games[id]
	switch {
	case state.IsTerminal() && (!ok || !p.pending):
		delete(j.games, id)
	case !ok:
		j.games[id] = &projection{state: state}
	case state.Turn >= p.state.Turn:
		p.state = state
		p.pending = false
	case p.rollsBackTo(state):
		p.state = state
		p.pending = false
		p.undone = nil
	default:
		j.log.Debugw("stale game state ignored", "game", id.String(), "turn", state.Turn, "projected", p.state.Turn)
	}
	return nil
}

// rollsBackTo reports whether state is the projection with exactly the
// undone move dropped.
func (p *projection) rollsBackTo(state domain.GameState) bool {
	if p.undone == nil {
		return false
	}
	idx := p.state.MoveIndex(*p.undone)
	return idx >= 0 && len(state.Moves) == idx
}

func (j *JudgeUseCase) projection(ctx context.Context, id domain.GameID) (*projection, error) {
	if p, ok := j.games[id]; ok {
		return p, nil
	}
	state, err := j.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := &projection{state: state}
	j.games[id] = p
	return p, nil
}
