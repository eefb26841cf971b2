package history

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"bugout/internal/bus"
	"bugout/internal/domain"
	errs "bugout/internal/errors"
)

type StateStore interface {
	Get(ctx context.Context, id domain.GameID) (domain.GameState, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v interface{}) error
}

// HistoryUseCase answers requests for the full move list of a game.
type HistoryUseCase struct {
	log    *zap.SugaredLogger
	states StateStore
	pub    Publisher
	topics bus.Topics
	now    func() time.Time
}

func NewHistoryUseCase(log *zap.SugaredLogger, states StateStore, pub Publisher, topics bus.Topics) *HistoryUseCase {
	return &HistoryUseCase{log: log, states: states, pub: pub, topics: topics, now: time.Now}
}

func (h *HistoryUseCase) HandleProvideHistory(ctx context.Context, cmd domain.ProvideHistory) error {
	state, err := h.states.Get(ctx, cmd.GameID)
	if errors.Is(err, errs.ErrGameNotFound) {
		h.log.Infow("history requested for unknown game", "game", cmd.GameID.String())
		return nil
	}
	if err != nil {
		return err
	}
	moves := state.Moves
	if moves == nil {
		moves = []domain.MoveMade{}
	}
	return h.pub.PublishJSON(ctx, h.topics.HistoryProvidedEv, cmd.GameID.String(), domain.HistoryProvided{
		GameID:      cmd.GameID,
		ReplyTo:     cmd.ReqID,
		EventID:     domain.NewEventID(),
		Moves:       moves,
		EpochMillis: h.now().UnixMilli(),
	})
}
