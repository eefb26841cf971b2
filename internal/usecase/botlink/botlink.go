package botlink

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"bugout/internal/brain"
	"bugout/internal/bus"
	"bugout/internal/domain"
	errs "bugout/internal/errors"
)

type BotnessStore interface {
	Get(ctx context.Context, id domain.GameID) (domain.Botness, error)
	Attach(ctx context.Context, id domain.GameID, player domain.Player) error
}

type StateStore interface {
	Get(ctx context.Context, id domain.GameID) (domain.GameState, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v interface{}) error
}

// Pool runs move generation off the consumer goroutine. *ants.Pool
// satisfies it.
type Pool interface {
	Submit(task func()) error
}

// BotlinkUseCase plays for the colors a bot was attached to. Handlers must
// be called from a single goroutine.
type BotlinkUseCase struct {
	log     *zap.SugaredLogger
	bots    BotnessStore
	states  StateStore
	pub     Publisher
	topics  bus.Topics
	brain   brain.MoveGenerator
	pool    Pool
	timeout time.Duration
	// games the bot already opened as black
	opened map[domain.GameID]struct{}
}

// NewBotlinkUseCase builds the usecase. A nil pool generates moves inline.
func NewBotlinkUseCase(log *zap.SugaredLogger, bots BotnessStore, states StateStore, pub Publisher, topics bus.Topics, gen brain.MoveGenerator, pool Pool, timeout time.Duration) *BotlinkUseCase {
	return &BotlinkUseCase{
		log:     log,
		bots:    bots,
		states:  states,
		pub:     pub,
		topics:  topics,
		brain:   gen,
		pool:    pool,
		timeout: timeout,
		opened:  make(map[domain.GameID]struct{}),
	}
}

func (b *BotlinkUseCase) HandleAttachBot(ctx context.Context, cmd domain.AttachBot) error {
	if !cmd.Player.Valid() {
		return errs.ErrMalformedPayload
	}
	if err := b.bots.Attach(ctx, cmd.GameID, cmd.Player); err != nil {
		return err
	}
	b.log.Infow("bot attached", "game", cmd.GameID.String(), "player", cmd.Player.String())
	err := b.pub.PublishJSON(ctx, b.topics.BotAttachedEv, cmd.GameID.String(), domain.BotAttached{
		GameID:  cmd.GameID,
		Player:  cmd.Player,
		EventID: domain.NewEventID(),
	})
	if err != nil {
		return err
	}
	// the bot may already be up, e.g. as black before the first move
	return b.maybePlay(ctx, cmd.GameID, cmd.Player, nil, false)
}

// HandleGameState opens games that a bot was attached to as black before
// the game existed.
func (b *BotlinkUseCase) HandleGameState(ctx context.Context, id domain.GameID, state domain.GameState) error {
	if len(state.Moves) > 0 || state.PlayerUp != domain.Black {
		return nil
	}
	botness, err := b.bots.Get(ctx, id)
	if err != nil {
		return err
	}
	if !botness.IsBot(domain.Black) {
		return nil
	}
	return b.maybePlay(ctx, id, domain.Black, nil, true)
}

func (b *BotlinkUseCase) HandleMoveMade(ctx context.Context, m domain.MoveMade) error {
	delete(b.opened, m.GameID)
	next := m.Player.Other()
	botness, err := b.bots.Get(ctx, m.GameID)
	if err != nil {
		return err
	}
	if !botness.IsBot(next) {
		return nil
	}
	return b.maybePlay(ctx, m.GameID, next, &m.EventID, false)
}

// maybePlay asks the brain for a move if player is up in the stored game.
// With after set, the game's last move must be that event. With opening
// set, the stored game must have no moves.
func (b *BotlinkUseCase) maybePlay(ctx context.Context, game domain.GameID, player domain.Player, after *domain.EventID, opening bool) error {
	state, err := b.states.Get(ctx, game)
	if errors.Is(err, errs.ErrGameNotFound) {
		b.log.Debugw("no state yet for bot game", "game", game.String())
		return nil
	}
	if err != nil {
		return err
	}
	if state.IsTerminal() || state.PlayerUp != player || (opening && len(state.Moves) > 0) {
		return nil
	}
	if after != nil {
		if last, ok := state.LastMove(); !ok || last.EventID != *after {
			b.log.Debugw("stale move for bot", "game", game.String(), "event", after.String())
			return nil
		}
	}
	if len(state.Moves) == 0 {
		if _, done := b.opened[game]; done {
			return nil
		}
		b.opened[game] = struct{}{}
	}

	task := func() { b.play(context.WithoutCancel(ctx), game, state, player) }
	if b.pool == nil {
		task()
		return nil
	}
	if err := b.pool.Submit(task); err != nil {
		b.log.Warnw("bot move dropped", "game", game.String(), "error", err)
	}
	return nil
}

func (b *BotlinkUseCase) play(ctx context.Context, game domain.GameID, state domain.GameState, player domain.Player) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	coord, err := b.brain.GenMove(ctx, state, player)
	if err != nil {
		b.log.Errorw("bot failed to generate a move", "game", game.String(), "player", player.String(), "error", err)
		return
	}
	cmd := domain.MakeMoveCommand{
		GameID: game,
		ReqID:  domain.NewReqID(),
		Player: player,
		Coord:  coord,
	}
	if err := b.pub.PublishJSON(ctx, b.topics.MakeMoveCmd, game.String(), cmd); err != nil {
		b.log.Errorw("bot move not published", "game", game.String(), "error", err)
		return
	}
	b.log.Infow("bot moved", "game", game.String(), "player", player.String(), "coord", coord.String())
}
