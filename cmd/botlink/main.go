package main

import (
	"context"
	"fmt"

	"github.com/panjf2000/ants/v2"

	"bugout/internal/app"
	"bugout/internal/brain"
	"bugout/internal/delivery/stream"
	errs "bugout/internal/errors"
	repo "bugout/internal/repository"
	"bugout/internal/usecase/botlink"
)

func main() {
	app.Main("botlink", run)
}

func run(ctx context.Context, env *app.Env) error {
	pool, err := ants.NewPool(env.Cfg.BotWorkers)
	if err != nil {
		return fmt.Errorf("%w: bot worker pool: %w", errs.ErrConfig, err)
	}
	defer func() {
		if err := pool.ReleaseTimeout(env.Cfg.BrainTimeout()); err != nil {
			env.Log.Warnw("bot workers still busy at shutdown", "error", err)
		}
	}()

	var gen brain.MoveGenerator = brain.Fallback{}
	if env.Cfg.BrainAddr != "" {
		client, err := brain.NewClient(env.Cfg.BrainAddr, env.Cfg.BrainTimeout())
		if err != nil {
			return fmt.Errorf("%w: %w", errs.ErrConfig, err)
		}
		defer client.Close()
		gen = client
		env.Log.Infow("using remote brain", "addr", env.Cfg.BrainAddr)
	}

	bots := repo.NewBotnessRepository(env.Store, env.Keys)
	states := repo.NewGameStateRepository(env.Store, env.Keys)
	uc := botlink.NewBotlinkUseCase(env.Log, bots, states, env.Publisher, env.Topics, gen, pool, env.Cfg.BrainTimeout())

	r := stream.NewRouter(env.Log)
	r.Handle(env.Topics.AttachBotCmd, stream.JSON(uc.HandleAttachBot))
	r.Handle(env.Topics.MoveMadeEv, stream.JSON(uc.HandleMoveMade))
	r.Handle(env.Topics.GameStatesChangelog, stream.GameStates(uc.HandleGameState))
	return env.Consume(ctx, r)
}
