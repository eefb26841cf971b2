package main

import (
	"context"

	"bugout/internal/app"
	"bugout/internal/delivery/stream"
	repo "bugout/internal/repository"
	"bugout/internal/usecase/changelog"
)

func main() {
	app.Main("changelog", run)
}

func run(ctx context.Context, env *app.Env) error {
	states := repo.NewGameStateRepository(env.Store, env.Keys)
	uc := changelog.NewChangelogUseCase(env.Log, states, env.Publisher, env.Topics, env.Cfg.BoardSize)

	r := stream.NewRouter(env.Log)
	r.Handle(env.Topics.GameReadyEv, stream.JSON(uc.HandleGameReady))
	r.Handle(env.Topics.MoveAcceptedEv, stream.JSON(uc.HandleMoveAccepted))
	r.Handle(env.Topics.MoveUndoneEv, stream.JSON(uc.HandleMoveUndone))
	return env.Consume(ctx, r)
}
