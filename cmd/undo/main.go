package main

import (
	"context"

	"bugout/internal/app"
	"bugout/internal/delivery/stream"
	repo "bugout/internal/repository"
	"bugout/internal/usecase/undo"
)

func main() {
	app.Main("undo", run)
}

func run(ctx context.Context, env *app.Env) error {
	history := repo.NewUndoHistoryRepository(env.Log, env.Store, env.Keys, env.Cfg.UndoCapacity)
	states := repo.NewGameStateRepository(env.Store, env.Keys)
	bots := repo.NewBotnessRepository(env.Store, env.Keys)
	uc := undo.NewUndoUseCase(env.Log, history, states, bots, env.Publisher, env.Topics)

	r := stream.NewRouter(env.Log)
	r.Handle(env.Topics.MoveAcceptedEv, stream.JSON(uc.HandleMoveAccepted))
	r.Handle(env.Topics.UndoMoveCmd, stream.JSON(uc.HandleUndoMove))
	return env.Consume(ctx, r)
}
