package main

import (
	"context"

	"bugout/internal/app"
	"bugout/internal/delivery/stream"
	repo "bugout/internal/repository"
	"bugout/internal/usecase/judge"
)

func main() {
	app.Main("judge", run)
}

func run(ctx context.Context, env *app.Env) error {
	states := repo.NewGameStateRepository(env.Store, env.Keys)
	uc := judge.NewJudgeUseCase(env.Log, states, env.Publisher, env.Topics)

	r := stream.NewRouter(env.Log)
	r.Handle(env.Topics.MakeMoveCmd, stream.JSON(uc.HandleMakeMove))
	r.Handle(env.Topics.MoveUndoneEv, stream.JSON(uc.HandleMoveUndone))
	r.Handle(env.Topics.GameStatesChangelog, stream.GameStates(uc.HandleGameState))
	return env.Consume(ctx, r)
}
