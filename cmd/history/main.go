package main

import (
	"context"

	"bugout/internal/app"
	"bugout/internal/delivery/stream"
	repo "bugout/internal/repository"
	"bugout/internal/usecase/history"
)

func main() {
	app.Main("history", run)
}

func run(ctx context.Context, env *app.Env) error {
	states := repo.NewGameStateRepository(env.Store, env.Keys)
	uc := history.NewHistoryUseCase(env.Log, states, env.Publisher, env.Topics)

	r := stream.NewRouter(env.Log)
	r.Handle(env.Topics.ProvideHistoryCmd, stream.JSON(uc.HandleProvideHistory))
	return env.Consume(ctx, r)
}
