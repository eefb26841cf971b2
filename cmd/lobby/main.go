package main

import (
	"context"

	"bugout/internal/app"
	"bugout/internal/delivery/stream"
	repo "bugout/internal/repository"
	"bugout/internal/usecase/lobby"
)

func main() {
	app.Main("lobby", run)
}

func run(ctx context.Context, env *app.Env) error {
	waiting := repo.NewLobbyRepository(env.Store, env.Keys)
	uc := lobby.NewLobbyUseCase(env.Log, waiting, env.Publisher, env.Topics, env.Cfg.BoardSize)

	r := stream.NewRouter(env.Log)
	r.Handle(env.Topics.FindPublicGameCmd, stream.JSON(uc.HandleFindPublicGame))
	r.Handle(env.Topics.CreateGameCmd, stream.JSON(uc.HandleCreateGame))
	r.Handle(env.Topics.JoinPrivateGameCmd, stream.JSON(uc.HandleJoinPrivateGame))
	return env.Consume(ctx, r)
}
