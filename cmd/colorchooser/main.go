package main

import (
	"context"

	"bugout/internal/app"
	"bugout/internal/delivery/stream"
	repo "bugout/internal/repository"
	"bugout/internal/usecase/colorchooser"
)

func main() {
	app.Main("colorchooser", run)
}

func run(ctx context.Context, env *app.Env) error {
	prefs := repo.NewColorPrefRepository(env.Store, env.Keys)
	uc := colorchooser.NewColorChooserUseCase(env.Log, prefs, env.Publisher, env.Topics)

	r := stream.NewRouter(env.Log)
	r.Handle(env.Topics.ChooseColorPrefCmd, stream.JSON(uc.HandleChooseColorPref))
	r.Handle(env.Topics.GameReadyEv, stream.JSON(uc.HandleGameReady))
	return env.Consume(ctx, r)
}
