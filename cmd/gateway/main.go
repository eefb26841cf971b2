package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"bugout/internal/app"
	"bugout/internal/delivery/stream"
	"bugout/internal/gateway"
	repo "bugout/internal/repository"
)

const shutdownTimeout = 5 * time.Second

func main() {
	app.Main("gateway", run)
}

func run(ctx context.Context, env *app.Env) error {
	monitor := gateway.NewIdleMonitor(env.Log)
	sessions := repo.NewSessionRedisStorage(env.Store, env.Keys, env.Cfg.IdleTimeout())
	states := repo.NewGameStateRepository(env.Store, env.Keys)
	srv := gateway.NewServer(env.Log, env.Topics, env.Publisher, sessions, states, monitor, env.Cfg.IdleTimeout())

	r := stream.NewRouter(env.Log)
	srv.Register(r)

	httpSrv := &http.Server{
		Addr:              net.JoinHostPort("", env.Cfg.GatewayPort),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		monitor.Run(ctx)
		return nil
	})
	g.Go(func() error { return srv.RunPublisher(ctx) })
	g.Go(func() error { return srv.RunSweeper(ctx) })
	g.Go(func() error { return env.Consume(ctx, r) })
	g.Go(func() error {
		env.Log.Infow("gateway listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		srv.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
