package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"bugout/internal/app"
	"bugout/internal/bootstrap"
	"bugout/internal/brain"
	errs "bugout/internal/errors"
	"bugout/internal/logger"
)

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Sugar().Errorw("failed to setup configuration", "error", err)
		os.Exit(app.ExitCode(err))
	}
	log := logger.NewLogger(cfg, "brain")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, log); err != nil {
		log.Errorw("brain stopped", "error", err)
		stop()
		_ = log.Sync()
		os.Exit(app.ExitCode(err))
	}
	log.Infow("brain stopped")
}

func serve(ctx context.Context, cfg *bootstrap.Config, log *zap.SugaredLogger) error {
	lis, err := net.Listen("tcp", net.JoinHostPort("", cfg.BrainPort))
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %w", errs.ErrConfig, cfg.BrainPort, err)
	}

	var gen brain.MoveGenerator = brain.Fallback{}
	if cfg.EngineUrl != "" {
		gen = brain.NewEngine(cfg.EngineUrl, log)
		log.Infow("using engine", "url", cfg.EngineUrl)
	}

	server := grpc.NewServer()
	brain.Register(server, brain.NewServer(gen, log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("brain listening", "addr", lis.Addr().String())
		return server.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		server.GracefulStop()
		return nil
	})
	return g.Wait()
}
