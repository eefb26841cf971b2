// Package app holds the process scaffolding shared by every service:
// configuration, logging, store and bus connections, signal handling and
// exit codes.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bugout/internal/adapters"
	"bugout/internal/bootstrap"
	"bugout/internal/bus"
	"bugout/internal/delivery/stream"
	errs "bugout/internal/errors"
	"bugout/internal/logger"
	repo "bugout/internal/repository"
)

const (
	ExitOK         = 0
	ExitConfig     = 1
	ExitBus        = 2
	ExitKeyedStore = 3
)

// Env is what a service needs to wire itself up.
type Env struct {
	Service   string
	Cfg       *bootstrap.Config
	Log       *zap.SugaredLogger
	Store     *redis.Client
	Bus       *redis.Client
	Topics    bus.Topics
	Keys      repo.Keys
	Publisher *bus.Publisher
}

type RunFunc func(ctx context.Context, env *Env) error

// Main runs a service and exits the process with its exit code.
func Main(service string, run RunFunc) {
	os.Exit(Run(service, ".env", run))
}

// Run loads configuration from cfgPath and the environment, connects to the
// keyed store and the bus, and calls run until it returns or a signal
// arrives. It returns the process exit code.
func Run(service, cfgPath string, run RunFunc) int {
	cfg, err := bootstrap.Setup(cfgPath)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Sugar().Errorw("failed to setup configuration", "service", service, "error", err)
		_ = fallback.Sync()
		return ExitCode(err)
	}
	log := logger.NewLogger(cfg, service)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, closeEnv, err := Connect(ctx, service, cfg, log)
	if err != nil {
		log.Errorw("failed to connect", "error", err)
		return ExitCode(err)
	}
	defer closeEnv()

	log.Infow("service started", "group", cfg.Group(service))
	err = guard(func() error { return run(ctx, env) })
	code := ExitCode(err)
	if code != ExitOK {
		log.Errorw("service stopped", "error", err, "exit", code)
	} else {
		log.Infow("service stopped")
	}
	return code
}

// Connect opens the keyed store and the bus. They share one client when
// BROKERS is unset or names the same server.
func Connect(ctx context.Context, service string, cfg *bootstrap.Config, log *zap.SugaredLogger) (*Env, func(), error) {
	store := adapters.NewAdapterRedis(cfg, cfg.RedisUrl)
	if err := store.Init(ctx); err != nil {
		return nil, nil, tag(errs.ErrStoreTransport, err)
	}
	closers := []func(){func() { _ = store.Close(context.Background()) }}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	busClient := store.GetClient()
	if url := cfg.BusUrl(); url != cfg.RedisUrl {
		broker := adapters.NewAdapterRedis(cfg, url)
		if err := broker.Init(ctx); err != nil {
			closeAll()
			return nil, nil, tag(errs.ErrBusTransport, err)
		}
		closers = append(closers, func() { _ = broker.Close(context.Background()) })
		busClient = broker.GetClient()
	}

	topics := bus.NewTopics(cfg.TopicPrefix)
	env := &Env{
		Service:   service,
		Cfg:       cfg,
		Log:       log,
		Store:     store.GetClient(),
		Bus:       busClient,
		Topics:    topics,
		Keys:      repo.NewKeys(cfg.RedisNamespace),
		Publisher: bus.NewPublisher(busClient, topics, cfg.StreamMaxLen, log),
	}
	return env, closeAll, nil
}

// tag marks err with kind unless it already carries a classification.
func tag(kind, err error) error {
	if errs.Classify(err) != errs.KindUnknown {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Consume runs r against the service's consumer group until ctx is done
// or a handler fails fatally.
func (e *Env) Consume(ctx context.Context, r *stream.Router) error {
	consumer := bus.NewConsumer(e.Bus, r.Topics(), bus.ConsumerOpts{
		Group: e.Cfg.Group(e.Service),
		Block: e.Cfg.Block(),
	}, repo.NewEntryIDRepository(e.Store, e.Keys, e.Log), e.Log)
	if err := consumer.Init(ctx); err != nil {
		return err
	}
	return r.Run(ctx, consumer)
}

func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic: %v\n%s", errs.ErrInvariant, p, debug.Stack())
		}
	}()
	return fn()
}

// ExitCode maps the error a service stopped with to its exit status.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return ExitOK
	}
	switch errs.Classify(err) {
	case errs.KindConfig:
		return ExitConfig
	case errs.KindTransport:
		if errors.Is(err, errs.ErrStoreTransport) {
			return ExitKeyedStore
		}
		return ExitBus
	}
	return ExitBus
}
