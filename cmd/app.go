package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/railshot/internal/adapters/http/api"
	"github.com/okian/railshot/internal/adapters/http/swagger"
	"github.com/okian/railshot/internal/adapters/mq/dispatch"
	"github.com/okian/railshot/internal/adapters/repository"
	service "github.com/okian/railshot/internal/app"
	"github.com/okian/railshot/internal/config"
	"github.com/okian/railshot/pkg/logger"
)

// application is the wired process: engine, persisted state, worker pool
// and HTTP routes.
type application struct {
	engine     *service.Engine
	store      repository.Store
	dispatcher *dispatch.Dispatcher
	mux        *http.ServeMux
	logger     logger.Logger
}

// processStats is the GET /stats body.
type processStats struct {
	Engine   service.Stats  `json:"engine"`
	Dispatch dispatch.Stats `json:"dispatch"`
}

func newApplication(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	engine, err := service.FromConfig(cfg, service.WithLogger(log.Named("engine")))
	if err != nil {
		return nil, err
	}
	store, err := service.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := engine.Load(ctx, store); err != nil {
		_ = store.Close()
		return nil, err
	}

	handler, err := engine.TaskHandler()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	d := dispatch.New(handler,
		dispatch.WithWorkers(cfg.WorkerCount),
		dispatch.WithQueueSize(cfg.QueueSize),
		dispatch.WithReplayWindow(cfg.ReplayWindow),
		dispatch.WithLogger(log.Named("dispatch")),
	)
	d.Start(ctx)

	a := &application{
		engine:     engine,
		store:      store,
		dispatcher: d,
		mux:        http.NewServeMux(),
		logger:     log,
	}

	swagger.Register(ctx, a.mux)
	server := api.NewServer(engine, d, api.StatsFunc(func() any { return a.stats() }),
		api.WithDispatchTimeout(time.Duration(cfg.DispatchTimeoutMS)*time.Millisecond),
	)
	server.Register(ctx, a.mux)

	log.Info(ctx, "engine ready",
		logger.Int("memory", engine.Memory().Len()),
		logger.Bool("online_learning", cfg.OnlineLearning),
		logger.String("storage", cfg.StoragePath),
	)
	return a, nil
}

func (a *application) stats() processStats {
	return processStats{Engine: a.engine.Stats(), Dispatch: a.dispatcher.Stats()}
}

// shutdown drains the worker pool, persists the engine state and releases
// the store.
func (a *application) shutdown(ctx context.Context) error {
	err := a.dispatcher.Close(ctx)
	if serr := a.engine.Save(ctx, a.store); serr != nil {
		err = errors.Join(err, serr)
	}
	return errors.Join(err, a.store.Close())
}
