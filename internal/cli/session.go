package cli

import (
	"context"
	"errors"

	"github.com/okian/railshot/internal/adapters/repository"
	service "github.com/okian/railshot/internal/app"
	"github.com/okian/railshot/internal/config"
	"github.com/spf13/cobra"
)

// session is an engine bound to its state store for one command.
type session struct {
	cfg    *config.Config
	engine *service.Engine
	store  repository.Store
	out    printer
}

func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadFile(ctx, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.StoragePath != "" {
		cfg.StoragePath = opts.StoragePath
	}
	engine, err := service.FromConfig(cfg)
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
	return &session{
		cfg:    cfg,
		engine: engine,
		store:  store,
		out:    printer{format: opts.Format, w: cmd.OutOrStdout()},
	}, nil
}

// close releases the store, persisting the engine state first when save is
// set.
func (s *session) close(ctx context.Context, save bool) error {
	var err error
	if save {
		err = s.engine.Save(ctx, s.store)
	}
	return errors.Join(err, s.store.Close())
}
