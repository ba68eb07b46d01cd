// Package di assembles the store, logger and service every command uses.
package di

import (
	"context"

	"github.com/rs/zerolog"

	"tableflip.dev/lostfound/pkg/app"
	"tableflip.dev/lostfound/pkg/config"
	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/logging"
	"tableflip.dev/lostfound/pkg/store"
)

// Quiet keeps the logger off the terminal for full-screen commands.
type Quiet bool

// App is everything a command needs.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Store    store.Store
	Identity identity.Provider
	Service  *app.Service
}

// Context carries the app logger.
func (a *App) Context(parent context.Context) context.Context {
	return a.Log.WithContext(parent)
}

func NewApp(cfg *config.Config, log zerolog.Logger, s store.Store, ident identity.Provider, svc *app.Service) *App {
	return &App{Config: cfg, Log: log, Store: s, Identity: ident, Service: svc}
}

func NewLogger(cfg *config.Config, quiet Quiet) (zerolog.Logger, func(), error) {
	log, closeFn, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Quiet: bool(quiet)})
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return log, func() { _ = closeFn() }, nil
}

// NewStore opens the disk store behind the point-read cache.
func NewStore(cfg *config.Config) (store.Store, error) {
	disk, err := store.Load(cfg)
	if err != nil {
		return nil, err
	}
	return store.NewCached(disk, cfg.Cache.Size, cfg.Cache.TTL), nil
}

func NewIdentity(cfg *config.Config) identity.Provider {
	return cfg.Identity()
}

func NewService(s store.Store, ident identity.Provider) *app.Service {
	return &app.Service{Store: s, Identity: ident}
}
