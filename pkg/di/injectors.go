//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"tableflip.dev/lostfound/pkg/config"
)

func InitApp(cfg *config.Config, quiet Quiet) (*App, func(), error) {

	wire.Build(
		NewLogger,
		NewStore,
		NewIdentity,
		NewService,
		NewApp,
	)

	return nil, nil, nil
}
