//go:build wireinject
// +build wireinject

package di

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"tasktide/internal/application/usecase/task"
	"tasktide/internal/infrastructure/config"
)

// InitializeContainer sets up all dependencies. The returned cleanup closes
// the data service.
func InitializeContainer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Container, func(), error) {
	wire.Build(
		// Data service
		ProvideDataService,

		// Board state
		ProvideStore,
		ProvideDialogs,
		ProvideNotices,

		// Use Cases
		ProvideCoordinator,
		task.NewListTasksUseCase,
		task.NewGetBoardUseCase,

		// Wire the container
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
