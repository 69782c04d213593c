package main

import (
	"context"
	"log/slog"
	"os"

	"beacon/config"
	"beacon/internal/delivery"
	"beacon/internal/delivery/http"
	httpmw "beacon/internal/delivery/http/middleware"
	"beacon/internal/delivery/http/router/handler"
	deliverymw "beacon/internal/delivery/middleware"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"
	"beacon/internal/geo"
	"beacon/internal/infra/auth/jwks"
	logs "beacon/internal/infra/log"
	"beacon/internal/infra/persistence/postgres"
	"beacon/internal/infra/pubsub"
	"beacon/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewEventRepository,
			postgres.NewSubscriberRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			jwks.NewCache,
			jwks.NewVerifier,
			pubsub.NewEventPublisher,
			newSubscriberLocator,
		),
	)
}

// newSubscriberLocator builds the geo index over the subscriber store.
func newSubscriberLocator(cfg *config.Config, subscribers repository.SubscriberRepository) service.SubscriberLocator {
	return geo.NewIndex(subscribers, cfg.Notification.DefaultRadiusMeters)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewDispatchService,
			impl.NewEventService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			deliverymw.NewRequestIDMiddleware,
			httpmw.NewAuthMiddleware,
			httpmw.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewEventHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
