// Package app wires configuration into a ready-to-serve HTTP handler.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/boirefacile/backend-go/internal/api"
	"github.com/boirefacile/backend-go/internal/bars"
	"github.com/boirefacile/backend-go/internal/catalog"
	"github.com/boirefacile/backend-go/internal/config"
	"github.com/boirefacile/backend-go/internal/directions"
	"github.com/boirefacile/backend-go/internal/metrics"
	"github.com/boirefacile/backend-go/internal/participants"
	"github.com/boirefacile/backend-go/pkg/http/client"
)

type App struct {
	Handler http.Handler
	Catalog *catalog.Catalog
	Metrics *metrics.Collector

	db       *sql.DB
	notifier *participants.NATSNotifier
}

type Option func(*options)

type options struct {
	source catalog.Source
	store  participants.Store
}

// WithSource overrides the dataset source named by the configuration.
func WithSource(src catalog.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithStore overrides the participant store named by the configuration.
func WithStore(store participants.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// New builds the application. Only a broken directions cache configuration
// is fatal; an unreadable dataset or an unreachable participant store
// degrade the service instead.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{Metrics: metrics.NewCollector()}

	src := o.source
	if src == nil {
		src = datasetSource(ctx, cfg.Dataset)
	}
	a.Catalog = catalog.Load(ctx, src, catalog.WithSkipObserver(a.Metrics.AddNearestSkipped))
	a.Metrics.SetCatalogBars(a.Catalog.Len())

	provider, err := a.directionsProvider(cfg)
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		store = a.participantStore(ctx, cfg.Participants)
	}

	var participantService api.ParticipantService
	if store != nil {
		serviceOpts := []participants.Option{participants.WithSaveObserver(a.Metrics.AddParticipantsSaved)}
		if n := a.natsNotifier(cfg.Participants); n != nil {
			serviceOpts = append(serviceOpts, participants.WithNotifier(n))
		}
		participantService = participants.NewService(store, serviceOpts...)
	}

	handler := api.NewHandler(bars.NewService(a.Catalog), provider, participantService)
	a.Handler = api.NewRouter(handler, api.RouterOptions{
		CORSOrigin:     cfg.CORSOrigin,
		Metrics:        a.Metrics,
		MetricsHandler: a.Metrics.Handler(),
	})
	return a, nil
}

// Close releases database and messaging connections.
func (a *App) Close() {
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}
}

func datasetSource(ctx context.Context, cfg config.DatasetConfig) catalog.Source {
	if !cfg.UseS3() {
		return catalog.FileSource{Path: cfg.File}
	}
	s3Client, err := catalog.NewS3Client(ctx, cfg.S3Endpoint)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create S3 client, falling back to local dataset")
		return catalog.FileSource{Path: cfg.File}
	}
	return catalog.NewS3Source(s3Client, cfg.S3Bucket, cfg.S3Key)
}

func (a *App) directionsProvider(cfg *config.Config) (directions.Provider, error) {
	httpClient := client.New(client.Options{
		BaseURL:    cfg.Directions.BaseURL,
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
	})
	var provider directions.Provider = directions.NewGoogleClient(httpClient, cfg.Directions.APIKey)
	if !cfg.Directions.EnableCache {
		return provider, nil
	}

	cached, err := directions.NewCachedProvider(provider, cfg.Directions.CacheSize, cfg.Directions.CacheTTL(), a.Metrics.ObserveDirectionsCache)
	if err != nil {
		return nil, fmt.Errorf("initializing directions cache: %w", err)
	}
	return cached, nil
}

func (a *App) participantStore(ctx context.Context, cfg config.ParticipantsConfig) participants.Store {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		dynamoClient, err := participants.NewDynamoClient(ctx, cfg.DynamoEndpoint)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create DynamoDB client, participant endpoints disabled")
			return nil
		}
		log.Info().Str("table", cfg.Table).Msg("Using DynamoDB participant store")
		return participants.NewDynamoStore(dynamoClient, cfg.Table)
	default:
		db, err := participants.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open database, participant endpoints disabled")
			return nil
		}
		a.db = db

		store := participants.NewPostgresStore(db, cfg.Table)
		if err := participants.Ping(ctx, db); err != nil {
			log.Warn().Err(err).Msg("Database not reachable yet")
			return store
		}
		if cfg.EnsureSchema {
			if err := store.EnsureSchema(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to ensure participants schema")
			}
		}
		log.Info().Str("table", cfg.Table).Msg("Using Postgres participant store")
		return store
	}
}

func (a *App) natsNotifier(cfg config.ParticipantsConfig) *participants.NATSNotifier {
	if cfg.NATSURL == "" {
		return nil
	}
	n, err := participants.NewNATSNotifier(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		log.Warn().Err(err).Str("url", cfg.NATSURL).Msg("NATS unavailable, participant events disabled")
		return nil
	}
	a.notifier = n
	return n
}
