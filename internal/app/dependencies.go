package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/safar/maison-store/internal/checkout"
	"github.com/safar/maison-store/internal/config"
	"github.com/safar/maison-store/internal/database"
	"github.com/safar/maison-store/internal/events"
	"github.com/safar/maison-store/internal/metrics"
	"github.com/safar/maison-store/internal/payment"
	"github.com/safar/maison-store/internal/storage"
	"github.com/safar/maison-store/internal/storage/memory"
	"github.com/safar/maison-store/internal/storage/postgres"
	"github.com/safar/maison-store/internal/storage/redis"
	"github.com/safar/maison-store/internal/storage/sqlite"
	"github.com/safar/maison-store/internal/store"
)

// Dependencies holds everything the HTTP layer is built from.
type Dependencies struct {
	Store     *store.Store
	Checkout  *checkout.Service
	Gateway   payment.Gateway
	Publisher events.Publisher
	Registry  *prometheus.Registry
	Logger    *log.Entry

	closers []func() error
}

// OpenRepository picks the snapshot backend named in cfg. The returned close
// function is never nil.
func OpenRepository(ctx context.Context, cfg *config.Config) (storage.Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendMemory, "":
		return memory.NewRepository(), noop, nil

	case config.BackendPostgres:
		db, err := database.NewConnection(ctx, &cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to postgres: %w", err)
		}
		return postgres.NewRepository(db, cfg.Storage.Namespace), db.Close, nil

	case config.BackendRedis:
		repo, err := redis.Dial(ctx, cfg.Storage.RedisAddr, cfg.Storage.Namespace)
		if err != nil {
			return nil, noop, err
		}
		return repo, repo.Close, nil

	case config.BackendSQLite:
		repo, err := sqlite.Open(ctx, cfg.Storage.SQLitePath, cfg.Storage.Namespace)
		if err != nil {
			return nil, noop, err
		}
		return repo, repo.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// NewDependencies opens the configured backend, hydrates the store and wires
// checkout. Kafka is optional: a producer that cannot be created is logged and
// replaced by a no-op publisher.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	repo, closeRepo, err := OpenRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps := &Dependencies{
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
		closers:  []func() error{closeRepo},
	}
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger.WithFields(log.Fields{
		"backend":   cfg.Storage.Backend,
		"namespace": cfg.Storage.Namespace,
	}).Info("snapshot storage ready")

	deps.Store = store.New(ctx, repo,
		store.WithLogger(logger.WithField("layer", "store")),
		store.WithMetrics(metrics.NewStoreMetrics(deps.Registry)),
	)

	deps.Publisher = events.Noop{}
	if cfg.Kafka.Enabled() {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without order events")
		} else {
			deps.Publisher = publisher
			deps.closers = append(deps.closers, publisher.Close)
			logger.WithField("brokers", cfg.Kafka.Brokers).Info("kafka producer initialized")
		}
	}

	deps.Gateway = payment.NewMock(cfg.Checkout.PaymentDelay)
	deps.Checkout = checkout.NewService(
		deps.Store,
		deps.Gateway,
		deps.Publisher,
		checkout.Pricing{ShippingFlat: cfg.Checkout.ShippingFlat, TaxRate: cfg.Checkout.TaxRate},
		logger.WithField("layer", "checkout"),
	)

	return deps, nil
}

// Close releases the producer and the storage backend, newest first.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.WithError(err).Warn("close dependency")
		}
	}
	d.closers = nil
}
