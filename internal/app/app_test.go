package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/safar/maison-store/internal/catalog"
	"github.com/safar/maison-store/internal/config"
	"github.com/safar/maison-store/internal/events"
	"github.com/safar/maison-store/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         "0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Storage: config.StorageConfig{
			Backend:   backend,
			Namespace: "test",
		},
		Checkout: config.CheckoutConfig{
			ShippingFlat: decimal.NewFromInt(15),
			TaxRate:      decimal.RequireFromString("0.1"),
		},
		LogLevel: "info",
	}
}

func TestOpenRepositoryMemory(t *testing.T) {
	repo, closeRepo, err := OpenRepository(context.Background(), testConfig(config.BackendMemory))
	require.NoError(t, err)
	defer closeRepo()

	_, err = repo.Load(context.Background(), storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpenRepositoryUnknownBackend(t *testing.T) {
	_, closeRepo, err := OpenRepository(context.Background(), testConfig("etcd"))
	assert.Error(t, err)
	assert.NotNil(t, closeRepo)
}

func TestDependenciesSurviveRestartOnSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(config.BackendSQLite)
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "maison.db")

	deps, err := NewDependencies(ctx, cfg, nil)
	require.NoError(t, err)
	product, ok := catalog.ByID(4)
	require.True(t, ok)
	require.NoError(t, deps.Store.AddToWishlist(ctx, product))
	deps.Close()

	deps, err = NewDependencies(ctx, cfg, nil)
	require.NoError(t, err)
	defer deps.Close()
	assert.True(t, deps.Store.IsInWishlist(4))
	assert.IsType(t, events.Noop{}, deps.Publisher)
}

func TestDependenciesFallBackWithoutKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping broker dial in short mode")
	}

	cfg := testConfig(config.BackendMemory)
	cfg.Kafka = config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, OrderTopic: "maison.orders"}

	deps, err := NewDependencies(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer deps.Close()
	assert.IsType(t, events.Noop{}, deps.Publisher)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, testConfig(config.BackendMemory)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
