package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.CartMutation("add")
	m.CartMutation("add")
	m.CartMutation("remove")
	m.WishlistMutation("add")
	m.OrderCreated()
	m.OrderStatusChanged("shipped")
	m.PersistFailed("cart")
	m.HydrationFallback("orders")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("remove")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wishlistMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusChanges.WithLabelValues("shipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures.WithLabelValues("cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hydrationFallback.WithLabelValues("orders")))
}

func TestStoreMetrics_Gauges(t *testing.T) {
	m := NewStoreMetrics(prometheus.NewRegistry())

	m.CollectionSizes(3, 2, 1)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.cartItems))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.wishlistItems))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orders))

	m.PersistDuration(3 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(m.persistDuration))
}

func TestStoreMetrics_ReRegisterReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewStoreMetrics(reg)
	var second *StoreMetrics
	require.NotPanics(t, func() { second = NewStoreMetrics(reg) })

	first.OrderCreated()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.ordersCreated))
}
