package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives store events. The store depends on this, not on
// prometheus, so tests can pass Noop.
type Recorder interface {
	CartMutation(op string)
	WishlistMutation(op string)
	OrderCreated()
	OrderStatusChanged(status string)
	PersistDuration(d time.Duration)
	PersistFailed(key string)
	HydrationFallback(key string)
	CollectionSizes(cartItems, wishlistItems, orders int)
}

type Noop struct{}

func (Noop) CartMutation(string)           {}
func (Noop) WishlistMutation(string)       {}
func (Noop) OrderCreated()                 {}
func (Noop) OrderStatusChanged(string)     {}
func (Noop) PersistDuration(time.Duration) {}
func (Noop) PersistFailed(string)          {}
func (Noop) HydrationFallback(string)      {}
func (Noop) CollectionSizes(int, int, int) {}

type StoreMetrics struct {
	cartMutations     *prometheus.CounterVec
	wishlistMutations *prometheus.CounterVec
	ordersCreated     prometheus.Counter
	statusChanges     *prometheus.CounterVec
	persistDuration   prometheus.Histogram
	persistFailures   *prometheus.CounterVec
	hydrationFallback *prometheus.CounterVec
	cartItems         prometheus.Gauge
	wishlistItems     prometheus.Gauge
	orders            prometheus.Gauge
}

func NewStoreMetrics(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "maison_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"op"}),
		wishlistMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "maison_wishlist_mutations_total",
			Help: "Wishlist mutations by operation",
		}, []string{"op"}),
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "maison_orders_created_total",
			Help: "Orders created at checkout",
		}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "maison_order_status_changes_total",
			Help: "Order status updates by target status",
		}, []string{"status"}),
		persistDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "maison_snapshot_persist_duration_seconds",
			Help:    "Time to write a full store snapshot",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		persistFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "maison_snapshot_persist_failures_total",
			Help: "Failed snapshot writes by key",
		}, []string{"key"}),
		hydrationFallback: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "maison_snapshot_hydration_fallbacks_total",
			Help: "Collections started empty because the stored snapshot was unreadable",
		}, []string{"key"}),
		cartItems: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "maison_cart_items",
			Help: "Total quantity of items in the cart",
		}),
		wishlistItems: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "maison_wishlist_items",
			Help: "Products on the wishlist",
		}),
		orders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "maison_orders",
			Help: "Orders in the order history",
		}),
	}
}

func (m *StoreMetrics) CartMutation(op string) {
	m.cartMutations.WithLabelValues(op).Inc()
}

func (m *StoreMetrics) WishlistMutation(op string) {
	m.wishlistMutations.WithLabelValues(op).Inc()
}

func (m *StoreMetrics) OrderCreated() {
	m.ordersCreated.Inc()
}

func (m *StoreMetrics) OrderStatusChanged(status string) {
	m.statusChanges.WithLabelValues(status).Inc()
}

func (m *StoreMetrics) PersistDuration(d time.Duration) {
	m.persistDuration.Observe(d.Seconds())
}

func (m *StoreMetrics) PersistFailed(key string) {
	m.persistFailures.WithLabelValues(key).Inc()
}

func (m *StoreMetrics) HydrationFallback(key string) {
	m.hydrationFallback.WithLabelValues(key).Inc()
}

func (m *StoreMetrics) CollectionSizes(cartItems, wishlistItems, orders int) {
	m.cartItems.Set(float64(cartItems))
	m.wishlistItems.Set(float64(wishlistItems))
	m.orders.Set(float64(orders))
}

// The register helpers reuse an already registered collector so a second
// store in the same process does not panic.

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := registerer.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
		panic(err)
	}
	return h
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	g := prometheus.NewGauge(opts)
	if err := registerer.Register(g); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing
			}
		}
		panic(err)
	}
	return g
}

var (
	_ Recorder = (*StoreMetrics)(nil)
	_ Recorder = Noop{}
)
