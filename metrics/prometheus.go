package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// OrdersPlaced counts orders by fulfillment option and payment method
	OrdersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Total number of placed orders",
		},
		[]string{"option", "payment_method"},
	)

	// OrderStatusChanges counts status transitions
	OrderStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_changes_total",
			Help: "Total number of order status transitions",
		},
		[]string{"to"},
	)

	// OrderValue tracks order totals
	OrderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_value",
			Help:    "Order totals in the store currency",
			Buckets: []float64{20, 40, 60, 80, 100, 150, 200, 300, 500},
		},
	)

	// DeliveryQuotes counts delivery zone resolutions by outcome
	DeliveryQuotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_quotes_total",
			Help: "Delivery quotes by outcome (ok, free, below_minimum, out_of_range)",
		},
		[]string{"outcome"},
	)

	// DiscountsApplied counts discounts by source
	DiscountsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discounts_applied_total",
			Help: "Discounts applied to placed orders",
		},
		[]string{"source"},
	)

	// MenuRefreshes counts menu cache reloads
	MenuRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_cache_refreshes_total",
			Help: "Menu snapshot reloads by result",
		},
		[]string{"result"},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit_name"},
	)

	// CircuitBreakerFailures tracks calls that failed through a breaker
	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of circuit breaker failures",
		},
		[]string{"circuit_name"},
	)

	// ActiveCarts tracks carts held in memory
	ActiveCarts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_carts",
			Help: "Number of carts held in memory",
		},
	)
)

// PrometheusMiddleware creates a Gin middleware for automatic metrics collection
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
