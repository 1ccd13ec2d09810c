package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "storefront"

// Counter is a Prometheus counter that can report its current value.
type Counter struct {
	prometheus.Counter
}

func (c Counter) Load() uint64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return uint64(m.GetCounter().GetValue())
}

// Timer measures the wall time of one operation.
type Timer struct {
	began time.Time
}

func StartTimer() Timer {
	return Timer{began: time.Now()}
}

func (t Timer) Duration() time.Duration {
	return time.Since(t.began)
}

// Registry owns the process metrics. Each Registry registers into its own
// Prometheus registry, so tests can build as many as they like.
type Registry struct {
	OrdersPlaced         Counter
	CheckoutRetries      Counter
	CheckoutRejected     Counter
	StatusTransitions    Counter
	PaymentCallbacks     Counter
	PaymentReplays       Counter
	NotificationsSent    Counter
	NotificationsRetried Counter
	NotificationsDead    Counter
	NotificationsDropped Counter

	checkoutDuration prometheus.Histogram
	reg              *prometheus.Registry
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	counter := func(name, help string) Counter {
		return Counter{factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})}
	}

	return &Registry{
		OrdersPlaced:         counter("orders_placed_total", "Orders created by checkout."),
		CheckoutRetries:      counter("checkout_retries_total", "Checkouts retried after an order number collision."),
		CheckoutRejected:     counter("checkout_rejected_total", "Checkouts rejected by validation, stock or coupon rules."),
		StatusTransitions:    counter("order_status_transitions_total", "Order status changes applied."),
		PaymentCallbacks:     counter("payment_callbacks_total", "Payment gateway callbacks processed."),
		PaymentReplays:       counter("payment_replays_total", "Payment callbacks ignored as already processed."),
		NotificationsSent:    counter("notifications_sent_total", "Notifications delivered."),
		NotificationsRetried: counter("notifications_retried_total", "Notification delivery attempts that were retried."),
		NotificationsDead:    counter("notifications_dead_total", "Notifications moved to the dead letter list."),
		NotificationsDropped: counter("notifications_dropped_total", "Notifications that could not be enqueued."),

		checkoutDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_seconds",
			Help:      "Latency of successful checkouts.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		reg: reg,
	}
}

// ObserveCheckout records the latency of one completed checkout.
func (r *Registry) ObserveCheckout(d time.Duration) {
	r.checkoutDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
