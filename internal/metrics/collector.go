package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/courtside-app/courtside/internal/event"
	"github.com/courtside-app/courtside/internal/realtime"
)

const namespace = "courtside"

// Admission results used as the "result" label.
const (
	ResultAdmitted = "admitted"
	ResultFailed   = "failed"
)

// StatusSource reports coordinator counts. *realtime.Coordinator satisfies it.
type StatusSource interface {
	Status() realtime.Status
}

// Collector owns a Prometheus registry fed by coordinator events.
type Collector struct {
	registry *prometheus.Registry

	admissions    *prometheus.CounterVec
	retries       prometheus.Counter
	drops         prometheus.Counter
	demotions     prometheus.Counter
	cancellations prometheus.Counter
	changes       prometheus.Counter

	mu    sync.Mutex
	bus   *event.Bus
	subID string
}

// NewCollector creates a collector whose gauges sample source on each scrape.
func NewCollector(source StatusSource) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Channel admission attempts by result.",
		}, []string{"result"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retries scheduled after a failed admission or a lost channel.",
		}),
		drops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drops_total",
			Help:      "Requests dropped after exhausting their retries.",
		}),
		demotions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "demotions_total",
			Help:      "Active channels that reported ERROR or CLOSED.",
		}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Subscriptions cancelled by their owner.",
		}),
		changes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_total",
			Help:      "Change notifications delivered to subscription callbacks.",
		}),
	}

	// Pre-create both series so they export zero before the first event.
	c.admissions.WithLabelValues(ResultAdmitted)
	c.admissions.WithLabelValues(ResultFailed)

	c.registry.MustRegister(
		c.admissions, c.retries, c.drops, c.demotions, c.cancellations, c.changes,
		statusGauge("subscriptions_queued", "Requests waiting for admission.", source,
			func(s realtime.Status) int { return s.QueuedCount }),
		statusGauge("subscriptions_active", "Subscriptions with a live channel.", source,
			func(s realtime.Status) int { return s.ActiveCount }),
		statusGauge("subscriptions_retrying", "Failed requests waiting out their backoff.", source,
			func(s realtime.Status) int { return s.RetryingCount }),
		collectors.NewGoCollector(),
	)
	return c
}

func statusGauge(name, help string, source StatusSource, pick func(realtime.Status) int) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, func() float64 {
		if source == nil {
			return 0
		}
		return float64(pick(source.Status()))
	})
}

// Attach starts counting events published on bus. Attaching again moves the
// collector to the new bus.
func (c *Collector) Attach(bus *event.Bus) {
	c.Detach()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.bus = bus
	c.subID = bus.SubscribeAll(c.observe)
}

// Detach stops counting events.
func (c *Collector) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bus != nil {
		c.bus.Unsubscribe(c.subID)
	}
	c.bus = nil
	c.subID = ""
}

func (c *Collector) observe(e event.Event) {
	switch e.(type) {
	case event.SubscriptionAdmittedEvent:
		c.admissions.WithLabelValues(ResultAdmitted).Inc()
	case event.SubscriptionFailedEvent:
		c.admissions.WithLabelValues(ResultFailed).Inc()
	case event.SubscriptionRetryScheduledEvent:
		c.retries.Inc()
	case event.SubscriptionDroppedEvent:
		c.drops.Inc()
	case event.SubscriptionDemotedEvent:
		c.demotions.Inc()
	case event.SubscriptionCancelledEvent:
		c.cancellations.Inc()
	case event.SubscriptionChangedEvent:
		c.changes.Inc()
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
