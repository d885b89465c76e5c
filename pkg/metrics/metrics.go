package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the roster service's Prometheus instruments.
// A nil *Collector is valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	proposalsStaged   prometheus.Counter
	proposalsApproved prometheus.Counter
	proposalsRejected *prometheus.CounterVec
	proposalsExpired  prometheus.Counter
	proposalsPending  prometheus.Gauge
	promotions        *prometheus.CounterVec
	statusUpdates     *prometheus.CounterVec
}

// New registers the collectors on a fresh registry under the given namespace
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = "roster"
	}
	reg := prometheus.NewRegistry()

	c := &Collector{
		gatherer: reg,
		proposalsStaged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proposals",
			Name:      "staged_total",
			Help:      "Randomized roster proposals staged for approval.",
		}),
		proposalsApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proposals",
			Name:      "approved_total",
			Help:      "Proposals approved and committed.",
		}),
		proposalsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proposals",
			Name:      "rejected_total",
			Help:      "Approval attempts rejected, by reason.",
		}, []string{"reason"}),
		proposalsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proposals",
			Name:      "expired_total",
			Help:      "Proposals purged after their time-to-live.",
		}),
		proposalsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "proposals",
			Name:      "pending",
			Help:      "Proposals currently awaiting approval.",
		}),
		promotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotions_total",
			Help:      "Single-participant roster promotions, by kind.",
		}, []string{"kind"}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "status_updates_total",
			Help:      "Signup status writes to the store, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.proposalsStaged,
		c.proposalsApproved,
		c.proposalsRejected,
		c.proposalsExpired,
		c.proposalsPending,
		c.promotions,
		c.statusUpdates,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) ProposalStaged() {
	if c == nil {
		return
	}
	c.proposalsStaged.Inc()
}

func (c *Collector) ProposalApproved() {
	if c == nil {
		return
	}
	c.proposalsApproved.Inc()
}

func (c *Collector) ProposalRejected(reason string) {
	if c == nil {
		return
	}
	c.proposalsRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) ProposalsExpired(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.proposalsExpired.Add(float64(n))
}

func (c *Collector) SetPending(n int) {
	if c == nil {
		return
	}
	c.proposalsPending.Set(float64(n))
}

func (c *Collector) Promotion(kind string) {
	if c == nil {
		return
	}
	c.promotions.WithLabelValues(kind).Inc()
}

func (c *Collector) StatusUpdate(ok bool) {
	if c == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	c.statusUpdates.WithLabelValues(result).Inc()
}
