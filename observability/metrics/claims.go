package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"m4aledger/core/events"
)

// ClaimsMetrics tracks ledger activity for operators. The recorder consumes
// the engine's event stream so the engine itself stays metrics-agnostic.
type ClaimsMetrics struct {
	eventsTotal    *prometheus.CounterVec
	claimsResolved *prometheus.CounterVec
	queueDepth     prometheus.Gauge
	feesCharged    prometheus.Counter
}

var (
	claimsOnce     sync.Once
	claimsRegistry *ClaimsMetrics
)

func Claims() *ClaimsMetrics {
	claimsOnce.Do(func() {
		claimsRegistry = &ClaimsMetrics{
			eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "m4a_ledger_events_total",
				Help: "Count of ledger events emitted by type.",
			}, []string{"type"}),
			claimsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "m4a_claims_resolved_total",
				Help: "Count of terminal claim resolutions by outcome.",
			}, []string{"outcome"}),
			queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "m4a_claim_queue_depth",
				Help: "Number of claims currently waiting in the intake queue.",
			}),
			feesCharged: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "m4a_fees_charged_total",
				Help: "Count of successful flat-fee charges.",
			}),
		}
		prometheus.MustRegister(
			claimsRegistry.eventsTotal,
			claimsRegistry.claimsResolved,
			claimsRegistry.queueDepth,
			claimsRegistry.feesCharged,
		)
	})
	return claimsRegistry
}

// Recorder adapts ClaimsMetrics to the events.Emitter interface so it can be
// chained onto the engine alongside any other subscriber.
type Recorder struct {
	metrics *ClaimsMetrics
	next    events.Emitter
}

// NewRecorder wraps the shared metrics registry. The next emitter may be nil.
func NewRecorder(next events.Emitter) *Recorder {
	return &Recorder{metrics: Claims(), next: next}
}

// Emit implements events.Emitter.
func (r *Recorder) Emit(evt *events.Event) {
	if r == nil || evt == nil {
		return
	}
	if r.metrics != nil {
		r.metrics.observe(evt)
	}
	if r.next != nil {
		r.next.Emit(evt)
	}
}

func (m *ClaimsMetrics) observe(evt *events.Event) {
	m.eventsTotal.WithLabelValues(evt.Type).Inc()
	if outcome, ok := evt.Attributes["outcome"]; ok {
		m.claimsResolved.WithLabelValues(outcome).Inc()
	}
	if depth, ok := evt.Attributes["queueCount"]; ok {
		if parsed, err := strconv.ParseFloat(depth, 64); err == nil {
			m.queueDepth.Set(parsed)
		}
	}
	if _, ok := evt.Attributes["feeAmount"]; ok {
		m.feesCharged.Inc()
	}
}
