package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records scan, dispatch and delivery activity.
// A nil *Metrics or one built with a nil registerer is a no-op.
type Metrics struct {
	scans       *prometheus.CounterVec
	broadcasts  *prometheus.CounterVec
	recipients  prometheus.Counter
	receipts    *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	exhausted   prometheus.Counter
}

// New registers the metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conreach_scans_total",
		Help: "Booth scans by resolution outcome.",
	}, []string{"outcome"})
	broadcasts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conreach_broadcasts_total",
		Help: "Dispatched broadcasts by channel and scope.",
	}, []string{"channel", "scope"})
	recipients := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conreach_broadcast_recipients_total",
		Help: "Receipts created by dispatched broadcasts.",
	})
	receipts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conreach_receipt_transitions_total",
		Help: "Receipt status transitions by channel and resulting status.",
	}, []string{"channel", "status"})
	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "conreach_delivery_run_duration_seconds",
		Help:    "Duration of delivery runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel", "result"})
	exhausted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conreach_delivery_exhausted_total",
		Help: "Delivery tasks that ran out of attempts.",
	})
	reg.MustRegister(scans, broadcasts, recipients, receipts, runDuration, exhausted)
	return &Metrics{
		scans:       scans,
		broadcasts:  broadcasts,
		recipients:  recipients,
		receipts:    receipts,
		runDuration: runDuration,
		exhausted:   exhausted,
	}
}

// IncScan counts one resolved scan.
func (m *Metrics) IncScan(outcome string) {
	if m == nil || m.scans == nil {
		return
	}
	m.scans.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncBroadcast counts one dispatched broadcast and its recipients.
func (m *Metrics) IncBroadcast(channel, scope string, recipients int) {
	if m == nil || m.broadcasts == nil {
		return
	}
	m.broadcasts.WithLabelValues(normalizeLabel(channel), normalizeLabel(scope)).Inc()
	m.recipients.Add(float64(recipients))
}

// IncReceipt counts one receipt leaving pending.
func (m *Metrics) IncReceipt(channel, status string) {
	if m == nil || m.receipts == nil {
		return
	}
	m.receipts.WithLabelValues(normalizeLabel(channel), normalizeLabel(status)).Inc()
}

// ObserveRun records the duration of one delivery run. result is "ok" or "error".
func (m *Metrics) ObserveRun(channel, result string, d time.Duration) {
	if m == nil || m.runDuration == nil {
		return
	}
	m.runDuration.WithLabelValues(normalizeLabel(channel), normalizeLabel(result)).Observe(d.Seconds())
}

// IncExhausted counts one delivery task that gave up.
func (m *Metrics) IncExhausted() {
	if m == nil || m.exhausted == nil {
		return
	}
	m.exhausted.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
