package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nexran"

var (
	transactionsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "e2ap",
			Name:      "transactions_sent_total",
			Help:      "Count of E2AP requests handed to the transport, by message kind.",
		},
		[]string{"kind"},
	)
	sendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "e2ap",
			Name:      "send_failures_total",
			Help:      "Count of E2AP requests the transport refused, by message kind.",
		},
		[]string{"kind"},
	)
	messagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "e2ap",
			Name:      "messages_received_total",
			Help:      "Count of inbound E2AP messages, by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	messagesDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "e2ap",
			Name:      "messages_discarded_total",
			Help:      "Count of inbound E2AP messages dropped, by reason.",
		},
		[]string{"reason"},
	)
	transactionsExpired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "e2ap",
			Name:      "transactions_expired_total",
			Help:      "Count of pending transactions evicted by the reaper, by table.",
		},
		[]string{"table"},
	)
	pendingTransactions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "e2ap",
			Name:      "pending_transactions",
			Help:      "Number of entries in each transaction table.",
		},
		[]string{"table"},
	)
	reportsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "reports_processed_total",
			Help:      "Count of KPM reports run through the allocation controller.",
		},
	)
	shareChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "share_changes_total",
			Help:      "Count of slice share changes, by reason.",
		},
		[]string{"reason"},
	)
	sliceShare = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "slice_share",
			Help:      "Current proportional share of each slice.",
		},
		[]string{"slice"},
	)
)

var registerMetrics sync.Once

// Register adds every collector to reg. Only the first call has an effect.
func Register(reg prometheus.Registerer) {
	registerMetrics.Do(func() {
		reg.MustRegister(
			transactionsSent,
			sendFailures,
			messagesReceived,
			messagesDiscarded,
			transactionsExpired,
			pendingTransactions,
			reportsProcessed,
			shareChanges,
			sliceShare,
		)
	})
}

func RecordSent(kind string) {
	transactionsSent.WithLabelValues(kind).Inc()
}

func RecordSendFailure(kind string) {
	sendFailures.WithLabelValues(kind).Inc()
}

func RecordReceived(kind, outcome string) {
	messagesReceived.WithLabelValues(kind, outcome).Inc()
}

func RecordDiscarded(reason string) {
	messagesDiscarded.WithLabelValues(reason).Inc()
}

func RecordExpired(table string, n int) {
	if n > 0 {
		transactionsExpired.WithLabelValues(table).Add(float64(n))
	}
}

func SetPending(table string, n int) {
	pendingTransactions.WithLabelValues(table).Set(float64(n))
}

func RecordReport() {
	reportsProcessed.Inc()
}

func RecordShareChange(reason, slice string, share int) {
	shareChanges.WithLabelValues(reason).Inc()
	sliceShare.WithLabelValues(slice).Set(float64(share))
}

func SetSliceShare(slice string, share int) {
	sliceShare.WithLabelValues(slice).Set(float64(share))
}

func DeleteSlice(slice string) {
	sliceShare.DeleteLabelValues(slice)
}
