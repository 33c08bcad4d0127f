package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for TransactionsTotal.
const (
	outcomeOK          = "ok"
	outcomeClientError = "client_error"
	outcomeServerError = "server_error"
)

// TransactionsTotal counts executed transactions by name and outcome.
var TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "payroll",
	Name:      "transactions_total",
	Help:      "Total payroll transactions executed, by transaction and outcome.",
}, []string{"transaction", "outcome"})

// PaychecksTotal counts paychecks produced by pay runs.
var PaychecksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "payroll",
	Name:      "paychecks_total",
	Help:      "Total paychecks produced by payday runs.",
})

// PaydayDuration tracks how long a pay run takes.
var PaydayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "payroll",
	Name:      "payday_duration_seconds",
	Help:      "Duration of payday runs in seconds.",
	Buckets:   prometheus.DefBuckets,
})
