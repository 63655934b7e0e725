package stub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketstub"

// loginsTotal counts authentication attempts by outcome ("ok" / "failed").
var loginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// rfqsCreatedTotal counts posted RFQs.
var rfqsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rfqs_created_total",
		Help:      "Total number of RFQs posted.",
	},
)

// bidsCreatedTotal counts submitted bids.
var bidsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bids_created_total",
		Help:      "Total number of bids submitted.",
	},
)

// awardsTotal counts awarded bids.
var awardsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "awards_total",
		Help:      "Total number of bids awarded.",
	},
)
