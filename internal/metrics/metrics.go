package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_created_total",
		Help: "Total number of reservations successfully requested.",
	})

	ReservationTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_transitions_total",
		Help: "Total number of persisted state changes, by machine (status or deposit) and target state.",
	},
		[]string{"machine", "state"},
	)

	ReservationsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_expired_total",
		Help: "Total number of reservations expired by the overdue sweep.",
	})

	InventorySyncFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_inventory_sync_failures_total",
		Help: "Total number of completed reservations whose device could not be marked sold.",
	})

	EnrichmentFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_enrichment_failures_total",
		Help: "Total number of device lookups that failed while enriching listings.",
	})

	TransactionRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_tx_retries_total",
		Help: "Total number of reservation transactions retried, by reason.",
	},
		[]string{"reason"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
