package metrics

import "github.com/prometheus/client_golang/prometheus"

// Keys for sqlkv metrics.
const (
	Fail = "fail"
	Ok   = "ok"
)

// Collectors for store and transaction metrics.
var (
	StoreWriteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sqlkv_write_total",
		Help: "Cumulative number of store writes.",
	}, []string{"strategy", "status"})
	StoreReadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sqlkv_read_total",
		Help: "Cumulative number of store reads.",
	}, []string{"strategy", "status"})
	StoreDeleteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sqlkv_delete_total",
		Help: "Cumulative number of store deletes.",
	}, []string{"strategy", "status"})
	TxnRollbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sqlkv_txn_rollback_total",
		Help: "Cumulative number of write transactions rolled back.",
	})
	GCRunTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sqlkv_gc_run_total",
		Help: "Cumulative number of garbage collection passes.",
	})
	GCDiscardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sqlkv_gc_discarded_entries_total",
		Help: "Cumulative number of superseded value entries discarded by garbage collection.",
	})
)

// StoreCollectors returns the collectors of this package, for registration
// with a prometheus.Registerer of the caller's choosing.
func StoreCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		StoreWriteTotal,
		StoreReadTotal,
		StoreDeleteTotal,
		TxnRollbackTotal,
		GCRunTotal,
		GCDiscardedTotal,
	}
}
