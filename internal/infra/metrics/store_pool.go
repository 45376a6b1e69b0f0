package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(storePoolConns) }

var storePoolConns = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "job_store_pool_conns",
		Help: "Connections held by the job store client pool.",
	},
	[]string{"backend", "state"}, // state: total, idle, in_use
)

// SetStorePoolConns publishes one snapshot of a backend's connection pool.
func SetStorePoolConns(backend string, total, idle, inUse int) {
	b := norm(backend)
	storePoolConns.WithLabelValues(b, "total").Set(float64(total))
	storePoolConns.WithLabelValues(b, "idle").Set(float64(idle))
	storePoolConns.WithLabelValues(b, "in_use").Set(float64(inUse))
}
