package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(jobTransitionsTotal, jobsInFlight, jobQueueRejected, jobQueueDepth, jobDurationSeconds)
}

var (
	jobTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_job_transitions_total",
			Help: "Job status writes, labeled by the new status.",
		},
		[]string{"status"}, // pending, processing, completed, failed
	)

	jobsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "workflow_jobs_in_flight",
			Help: "Background jobs currently executing on the worker pool.",
		},
	)

	jobQueueRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_job_queue_rejected_total",
			Help: "Jobs rejected because the worker queue was full.",
		},
	)

	jobQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "workflow_job_queue_depth",
			Help: "Tasks waiting in the worker queue.",
		},
	)

	jobDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_job_duration_seconds",
			Help:    "Wall time of background jobs from pickup to terminal status.",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 90, 120, 180, 300},
		},
		[]string{"status"},
	)
)

func IncJobTransition(status string) {
	jobTransitionsTotal.WithLabelValues(norm(status)).Inc()
}

func JobStarted()  { jobsInFlight.Inc() }
func JobFinished() { jobsInFlight.Dec() }

func IncJobRejected() { jobQueueRejected.Inc() }

func SetJobQueueDepth(n int) { jobQueueDepth.Set(float64(n)) }

func ObserveJobDuration(status string, seconds float64) {
	jobDurationSeconds.WithLabelValues(norm(status)).Observe(seconds)
}
