package jobs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK     = "ok"
	resultIdle   = "idle"
	resultFailed = "failed"
)

var (
	tickTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "job_ticks_total",
		Help:      "Job ticks by job and result.",
	}, []string{"job", "result"})

	tickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dispatch",
		Name:      "job_tick_duration_seconds",
		Help:      "Duration of job ticks.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})

	outboxPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "outbox_messages_published_total",
		Help:      "Outbox messages published and marked processed.",
	})
)

func observeTick(job, result string, started time.Time) {
	tickTotal.WithLabelValues(job, result).Inc()
	tickDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}
