// Package metrics exposes the control plane's Prometheus instruments.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lighthouse/backend/internal/core/ports"
)

var (
	_ ports.TaskMetrics  = (*Recorder)(nil)
	_ ports.QueueMetrics = (*Recorder)(nil)
)

const namespace = "arl"

// Recorder implements ports.TaskMetrics and ports.QueueMetrics.
type Recorder struct {
	// Task metrics
	TasksSubmitted   *prometheus.CounterVec
	RequestsRejected *prometheus.CounterVec
	TasksStopped     prometheus.Counter
	TasksDeleted     prometheus.Counter
	SyncsRequested   prometheus.Counter

	// Queue metrics
	MessagesPublished *prometheus.CounterVec
	PublishErrors     *prometheus.CounterVec

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
}

// New registers every instrument on reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		TasksSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Total number of tasks created and dispatched",
		}, []string{"type"}),
		RequestsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_rejected_total",
			Help:      "Total number of task requests refused, by error kind",
		}, []string{"kind"}),
		TasksStopped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_stopped_total",
			Help:      "Total number of tasks stopped",
		}),
		TasksDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_deleted_total",
			Help:      "Total number of tasks deleted",
		}),
		SyncsRequested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_requested_total",
			Help:      "Total number of scope syncs dispatched",
		}),

		MessagesPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "messages_published_total",
			Help:      "Total number of messages acknowledged by the broker",
		}, []string{"topic"}),
		PublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "publish_errors_total",
			Help:      "Total number of messages the broker did not accept",
		}, []string{"topic"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time taken to serve API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (r *Recorder) IncTasksSubmitted(taskType string) {
	r.TasksSubmitted.WithLabelValues(taskType).Inc()
}

func (r *Recorder) IncRequestsRejected(kind string) { r.RequestsRejected.WithLabelValues(kind).Inc() }

func (r *Recorder) IncTasksStopped() { r.TasksStopped.Inc() }

func (r *Recorder) IncTasksDeleted(n int) { r.TasksDeleted.Add(float64(n)) }

func (r *Recorder) IncSyncsRequested() { r.SyncsRequested.Inc() }

func (r *Recorder) IncMessagesPublished(topic string) {
	r.MessagesPublished.WithLabelValues(topic).Inc()
}

func (r *Recorder) IncPublishErrors(topic string) { r.PublishErrors.WithLabelValues(topic).Inc() }

func (r *Recorder) ObserveRequest(method, route string, status int, d time.Duration) {
	r.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
