package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.IncTasksSubmitted("domain")
	r.IncTasksSubmitted("domain")
	r.IncTasksSubmitted("ip")
	r.IncRequestsRejected("TargetInvalid")
	r.IncTasksStopped()
	r.IncTasksDeleted(3)
	r.IncSyncsRequested()
	r.IncMessagesPublished("arl.task")
	r.IncPublishErrors("arl.control")
	r.ObserveRequest("POST", "/api/task/", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.TasksSubmitted.WithLabelValues("domain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.TasksSubmitted.WithLabelValues("ip")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RequestsRejected.WithLabelValues("TargetInvalid")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.TasksDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PublishErrors.WithLabelValues("arl.control")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.RequestDuration))
}

func TestNew_SeparateRegistries(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
