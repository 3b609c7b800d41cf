package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
)

var _ ports.WorkQueue = (*MemoryQueue)(nil)

var ErrQueueClosed = errors.New("queue: closed")

// MemoryJob is a job held by MemoryQueue.
type MemoryJob struct {
	Handle  domain.JobHandle
	Payload domain.JobPayload
	Revoked bool
}

// MemoryQueue keeps jobs in process. Nothing consumes them; it lets the
// control plane run without a broker.
type MemoryQueue struct {
	mu     sync.Mutex
	jobs   []*MemoryJob
	index  map[domain.JobHandle]*MemoryJob
	closed bool
	logger *logger.Logger
}

func NewMemoryQueue(log *logger.Logger) *MemoryQueue {
	return &MemoryQueue{index: make(map[domain.JobHandle]*MemoryJob), logger: log}
}

func (q *MemoryQueue) Submit(_ context.Context, payload domain.JobPayload) (domain.JobHandle, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", ErrQueueClosed
	}
	job := &MemoryJob{Handle: domain.JobHandle(uuid.NewString()), Payload: payload}
	q.jobs = append(q.jobs, job)
	q.index[job.Handle] = job
	q.logger.Debugw("queue_submit_ok", "job_handle", job.Handle, "action", payload.Action)
	return job.Handle, nil
}

// Revoke marks the job revoked. Unknown handles are accepted, matching a
// broker that cannot tell whether a worker still holds the job.
func (q *MemoryQueue) Revoke(_ context.Context, handle domain.JobHandle) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if job, ok := q.index[handle]; ok {
		job.Revoked = true
	}
	q.logger.Debugw("queue_revoke_ok", "job_handle", handle)
	return nil
}

// Jobs returns a snapshot of every submitted job in order.
func (q *MemoryQueue) Jobs() []MemoryJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]MemoryJob, len(q.jobs))
	for i, j := range q.jobs {
		out[i] = *j
	}
	return out
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
