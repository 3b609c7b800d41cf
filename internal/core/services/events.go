package services

import (
	"context"
	"time"

	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
)

type ctxKey string

// RequestIDKey carries the request id from the transport into services.
const RequestIDKey ctxKey = "request_id"

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// eventRecorder writes timeline entries. A failed write is logged and
// never fails the operation that produced it.
type eventRecorder struct {
	timelineRepo ports.TimelineRepository
	logger       *logger.Logger
}

func (r eventRecorder) record(ctx context.Context, resourceType, resourceID, etype string, status domain.EventStatus, msg string, meta map[string]interface{}) {
	if r.timelineRepo == nil {
		return
	}
	metadata := domain.JSONB{}
	for k, v := range meta {
		metadata[k] = v
	}
	if id := RequestID(ctx); id != "" {
		metadata["request_id"] = id
	}
	event := &domain.TimelineEvent{
		Type:         etype,
		Status:       status,
		Message:      msg,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Meta:         metadata,
		CreatedAt:    time.Now(),
	}
	if err := r.timelineRepo.Create(ctx, event); err != nil {
		r.logger.Warnw("timeline_record_failed",
			"type", etype,
			"resource_type", resourceType,
			"resource_id", resourceID,
			"error", err,
		)
	}
}

type nopTaskMetrics struct{}

func (nopTaskMetrics) IncTasksSubmitted(string)   {}
func (nopTaskMetrics) IncRequestsRejected(string) {}
func (nopTaskMetrics) IncTasksStopped()           {}
func (nopTaskMetrics) IncTasksDeleted(int)        {}
func (nopTaskMetrics) IncSyncsRequested()         {}
