package ports

import (
	"context"
	"errors"
	"time"

	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/domain"
)

// ErrConflict is returned by conditional writes whose guard no longer holds.
var ErrConflict = errors.New("store: conditional write matched no rows")

// TaskPatch names the task fields an update sets. Nil fields are untouched.
type TaskPatch struct {
	Status     *domain.TaskStatus
	SyncStatus *domain.SyncStatus
	EndTime    *time.Time
	JobHandle  *domain.JobHandle
}

// TaskGuard restricts a conditional update to tasks still in one of the
// listed states. Empty lists do not constrain.
type TaskGuard struct {
	Statuses     []domain.TaskStatus
	SyncStatuses []domain.SyncStatus
}

// TaskRepository is the task collection. GetByID returns (nil, nil) when
// the task does not exist.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Find(ctx context.Context, q query.Query) ([]domain.Task, int64, error)
	Update(ctx context.Context, id string, patch TaskPatch) error
	UpdateIf(ctx context.Context, id string, guard TaskGuard, patch TaskPatch) error
	// DeleteTerminal removes every listed task, and its rows in the given
	// result collections, in one transaction. Nothing is removed and
	// ErrConflict is returned unless every task is still terminal.
	DeleteTerminal(ctx context.Context, ids []string, collections []string) error
}

type AssetScopeRepository interface {
	Create(ctx context.Context, scope *domain.AssetScope) error
	GetByID(ctx context.Context, id string) (*domain.AssetScope, error)
	Find(ctx context.Context, q query.Query) ([]domain.AssetScope, int64, error)
	Delete(ctx context.Context, id string) error
}

type ResultRepository interface {
	Find(ctx context.Context, collection string, q query.Query) ([]domain.ResultRecord, int64, error)
}

type TimelineRepository interface {
	Create(ctx context.Context, event *domain.TimelineEvent) error
	GetByResource(ctx context.Context, resourceType string, resourceID string) ([]domain.TimelineEvent, error)
	GetAll(ctx context.Context, limit int) ([]domain.TimelineEvent, error)
}

type SystemSettingRepository interface {
	Get(ctx context.Context, key string) (*domain.SystemSetting, error)
	Set(ctx context.Context, setting *domain.SystemSetting) error
	Delete(ctx context.Context, key string) error
}
