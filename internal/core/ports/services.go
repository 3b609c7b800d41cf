package ports

import (
	"context"

	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/domain"
)

// Page is one window of a translated listing.
type Page[T any] struct {
	Page  int
	Size  int
	Total int64
	Items []T
	Query map[string]interface{}
}

type TaskService interface {
	ListTasks(ctx context.Context, params query.Params) (*Page[domain.Task], error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	SubmitTask(ctx context.Context, input SubmitTaskInput) (*SubmitTaskResult, error)
	StopTask(ctx context.Context, id string) error
	DeleteTasks(ctx context.Context, input DeleteTasksInput) ([]string, error)
	SyncTask(ctx context.Context, input SyncTaskInput) error
	SyncScopes(ctx context.Context, target string) (*Page[domain.AssetScope], error)
}

type SubmitTaskInput struct {
	Name    string
	Target  string
	Options domain.JSONB
}

// OutcomeStatus says how far one planned task got during a submission.
type OutcomeStatus string

const (
	OutcomeAdmitted       OutcomeStatus = "admitted"
	OutcomeDispatchFailed OutcomeStatus = "dispatch_failed"
	OutcomeNotAttempted   OutcomeStatus = "not_attempted"
)

// TaskOutcome reports one planned task. TaskID is empty for tasks that were
// never stored; JobHandle is set only for admitted tasks.
type TaskOutcome struct {
	Target    string
	Type      domain.TaskType
	Status    OutcomeStatus
	TaskID    string
	JobHandle domain.JobHandle
}

// SubmitTaskResult carries one outcome per planned task, in plan order. It
// is returned alongside the error when a submission only partly succeeds.
type SubmitTaskResult struct {
	Items   []TaskOutcome
	Options domain.JSONB
}

type DeleteTasksInput struct {
	TaskIDs       []string
	DeleteResults bool
}

type SyncTaskInput struct {
	TaskID  string
	ScopeID string
}

type ScopeService interface {
	ListScopes(ctx context.Context, params query.Params) (*Page[domain.AssetScope], error)
	CreateScope(ctx context.Context, input CreateScopeInput) (*domain.AssetScope, error)
	DeleteScope(ctx context.Context, id string) error
}

type CreateScopeInput struct {
	Name  string
	Scope string
}

type ResultService interface {
	ListResults(ctx context.Context, collection string, params query.Params) (*Page[domain.ResultRecord], error)
}

// BlacklistSource yields the excluded IPs, CIDRs and ranges currently in force.
type BlacklistSource interface {
	BlackIPs(ctx context.Context) ([]string, error)
}

type PolicyService interface {
	BlacklistSource
	StoredBlackIPs(ctx context.Context) ([]string, error)
	UpdateBlackIPs(ctx context.Context, entries []string) error
	ClearBlackIPs(ctx context.Context) error
}

// WorkQueue hands opaque jobs to the scan workers. Revoke only requests a
// forced termination; it does not wait for the worker to halt.
type WorkQueue interface {
	Submit(ctx context.Context, payload domain.JobPayload) (domain.JobHandle, error)
	Revoke(ctx context.Context, handle domain.JobHandle) error
	Close() error
}

type TaskMetrics interface {
	IncTasksSubmitted(taskType string)
	IncRequestsRejected(code string)
	IncTasksStopped()
	IncTasksDeleted(n int)
	IncSyncsRequested()
}

type QueueMetrics interface {
	IncMessagesPublished(topic string)
	IncPublishErrors(topic string)
}
