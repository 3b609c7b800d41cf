package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
)

const syncScopeLimit = 100

type taskService struct {
	tasks   ports.TaskRepository
	scopes  ports.AssetScopeRepository
	queue   ports.WorkQueue
	policy  ports.BlacklistSource
	metrics ports.TaskMetrics
	logger  *logger.Logger
	now     func() time.Time
	events  eventRecorder
	*keyLocker
}

type TaskServiceConfig struct {
	TaskRepo     ports.TaskRepository
	ScopeRepo    ports.AssetScopeRepository
	Queue        ports.WorkQueue
	Policy       ports.BlacklistSource
	TimelineRepo ports.TimelineRepository
	Metrics      ports.TaskMetrics
	Logger       *logger.Logger
	EnableLocks  bool
	Clock        func() time.Time
}

func NewTaskService(cfg TaskServiceConfig) ports.TaskService {
	s := &taskService{
		tasks:     cfg.TaskRepo,
		scopes:    cfg.ScopeRepo,
		queue:     cfg.Queue,
		policy:    cfg.Policy,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       cfg.Clock,
		events:    eventRecorder{timelineRepo: cfg.TimelineRepo, logger: cfg.Logger},
		keyLocker: newKeyLocker(cfg.EnableLocks),
	}
	if s.metrics == nil {
		s.metrics = nopTaskMetrics{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ==================== Listing ====================

func (s *taskService) ListTasks(ctx context.Context, params query.Params) (*ports.Page[domain.Task], error) {
	q, err := query.Translate(TaskSchema, params)
	if err != nil {
		return nil, s.invalidQuery(err)
	}
	items, total, err := s.tasks.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ports.Page[domain.Task]{
		Page:  q.Page,
		Size:  q.Size,
		Total: total,
		Items: items,
		Query: q.Echo(),
	}, nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, newError(ErrTaskNotFound, map[string]interface{}{"task_id": id})
	}
	return task, nil
}

// ==================== Submission ====================

// plannedTask is one task the submission will create.
type plannedTask struct {
	target string
	typ    domain.TaskType
}

func (s *taskService) SubmitTask(ctx context.Context, input ports.SubmitTaskInput) (*ports.SubmitTaskResult, error) {
	name := strings.TrimSpace(input.Name)
	target := strings.ToLower(strings.TrimSpace(input.Target))
	if name == "" || target == "" {
		return nil, s.reject(newError(ErrValidation, map[string]interface{}{
			"reason": "name and target are required",
		}))
	}
	if err := s.checkOptions(input.Options); err != nil {
		return nil, err
	}

	plan, err := s.planSubmission(ctx, target)
	if err != nil {
		if e, ok := AsError(err); ok {
			return nil, s.reject(e)
		}
		return nil, err
	}

	// Every planned task gets an outcome. A dispatch failure only affects its
	// own task; a store failure stops the submission.
	result := &ports.SubmitTaskResult{Options: input.Options, Items: make([]ports.TaskOutcome, 0, len(plan))}
	var (
		failedIDs   []string
		dispatchErr error
		halt        error
	)
	for _, p := range plan {
		if halt != nil {
			result.Items = append(result.Items, ports.TaskOutcome{Target: p.target, Type: p.typ, Status: ports.OutcomeNotAttempted})
			continue
		}
		outcome, err := s.submitOne(ctx, name, p, input.Options)
		result.Items = append(result.Items, outcome)
		switch {
		case err == nil:
		case outcome.Status == ports.OutcomeDispatchFailed:
			failedIDs = append(failedIDs, outcome.TaskID)
			if dispatchErr == nil {
				dispatchErr = err
			}
		default:
			halt = err
		}
	}

	if halt != nil {
		s.logger.Errorw("task_submit_halted", "name", name, "tasks", len(result.Items), "error", halt, "request_id", RequestID(ctx))
		return result, halt
	}
	if len(failedIDs) > 0 {
		s.logger.Warnw("task_submit_partial", "name", name, "failed_task_ids", failedIDs, "request_id", RequestID(ctx))
		return result, wrapError(ErrDispatchFailed, map[string]interface{}{"task_id": failedIDs}, dispatchErr)
	}
	s.logger.Infow("task_submit_ok", "name", name, "tasks", len(result.Items), "request_id", RequestID(ctx))
	return result, nil
}

// checkOptions accepts only known scan features carrying their declared type.
func (s *taskService) checkOptions(options domain.JSONB) error {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if reason := domain.CheckTaskOption(k, options[k]); reason != "" {
			return s.reject(newError(ErrValidation, map[string]interface{}{"option": k, "reason": reason}))
		}
	}
	return nil
}

// planSubmission validates every token before anything is written. One
// invalid or blacklisted token rejects the whole submission.
func (s *taskService) planSubmission(ctx context.Context, target string) ([]plannedTask, error) {
	units := ClassifyTargets(target)

	var ipTokens []string
	for _, u := range units {
		switch u.Kind {
		case domain.TargetKindInvalid:
			return nil, newError(ErrTargetInvalid, map[string]interface{}{"target": u.Value})
		case domain.TargetKindIP:
			ipTokens = append(ipTokens, u.Value)
		case domain.TargetKindDomain:
		}
	}

	if len(ipTokens) > 0 {
		guard, err := s.blacklistGuard(ctx)
		if err != nil {
			return nil, err
		}
		for _, ip := range ipTokens {
			if guard.IsBlacklisted(ip) {
				return nil, newError(ErrIPInBlackIPs, map[string]interface{}{"ip": ip})
			}
		}
	}

	seen := make(map[string]bool, len(units))
	plan := make([]plannedTask, 0, len(units))
	ips := make([]string, 0, len(ipTokens))
	for _, u := range units {
		if seen[u.Value] {
			continue
		}
		seen[u.Value] = true
		switch u.Kind {
		case domain.TargetKindDomain:
			plan = append(plan, plannedTask{target: u.Value, typ: domain.TaskTypeDomain})
		case domain.TargetKindIP:
			ips = append(ips, u.Value)
		case domain.TargetKindInvalid:
		}
	}
	if len(ips) > 0 {
		plan = append(plan, plannedTask{target: strings.Join(ips, " "), typ: domain.TaskTypeIP})
	}
	return plan, nil
}

func (s *taskService) blacklistGuard(ctx context.Context) (*BlacklistGuard, error) {
	if s.policy == nil {
		guard, _ := NewBlacklistGuard(nil)
		return guard, nil
	}
	entries, err := s.policy.BlackIPs(ctx)
	if err != nil {
		s.logger.Errorw("task_policy_load_failed", "error", err)
		return nil, err
	}
	guard, skipped := NewBlacklistGuard(entries)
	if len(skipped) > 0 {
		s.logger.Warnw("task_policy_entries_skipped", "entries", skipped)
	}
	return guard, nil
}

// submitOne persists, dispatches, then records the job handle, in that order.
// The outcome is meaningful even when err is set.
func (s *taskService) submitOne(ctx context.Context, name string, p plannedTask, options domain.JSONB) (ports.TaskOutcome, error) {
	outcome := ports.TaskOutcome{Target: p.target, Type: p.typ, Status: ports.OutcomeNotAttempted}
	action, ok := domain.ActionForTaskType(p.typ)
	if !ok {
		return outcome, fmt.Errorf("no queue action for task type %q", p.typ)
	}

	task := &domain.Task{
		Name:       name,
		Target:     p.target,
		Type:       p.typ,
		TaskTag:    domain.TaskTagTask,
		Status:     domain.TaskStatusWaiting,
		SyncStatus: domain.SyncStatusDefault,
		Options:    copyOptions(options),
		Service:    domain.JSONList{},
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Errorw("task_create_failed", "target", p.target, "error", err)
		return outcome, err
	}
	outcome.TaskID = task.ID

	handle, err := s.queue.Submit(ctx, domain.JobPayload{Action: action, Data: task})
	if err != nil {
		s.logger.Errorw("task_dispatch_failed", "task_id", task.ID, "action", action, "error", err)
		s.markDispatchFailed(ctx, task)
		outcome.Status = ports.OutcomeDispatchFailed
		return outcome, err
	}
	outcome.Status = ports.OutcomeAdmitted
	outcome.JobHandle = handle

	s.metrics.IncTasksSubmitted(p.typ.String())
	s.events.record(ctx, domain.ResourceTypeTask, task.ID, domain.EventTypeTaskSubmitted, domain.EventStatusSuccess,
		"task submitted", map[string]interface{}{"target": task.Target, "type": string(task.Type), "job_handle": string(handle)})

	if err := s.tasks.Update(ctx, task.ID, ports.TaskPatch{JobHandle: &handle}); err != nil {
		s.logger.Errorw("task_job_handle_update_failed", "task_id", task.ID, "job_handle", handle, "error", err)
		return outcome, err
	}
	return outcome, nil
}

// markDispatchFailed closes a task that never reached the queue so it can
// be deleted instead of waiting forever.
func (s *taskService) markDispatchFailed(ctx context.Context, task *domain.Task) {
	status := domain.TaskStatusError
	end := s.now()
	err := s.tasks.UpdateIf(ctx, task.ID,
		ports.TaskGuard{Statuses: []domain.TaskStatus{domain.TaskStatusWaiting}},
		ports.TaskPatch{Status: &status, EndTime: &end})
	if err != nil {
		s.logger.Errorw("task_mark_dispatch_failed_failed", "task_id", task.ID, "error", err)
	}
	s.events.record(ctx, domain.ResourceTypeTask, task.ID, domain.EventTypeTaskDispatchError, domain.EventStatusFailed,
		"task could not be dispatched", map[string]interface{}{"target": task.Target})
}

func copyOptions(options domain.JSONB) domain.JSONB {
	out := make(domain.JSONB, len(options))
	for k, v := range options {
		out[k] = v
	}
	return out
}

// ==================== Stop ====================

func (s *taskService) StopTask(ctx context.Context, id string) error {
	if !isID(id) {
		return s.reject(newError(ErrTaskNotFound, map[string]interface{}{"task_id": id}))
	}
	unlock := s.lockKeys("task:" + id)
	defer unlock()

	task, err := s.getTask(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return s.reject(newError(ErrTaskNotFound, map[string]interface{}{"task_id": id}))
	}
	if err := task.Status.ValidateTransition(domain.TaskStatusStop); err != nil {
		return s.reject(newError(ErrTaskIsRunning, map[string]interface{}{
			"task_id": id,
			"status":  task.Status.String(),
		}))
	}
	if !task.HasJobHandle() {
		return s.reject(newError(ErrJobHandleNotFound, map[string]interface{}{"task_id": id}))
	}

	if err := s.queue.Revoke(ctx, task.JobHandle); err != nil {
		s.logger.Errorw("task_revoke_failed", "task_id", id, "job_handle", task.JobHandle, "error", err)
		return wrapError(ErrDispatchFailed, map[string]interface{}{"task_id": id}, err)
	}

	status := domain.TaskStatusStop
	end := s.now()
	err = s.tasks.UpdateIf(ctx, id,
		ports.TaskGuard{Statuses: []domain.TaskStatus{domain.TaskStatusWaiting, domain.TaskStatusRunning}},
		ports.TaskPatch{Status: &status, EndTime: &end})
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return s.reject(newError(ErrTaskIsRunning, map[string]interface{}{"task_id": id}))
		}
		s.logger.Errorw("task_stop_update_failed", "task_id", id, "error", err)
		return err
	}

	s.metrics.IncTasksStopped()
	s.events.record(ctx, domain.ResourceTypeTask, id, domain.EventTypeTaskStopped, domain.EventStatusSuccess,
		"task stopped", map[string]interface{}{"job_handle": string(task.JobHandle)})
	s.logger.Infow("task_stop_ok", "task_id", id, "job_handle", task.JobHandle)
	return nil
}

// ==================== Delete ====================

func (s *taskService) DeleteTasks(ctx context.Context, input ports.DeleteTasksInput) ([]string, error) {
	ids := dedupe(input.TaskIDs)
	if len(ids) == 0 {
		return nil, s.reject(newError(ErrValidation, map[string]interface{}{"reason": "task_id is required"}))
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		if !isID(id) {
			return nil, s.reject(newError(ErrTaskNotFound, map[string]interface{}{"task_id": id}))
		}
		keys[i] = "task:" + id
	}
	unlock := s.lockKeys(keys...)
	defer unlock()

	for _, id := range ids {
		task, err := s.getTask(ctx, id)
		if err != nil {
			return nil, err
		}
		if task == nil {
			return nil, s.reject(newError(ErrTaskNotFound, map[string]interface{}{"task_id": id}))
		}
		if !task.Status.IsTerminal() {
			return nil, s.reject(newError(ErrTaskIsRunning, map[string]interface{}{
				"task_id": id,
				"status":  task.Status.String(),
			}))
		}
	}

	var collections []string
	if input.DeleteResults {
		collections = domain.ResultCollections
	}
	if err := s.tasks.DeleteTerminal(ctx, ids, collections); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, s.reject(newError(ErrTaskIsRunning, map[string]interface{}{"task_id": ids}))
		}
		s.logger.Errorw("task_delete_failed", "task_ids", ids, "error", err)
		return nil, err
	}

	s.metrics.IncTasksDeleted(len(ids))
	for _, id := range ids {
		s.events.record(ctx, domain.ResourceTypeTask, id, domain.EventTypeTaskDeleted, domain.EventStatusSuccess,
			"task deleted", map[string]interface{}{"delete_results": input.DeleteResults})
	}
	s.logger.Infow("task_delete_ok", "task_ids", ids, "delete_results", input.DeleteResults)
	return ids, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ==================== Sync ====================

func (s *taskService) SyncTask(ctx context.Context, input ports.SyncTaskInput) error {
	if !isID(input.TaskID) {
		return s.reject(newError(ErrTaskNotFound, map[string]interface{}{"task_id": input.TaskID}))
	}
	unlock := s.lockKeys("task:" + input.TaskID)
	defer unlock()

	task, err := s.getTask(ctx, input.TaskID)
	if err != nil {
		return err
	}
	if task == nil {
		return s.reject(newError(ErrTaskNotFound, map[string]interface{}{"task_id": input.TaskID}))
	}

	scope, err := s.getScope(ctx, input.ScopeID)
	if err != nil {
		return err
	}
	if scope == nil {
		return s.reject(newError(ErrScopeNotFound, map[string]interface{}{"scope_id": input.ScopeID}))
	}

	if task.Type != domain.TaskTypeDomain {
		return s.reject(newError(ErrTaskTypeNotDomain, map[string]interface{}{
			"task_id": task.ID,
			"type":    task.Type.String(),
		}))
	}
	if !IsInScopes(task.Target, scope.ScopeArray) {
		return s.reject(newError(ErrTaskTargetNotScope, map[string]interface{}{
			"target":      task.Target,
			"scope_id":    scope.ID,
			"scope_array": []string(scope.ScopeArray),
		}))
	}
	if !task.Status.IsTerminal() {
		return s.reject(newError(ErrTaskIsRunning, map[string]interface{}{
			"task_id": task.ID,
			"status":  task.Status.String(),
		}))
	}
	if !task.SyncStatus.CanStartSync() {
		return s.reject(newError(ErrTaskSyncDealing, map[string]interface{}{
			"task_id":     task.ID,
			"sync_status": task.SyncStatus.String(),
		}))
	}

	waiting := domain.SyncStatusWaiting
	err = s.tasks.UpdateIf(ctx, task.ID,
		ports.TaskGuard{Statuses: domain.TerminalTaskStatuses, SyncStatuses: domain.SyncableStatuses},
		ports.TaskPatch{SyncStatus: &waiting})
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return s.reject(newError(ErrTaskSyncDealing, map[string]interface{}{"task_id": task.ID}))
		}
		s.logger.Errorw("task_sync_update_failed", "task_id", task.ID, "error", err)
		return err
	}

	handle, err := s.queue.Submit(ctx, domain.JobPayload{
		Action: domain.QueueActionDomainSyncTask,
		Data:   domain.SyncJobData{TaskID: task.ID, ScopeID: scope.ID},
	})
	if err != nil {
		s.logger.Errorw("task_sync_dispatch_failed", "task_id", task.ID, "scope_id", scope.ID, "error", err)
		failed := domain.SyncStatusError
		if uerr := s.tasks.Update(ctx, task.ID, ports.TaskPatch{SyncStatus: &failed}); uerr != nil {
			s.logger.Errorw("task_sync_status_revert_failed", "task_id", task.ID, "error", uerr)
		}
		return wrapError(ErrDispatchFailed, map[string]interface{}{
			"task_id":  task.ID,
			"scope_id": scope.ID,
		}, err)
	}

	s.metrics.IncSyncsRequested()
	s.events.record(ctx, domain.ResourceTypeTask, task.ID, domain.EventTypeTaskSyncRequested, domain.EventStatusPending,
		"task sync requested", map[string]interface{}{"scope_id": scope.ID, "job_handle": string(handle)})
	s.logger.Infow("task_sync_ok", "task_id", task.ID, "scope_id", scope.ID, "job_handle", handle)
	return nil
}

// SyncScopes lists the asset scopes a domain target may be synced into.
func (s *taskService) SyncScopes(ctx context.Context, target string) (*ports.Page[domain.AssetScope], error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if !IsValidDomain(target) {
		return nil, s.reject(newError(ErrDomainInvalid, map[string]interface{}{"target": target}))
	}
	fld, err := FirstLevelDomain(target)
	if err != nil {
		return nil, s.reject(newError(ErrDomainInvalid, map[string]interface{}{"target": target}))
	}

	q, err := query.Translate(ScopeSchema, query.Params{
		Size:    syncScopeLimit,
		Order:   query.IDField,
		Filters: map[string]interface{}{"scope_array": fld},
	})
	if err != nil {
		return nil, s.invalidQuery(err)
	}
	candidates, _, err := s.scopes.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	items := []domain.AssetScope{}
	for _, scope := range candidates {
		if IsInScopes(target, scope.ScopeArray) {
			items = append(items, scope)
		}
	}
	return &ports.Page[domain.AssetScope]{
		Page:  q.Page,
		Size:  q.Size,
		Total: int64(len(items)),
		Items: items,
		Query: q.Echo(),
	}, nil
}

// ==================== Helpers ====================

func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// getTask returns (nil, nil) for ids that cannot exist.
func (s *taskService) getTask(ctx context.Context, id string) (*domain.Task, error) {
	if !isID(id) {
		return nil, nil
	}
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		s.logger.Errorw("task_get_failed", "task_id", id, "error", err)
		return nil, err
	}
	return task, nil
}

func (s *taskService) getScope(ctx context.Context, id string) (*domain.AssetScope, error) {
	if !isID(id) {
		return nil, nil
	}
	scope, err := s.scopes.GetByID(ctx, id)
	if err != nil {
		s.logger.Errorw("scope_get_failed", "scope_id", id, "error", err)
		return nil, err
	}
	return scope, nil
}

func (s *taskService) invalidQuery(err error) error {
	data := map[string]interface{}{"reason": err.Error()}
	var pe *query.ParamError
	if errors.As(err, &pe) {
		data = map[string]interface{}{"param": pe.Param, "reason": pe.Reason}
	}
	return s.reject(wrapError(ErrValidation, data, err))
}

// reject logs and counts a refused request.
func (s *taskService) reject(err *Error) error {
	s.metrics.IncRequestsRejected(err.Name)
	s.logger.Warnw("task_request_rejected", "code", err.Code, "kind", err.Name, "data", err.Data)
	return err
}
