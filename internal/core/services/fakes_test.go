package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/domain"
)

var errStore = errors.New("store unavailable")

// fakeTaskRepo keeps tasks in memory and honors translated queries.
type fakeTaskRepo struct {
	mu        sync.Mutex
	tasks     map[string]*domain.Task
	deleted   map[string][]string
	createErr error
	creates   int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*domain.Task{}, deleted: map[string][]string{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.creates++
	task.ID = uuid.Must(uuid.NewV7()).String()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

// put stores a task as-is, for arranging state in tests.
func (r *fakeTaskRepo) put(task domain.Task) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.Must(uuid.NewV7()).String()
	}
	r.tasks[task.ID] = &task
	return task.ID
}

func (r *fakeTaskRepo) get(id string) *domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

func (r *fakeTaskRepo) all() []domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	return r.get(id), nil
}

func (r *fakeTaskRepo) Find(_ context.Context, q query.Query) ([]domain.Task, int64, error) {
	var matched []domain.Task
	for _, t := range r.all() {
		t := t
		if q.Match(func(field string) (interface{}, bool) { return taskField(&t, field) }) {
			matched = append(matched, t)
		}
	}
	total := int64(len(matched))
	start := q.Skip()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func taskField(t *domain.Task, field string) (interface{}, bool) {
	switch field {
	case query.IDField:
		return t.ID, true
	case "name":
		return t.Name, true
	case "target":
		return t.Target, true
	case "type":
		return string(t.Type), true
	case "status":
		return string(t.Status), true
	case "sync_status":
		return string(t.SyncStatus), true
	case "task_tag":
		return t.TaskTag, true
	case "start_time":
		return t.StartTime, true
	case "end_time":
		return t.EndTime, true
	}
	if parent, sub, ok := query.SplitSubField(field); ok && parent == "options" {
		v, found := t.Options[sub]
		return v, found
	}
	return nil, false
}

func (r *fakeTaskRepo) apply(t *domain.Task, patch ports.TaskPatch) {
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.SyncStatus != nil {
		t.SyncStatus = *patch.SyncStatus
	}
	if patch.EndTime != nil {
		end := *patch.EndTime
		t.EndTime = &end
	}
	if patch.JobHandle != nil {
		t.JobHandle = *patch.JobHandle
	}
}

func (r *fakeTaskRepo) Update(_ context.Context, id string, patch ports.TaskPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil
	}
	r.apply(t, patch)
	return nil
}

func (r *fakeTaskRepo) UpdateIf(_ context.Context, id string, guard ports.TaskGuard, patch ports.TaskPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || !guardHolds(t, guard) {
		return ports.ErrConflict
	}
	r.apply(t, patch)
	return nil
}

func guardHolds(t *domain.Task, guard ports.TaskGuard) bool {
	if len(guard.Statuses) > 0 {
		found := false
		for _, s := range guard.Statuses {
			if t.Status == s {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if len(guard.SyncStatuses) > 0 {
		found := false
		for _, s := range guard.SyncStatuses {
			if t.SyncStatus == s {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fakeTaskRepo) DeleteTerminal(_ context.Context, ids []string, collections []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		t, ok := r.tasks[id]
		if !ok || !t.Status.IsTerminal() {
			return ports.ErrConflict
		}
	}
	for _, id := range ids {
		delete(r.tasks, id)
		r.deleted[id] = collections
	}
	return nil
}

type fakeScopeRepo struct {
	scopes map[string]*domain.AssetScope
}

func newFakeScopeRepo(scopes ...domain.AssetScope) *fakeScopeRepo {
	r := &fakeScopeRepo{scopes: map[string]*domain.AssetScope{}}
	for i := range scopes {
		s := scopes[i]
		if s.ID == "" {
			s.ID = uuid.Must(uuid.NewV7()).String()
		}
		r.scopes[s.ID] = &s
	}
	return r
}

func (r *fakeScopeRepo) Create(_ context.Context, scope *domain.AssetScope) error {
	scope.ID = uuid.Must(uuid.NewV7()).String()
	cp := *scope
	r.scopes[scope.ID] = &cp
	return nil
}

func (r *fakeScopeRepo) GetByID(_ context.Context, id string) (*domain.AssetScope, error) {
	s, ok := r.scopes[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeScopeRepo) Find(_ context.Context, q query.Query) ([]domain.AssetScope, int64, error) {
	ids := make([]string, 0, len(r.scopes))
	for id := range r.scopes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []domain.AssetScope
	for _, id := range ids {
		s := r.scopes[id]
		get := func(field string) (interface{}, bool) {
			switch field {
			case "scope_array":
				return []string(s.ScopeArray), true
			case "name":
				return s.Name, true
			case query.IDField:
				return s.ID, true
			}
			return nil, false
		}
		if q.Match(get) {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeScopeRepo) Delete(_ context.Context, id string) error {
	delete(r.scopes, id)
	return nil
}

// mockQueue records dispatches through testify/mock.
type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Submit(ctx context.Context, payload domain.JobPayload) (domain.JobHandle, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(domain.JobHandle), args.Error(1)
}

func (m *mockQueue) Revoke(ctx context.Context, handle domain.JobHandle) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}

func (m *mockQueue) Close() error { return nil }

type staticPolicy []string

func (p staticPolicy) BlackIPs(context.Context) ([]string, error) { return p, nil }

type fakeTimeline struct {
	mu        sync.Mutex
	events    []domain.TimelineEvent
	createErr error
}

func (f *fakeTimeline) Create(_ context.Context, e *domain.TimelineEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeTimeline) GetByResource(_ context.Context, resourceType, resourceID string) ([]domain.TimelineEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TimelineEvent
	for _, e := range f.events {
		if e.ResourceType == resourceType && e.ResourceID == resourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeTimeline) GetAll(_ context.Context, limit int) ([]domain.TimelineEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.events) {
		limit = len(f.events)
	}
	return append([]domain.TimelineEvent(nil), f.events[:limit]...), nil
}

func (f *fakeTimeline) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeSettingRepo struct {
	settings  map[string]domain.SystemSetting
	getErr    error
	deleteErr error
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: map[string]domain.SystemSetting{}}
}

func (r *fakeSettingRepo) Get(_ context.Context, key string) (*domain.SystemSetting, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	s, ok := r.settings[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSettingRepo) Set(_ context.Context, s *domain.SystemSetting) error {
	r.settings[s.Key] = *s
	return nil
}

func (r *fakeSettingRepo) Delete(_ context.Context, key string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.settings, key)
	return nil
}
