package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/domain"
)

type mockTaskService struct{ mock.Mock }

func (m *mockTaskService) ListTasks(ctx context.Context, params query.Params) (*ports.Page[domain.Task], error) {
	args := m.Called(ctx, params)
	page, _ := args.Get(0).(*ports.Page[domain.Task])
	return page, args.Error(1)
}

func (m *mockTaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) SubmitTask(ctx context.Context, input ports.SubmitTaskInput) (*ports.SubmitTaskResult, error) {
	args := m.Called(ctx, input)
	res, _ := args.Get(0).(*ports.SubmitTaskResult)
	return res, args.Error(1)
}

func (m *mockTaskService) StopTask(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTaskService) DeleteTasks(ctx context.Context, input ports.DeleteTasksInput) ([]string, error) {
	args := m.Called(ctx, input)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockTaskService) SyncTask(ctx context.Context, input ports.SyncTaskInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *mockTaskService) SyncScopes(ctx context.Context, target string) (*ports.Page[domain.AssetScope], error) {
	args := m.Called(ctx, target)
	page, _ := args.Get(0).(*ports.Page[domain.AssetScope])
	return page, args.Error(1)
}

type mockPolicyService struct{ mock.Mock }

func (m *mockPolicyService) BlackIPs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ips, _ := args.Get(0).([]string)
	return ips, args.Error(1)
}

func (m *mockPolicyService) StoredBlackIPs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ips, _ := args.Get(0).([]string)
	return ips, args.Error(1)
}

func (m *mockPolicyService) UpdateBlackIPs(ctx context.Context, entries []string) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *mockPolicyService) ClearBlackIPs(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockScopeService struct{ mock.Mock }

func (m *mockScopeService) ListScopes(ctx context.Context, params query.Params) (*ports.Page[domain.AssetScope], error) {
	args := m.Called(ctx, params)
	page, _ := args.Get(0).(*ports.Page[domain.AssetScope])
	return page, args.Error(1)
}

func (m *mockScopeService) CreateScope(ctx context.Context, input ports.CreateScopeInput) (*domain.AssetScope, error) {
	args := m.Called(ctx, input)
	scope, _ := args.Get(0).(*domain.AssetScope)
	return scope, args.Error(1)
}

func (m *mockScopeService) DeleteScope(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockResultService struct{ mock.Mock }

func (m *mockResultService) ListResults(ctx context.Context, collection string, params query.Params) (*ports.Page[domain.ResultRecord], error) {
	args := m.Called(ctx, collection, params)
	page, _ := args.Get(0).(*ports.Page[domain.ResultRecord])
	return page, args.Error(1)
}
