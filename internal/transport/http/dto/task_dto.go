package dto

import (
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/domain"
)

type SubmitTaskRequest struct {
	Name    string                 `json:"name" validate:"required,max=255"`
	Target  string                 `json:"target" validate:"required"`
	Options map[string]interface{} `json:"options"`
}

type DeleteTasksRequest struct {
	TaskID      []string `json:"task_id" validate:"required,min=1"`
	DelTaskData bool     `json:"del_task_data"`
}

type SyncTaskRequest struct {
	TaskID  string `json:"task_id" validate:"required"`
	ScopeID string `json:"scope_id" validate:"required"`
}

type TaskResponse struct {
	ID         string                 `json:"_id"`
	Name       string                 `json:"name"`
	Target     string                 `json:"target"`
	Type       string                 `json:"type"`
	TaskTag    string                 `json:"task_tag"`
	Status     string                 `json:"status"`
	SyncStatus string                 `json:"sync_status"`
	StartTime  string                 `json:"start_time"`
	EndTime    string                 `json:"end_time"`
	CreatedAt  string                 `json:"created_at"`
	Options    map[string]interface{} `json:"options"`
	Service    []interface{}          `json:"service"`
	JobHandle  string                 `json:"celery_id"`
}

func TaskToResponse(t *domain.Task) TaskResponse {
	options := map[string]interface{}(t.Options)
	if options == nil {
		options = map[string]interface{}{}
	}
	service := []interface{}(t.Service)
	if service == nil {
		service = []interface{}{}
	}
	return TaskResponse{
		ID:         t.ID,
		Name:       t.Name,
		Target:     t.Target,
		Type:       t.Type.String(),
		TaskTag:    t.TaskTag,
		Status:     t.Status.String(),
		SyncStatus: t.SyncStatus.String(),
		StartTime:  FormatTimePtr(t.StartTime),
		EndTime:    FormatTimePtr(t.EndTime),
		CreatedAt:  FormatTime(t.CreatedAt),
		Options:    options,
		Service:    service,
		JobHandle:  t.JobHandle.String(),
	}
}

func TasksToResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = TaskToResponse(&tasks[i])
	}
	return out
}

type TaskOutcomeResponse struct {
	Target   string `json:"target"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	TaskID   string `json:"task_id"`
	CeleryID string `json:"celery_id"`
}

type SubmitTaskResponse struct {
	Items   []TaskOutcomeResponse  `json:"items"`
	Options map[string]interface{} `json:"options"`
}

func SubmitResultToResponse(r *ports.SubmitTaskResult) SubmitTaskResponse {
	items := OutcomesToResponse(r.Items)
	options := map[string]interface{}(r.Options)
	if options == nil {
		options = map[string]interface{}{}
	}
	return SubmitTaskResponse{Items: items, Options: options}
}

func OutcomesToResponse(outcomes []ports.TaskOutcome) []TaskOutcomeResponse {
	items := make([]TaskOutcomeResponse, len(outcomes))
	for i, o := range outcomes {
		items[i] = TaskOutcomeResponse{
			Target:   o.Target,
			Type:     o.Type.String(),
			Status:   string(o.Status),
			TaskID:   o.TaskID,
			CeleryID: o.JobHandle.String(),
		}
	}
	return items
}
