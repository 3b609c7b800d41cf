package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/core/services"
	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"github.com/lighthouse/backend/internal/transport/http/dto"
)

type TaskHandler struct {
	service ports.TaskService
	logger  *logger.Logger
}

func NewTaskHandler(service ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

// parseQuery types the query string against schema.
func parseQuery(c *fiber.Ctx, schema query.Schema) (query.Params, error) {
	params, err := query.ParseValues(schema, c.Queries())
	if err != nil {
		data := map[string]interface{}{"reason": err.Error()}
		return query.Params{}, services.InvalidRequest(data, err)
	}
	return params, nil
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	params, err := parseQuery(c, services.TaskSchema)
	if err != nil {
		return writeError(c, h.logger, "task_list_failed", err)
	}
	page, err := h.service.ListTasks(c.UserContext(), params)
	if err != nil {
		return writeError(c, h.logger, "task_list_failed", err)
	}
	return c.JSON(pageResponse(page, dto.TasksToResponse))
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	task, err := h.service.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, "task_get_failed", err)
	}
	return c.JSON(dto.Success(dto.TaskToResponse(task)))
}

func (h *TaskHandler) SubmitTask(c *fiber.Ctx) error {
	var req dto.SubmitTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("task_submit_body_parse_failed", "error", err)
		return badBody(c, err)
	}
	if msgs := dto.Validate(req); len(msgs) > 0 {
		return invalidFields(c, msgs)
	}

	h.logger.Infow("task_submit_request", "name", req.Name, "target", req.Target)
	result, err := h.service.SubmitTask(c.UserContext(), ports.SubmitTaskInput{
		Name:    req.Name,
		Target:  req.Target,
		Options: domain.JSONB(req.Options),
	})
	if err != nil {
		if result == nil {
			return writeError(c, h.logger, "task_submit_failed", err)
		}
		h.logger.Warnw("task_submit_partial", "tasks", len(result.Items), "error", err)
		return writeErrorWith(c, h.logger, "task_submit_failed", err, map[string]interface{}{
			"items": dto.OutcomesToResponse(result.Items),
		})
	}
	h.logger.Infow("task_submit_success", "tasks", len(result.Items))
	return c.Status(fiber.StatusCreated).JSON(dto.Success(dto.SubmitResultToResponse(result)))
}

func (h *TaskHandler) StopTask(c *fiber.Ctx) error {
	id := c.Params("id")
	h.logger.Infow("task_stop_request", "task_id", id)
	if err := h.service.StopTask(c.UserContext(), id); err != nil {
		return writeError(c, h.logger, "task_stop_failed", err)
	}
	h.logger.Infow("task_stop_success", "task_id", id)
	return c.JSON(dto.Success(fiber.Map{"task_id": id}))
}

func (h *TaskHandler) DeleteTasks(c *fiber.Ctx) error {
	var req dto.DeleteTasksRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("task_delete_body_parse_failed", "error", err)
		return badBody(c, err)
	}
	if msgs := dto.Validate(req); len(msgs) > 0 {
		return invalidFields(c, msgs)
	}

	h.logger.Infow("task_delete_request", "tasks", len(req.TaskID), "del_task_data", req.DelTaskData)
	deleted, err := h.service.DeleteTasks(c.UserContext(), ports.DeleteTasksInput{
		TaskIDs:       req.TaskID,
		DeleteResults: req.DelTaskData,
	})
	if err != nil {
		return writeError(c, h.logger, "task_delete_failed", err)
	}
	h.logger.Infow("task_delete_success", "tasks", len(deleted))
	return c.JSON(dto.Success(fiber.Map{"task_id": deleted}))
}

func (h *TaskHandler) SyncTask(c *fiber.Ctx) error {
	var req dto.SyncTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("task_sync_body_parse_failed", "error", err)
		return badBody(c, err)
	}
	if msgs := dto.Validate(req); len(msgs) > 0 {
		return invalidFields(c, msgs)
	}

	h.logger.Infow("task_sync_request", "task_id", req.TaskID, "scope_id", req.ScopeID)
	err := h.service.SyncTask(c.UserContext(), ports.SyncTaskInput{TaskID: req.TaskID, ScopeID: req.ScopeID})
	if err != nil {
		return writeError(c, h.logger, "task_sync_failed", err)
	}
	h.logger.Infow("task_sync_success", "task_id", req.TaskID)
	return c.JSON(dto.Success(fiber.Map{"task_id": req.TaskID, "scope_id": req.ScopeID}))
}

func (h *TaskHandler) SyncScopes(c *fiber.Ctx) error {
	target := c.Query("target")
	if target == "" {
		return invalidFields(c, []string{"target is required"})
	}
	page, err := h.service.SyncScopes(c.UserContext(), target)
	if err != nil {
		return writeError(c, h.logger, "task_sync_scope_failed", err)
	}
	return c.JSON(pageResponse(page, dto.ScopesToResponse))
}
