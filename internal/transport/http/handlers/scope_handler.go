package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/services"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"github.com/lighthouse/backend/internal/transport/http/dto"
)

type ScopeHandler struct {
	service ports.ScopeService
	logger  *logger.Logger
}

func NewScopeHandler(service ports.ScopeService, logger *logger.Logger) *ScopeHandler {
	return &ScopeHandler{service: service, logger: logger}
}

func (h *ScopeHandler) ListScopes(c *fiber.Ctx) error {
	params, err := parseQuery(c, services.ScopeSchema)
	if err != nil {
		return writeError(c, h.logger, "scope_list_failed", err)
	}
	page, err := h.service.ListScopes(c.UserContext(), params)
	if err != nil {
		return writeError(c, h.logger, "scope_list_failed", err)
	}
	return c.JSON(pageResponse(page, dto.ScopesToResponse))
}

func (h *ScopeHandler) CreateScope(c *fiber.Ctx) error {
	var req dto.CreateScopeRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("scope_create_body_parse_failed", "error", err)
		return badBody(c, err)
	}
	if msgs := dto.Validate(req); len(msgs) > 0 {
		return invalidFields(c, msgs)
	}

	h.logger.Infow("scope_create_request", "name", req.Name)
	scope, err := h.service.CreateScope(c.UserContext(), ports.CreateScopeInput{Name: req.Name, Scope: req.Scope})
	if err != nil {
		return writeError(c, h.logger, "scope_create_failed", err)
	}
	h.logger.Infow("scope_create_success", "scope_id", scope.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.Success(dto.ScopeToResponse(scope)))
}

func (h *ScopeHandler) DeleteScope(c *fiber.Ctx) error {
	id := c.Params("id")
	h.logger.Infow("scope_delete_request", "scope_id", id)
	if err := h.service.DeleteScope(c.UserContext(), id); err != nil {
		return writeError(c, h.logger, "scope_delete_failed", err)
	}
	h.logger.Infow("scope_delete_success", "scope_id", id)
	return c.JSON(dto.Success(fiber.Map{"scope_id": id}))
}
