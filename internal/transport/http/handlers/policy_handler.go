package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"github.com/lighthouse/backend/internal/transport/http/dto"
)

type PolicyHandler struct {
	service ports.PolicyService
	logger  *logger.Logger
}

func NewPolicyHandler(service ports.PolicyService, logger *logger.Logger) *PolicyHandler {
	return &PolicyHandler{service: service, logger: logger}
}

func (h *PolicyHandler) GetBlackIPs(c *fiber.Ctx) error {
	h.logger.Infow("policy_get_request")
	ctx := c.UserContext()
	stored, err := h.service.StoredBlackIPs(ctx)
	if err != nil {
		return writeError(c, h.logger, "policy_get_failed", err)
	}
	effective, err := h.service.BlackIPs(ctx)
	if err != nil {
		return writeError(c, h.logger, "policy_get_failed", err)
	}
	return c.JSON(dto.Success(dto.BlackIPsResponse{BlackIPs: nonNil(stored), Effective: nonNil(effective)}))
}

func (h *PolicyHandler) UpdateBlackIPs(c *fiber.Ctx) error {
	var req dto.BlackIPsRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("policy_update_body_parse_failed", "error", err)
		return badBody(c, err)
	}

	h.logger.Infow("policy_update_request", "entries", len(req.BlackIPs))
	if err := h.service.UpdateBlackIPs(c.UserContext(), req.BlackIPs); err != nil {
		return writeError(c, h.logger, "policy_update_failed", err)
	}
	h.logger.Infow("policy_update_success", "entries", len(req.BlackIPs))
	return h.GetBlackIPs(c)
}

// ClearBlackIPs drops the stored entries and answers with what remains in force.
func (h *PolicyHandler) ClearBlackIPs(c *fiber.Ctx) error {
	h.logger.Infow("policy_clear_request")
	if err := h.service.ClearBlackIPs(c.UserContext()); err != nil {
		return writeError(c, h.logger, "policy_clear_failed", err)
	}
	h.logger.Infow("policy_clear_success")
	return h.GetBlackIPs(c)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
