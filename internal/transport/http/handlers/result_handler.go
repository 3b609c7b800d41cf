package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/services"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"github.com/lighthouse/backend/internal/transport/http/dto"
)

type ResultHandler struct {
	service ports.ResultService
	logger  *logger.Logger
}

func NewResultHandler(service ports.ResultService, logger *logger.Logger) *ResultHandler {
	return &ResultHandler{service: service, logger: logger}
}

func (h *ResultHandler) ListResults(c *fiber.Ctx) error {
	collection := c.Params("collection")
	params, err := parseQuery(c, services.ResultSchema)
	if err != nil {
		return writeError(c, h.logger, "result_list_failed", err)
	}
	page, err := h.service.ListResults(c.UserContext(), collection, params)
	if err != nil {
		return writeError(c, h.logger, "result_list_failed", err)
	}
	return c.JSON(pageResponse(page, dto.ResultsToResponse))
}
