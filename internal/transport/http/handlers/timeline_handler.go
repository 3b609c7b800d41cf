package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/services"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"github.com/lighthouse/backend/internal/transport/http/dto"
)

const (
	defaultTimelineLimit = 50
	maxTimelineLimit     = 500
)

type TimelineHandler struct {
	repo   ports.TimelineRepository
	logger *logger.Logger
}

func NewTimelineHandler(repo ports.TimelineRepository, logger *logger.Logger) *TimelineHandler {
	return &TimelineHandler{repo: repo, logger: logger}
}

// GetEvents lists the events of one resource when resource_type and
// resource_id are given, the latest events otherwise.
func (h *TimelineHandler) GetEvents(c *fiber.Ctx) error {
	rtype := c.Query("resource_type")
	rid := c.Query("resource_id")
	if rtype != "" && rid != "" {
		events, err := h.repo.GetByResource(c.UserContext(), rtype, rid)
		if err != nil {
			return writeError(c, h.logger, "timeline_get_failed", err)
		}
		return c.JSON(dto.Success(dto.EventsToResponse(events)))
	}

	limit := defaultTimelineLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return writeError(c, h.logger, "", services.InvalidRequest(map[string]interface{}{"param": "limit", "value": raw}, err))
		}
		limit = min(n, maxTimelineLimit)
	}
	events, err := h.repo.GetAll(c.UserContext(), limit)
	if err != nil {
		return writeError(c, h.logger, "timeline_get_failed", err)
	}
	return c.JSON(dto.Success(dto.EventsToResponse(events)))
}
