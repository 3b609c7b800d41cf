package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/services"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"github.com/lighthouse/backend/internal/transport/http/dto"
)

const codeInternal = 500

// StatusFor maps a rejection kind onto its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrTargetInvalid),
		errors.Is(err, services.ErrIPInBlackIPs),
		errors.Is(err, services.ErrDomainInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrScopeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrTaskIsRunning),
		errors.Is(err, services.ErrJobHandleNotFound),
		errors.Is(err, services.ErrTaskTypeNotDomain),
		errors.Is(err, services.ErrTaskTargetNotScope),
		errors.Is(err, services.ErrTaskSyncDealing):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrDispatchFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as {code, message, data}. Errors without a
// structured kind are storage failures and never leak their text.
func writeError(c *fiber.Ctx, log *logger.Logger, event string, err error) error {
	return writeErrorWith(c, log, event, err, nil)
}

// writeErrorWith is writeError with extra fields merged into data.
func writeErrorWith(c *fiber.Ctx, log *logger.Logger, event string, err error, extra map[string]interface{}) error {
	if e, ok := services.AsError(err); ok {
		var data interface{}
		if e.Data != nil || extra != nil {
			merged := make(map[string]interface{}, len(e.Data)+len(extra))
			for k, v := range e.Data {
				merged[k] = v
			}
			for k, v := range extra {
				merged[k] = v
			}
			data = merged
		}
		return c.Status(StatusFor(e)).JSON(dto.ErrorResponse{
			Code:    e.Code,
			Message: e.Message,
			Data:    data,
		})
	}
	log.Errorw(event, "error", err, "path", c.Path())
	resp := dto.ErrorResponse{Code: codeInternal, Message: "internal error"}
	if extra != nil {
		resp.Data = extra
	}
	return c.Status(fiber.StatusInternalServerError).JSON(resp)
}

func badBody(c *fiber.Ctx, err error) error {
	return writeError(c, nil, "", services.InvalidRequest(map[string]interface{}{"reason": "invalid request body"}, err))
}

func invalidFields(c *fiber.Ctx, msgs []string) error {
	return writeError(c, nil, "", services.InvalidRequest(map[string]interface{}{"fields": msgs}, nil))
}

func pageResponse[T any, V any](p *ports.Page[T], view func([]T) []V) dto.PageResponse {
	return dto.PageResponse{
		Code:  dto.CodeSuccess,
		Page:  p.Page,
		Size:  p.Size,
		Total: p.Total,
		Items: view(p.Items),
		Query: dto.EchoQuery(p.Query),
	}
}
