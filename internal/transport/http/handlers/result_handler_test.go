package handlers

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/core/services"
	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
)

func newResultApp(svc *mockResultService) *fiber.App {
	h := NewResultHandler(svc, logger.NewNop())
	app := fiber.New()
	app.Get("/api/result/:collection/", h.ListResults)
	return app
}

func TestResultHandler_ListResults(t *testing.T) {
	t.Parallel()
	saved := time.Date(2024, 3, 1, 9, 15, 30, 0, time.UTC)
	updated := time.Date(2024, 3, 2, 18, 0, 5, 0, time.UTC)
	after := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	svc := &mockResultService{}
	svc.On("ListResults", mock.Anything, "site", mock.MatchedBy(func(p query.Params) bool {
		return p.Filters["task_id"] == "0190a3a0-0000-7000-8000-000000000001" &&
			p.Filters["save_date__dgt"] != nil
	})).Return(&ports.Page[domain.ResultRecord]{
		Page:  1,
		Size:  10,
		Total: 1,
		Items: []domain.ResultRecord{{
			ID:         "r1",
			TaskID:     "0190a3a0-0000-7000-8000-000000000001",
			Data:       domain.JSONB{"title": "Login"},
			SaveDate:   saved,
			UpdateDate: updated,
		}},
		Query: map[string]interface{}{"save_date": map[string]interface{}{"$gt": after}},
	}, nil)

	status, body := doJSON(t, newResultApp(svc), "GET",
		"/api/result/site/?task_id=0190a3a0-0000-7000-8000-000000000001&save_date__dgt=2024-03-01%2000:00:00", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "r1", item["_id"])
	assert.Equal(t, "2024-03-01 09:15:30", item["save_date"])
	assert.Equal(t, "2024-03-02 18:00:05", item["update_date"])
	assert.Equal(t, map[string]interface{}{"title": "Login"}, item["data"])
	assert.Equal(t, map[string]interface{}{"$gt": "2024-03-01 00:00:00"}, body["query"].(map[string]interface{})["save_date"])
	svc.AssertExpectations(t)
}

func TestResultHandler_UnknownCollection(t *testing.T) {
	t.Parallel()
	svc := &mockResultService{}
	svc.On("ListResults", mock.Anything, "users", mock.Anything).
		Return(nil, rejection(services.ErrValidation, 1000, map[string]interface{}{"collection": "users"}))

	status, body := doJSON(t, newResultApp(svc), "GET", "/api/result/users/", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.EqualValues(t, 1000, body["code"])
	assert.Equal(t, "users", body["data"].(map[string]interface{})["collection"])
}
