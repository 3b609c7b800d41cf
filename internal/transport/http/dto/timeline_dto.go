package dto

import "github.com/lighthouse/backend/internal/domain"

type EventResponse struct {
	ID           uint                   `json:"id"`
	Type         string                 `json:"type"`
	Status       string                 `json:"status"`
	Message      string                 `json:"message"`
	Meta         map[string]interface{} `json:"meta"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id,omitempty"`
	CreatedAt    string                 `json:"created_at"`
}

func EventsToResponse(events []domain.TimelineEvent) []EventResponse {
	out := make([]EventResponse, len(events))
	for i, e := range events {
		meta := map[string]interface{}(e.Meta)
		if meta == nil {
			meta = map[string]interface{}{}
		}
		out[i] = EventResponse{
			ID:           e.ID,
			Type:         e.Type,
			Status:       string(e.Status),
			Message:      e.Message,
			Meta:         meta,
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			CreatedAt:    FormatTime(e.CreatedAt),
		}
	}
	return out
}
