package dto

import "github.com/lighthouse/backend/internal/domain"

type CreateScopeRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Scope string `json:"scope" validate:"required"`
}

type ScopeResponse struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	ScopeType  string   `json:"scope_type"`
	Scope      string   `json:"scope"`
	ScopeArray []string `json:"scope_array"`
	CreatedAt  string   `json:"created_at"`
}

func ScopeToResponse(s *domain.AssetScope) ScopeResponse {
	arr := []string(s.ScopeArray)
	if arr == nil {
		arr = []string{}
	}
	return ScopeResponse{
		ID:         s.ID,
		Name:       s.Name,
		ScopeType:  s.ScopeType,
		Scope:      s.Scope,
		ScopeArray: arr,
		CreatedAt:  FormatTime(s.CreatedAt),
	}
}

func ScopesToResponse(scopes []domain.AssetScope) []ScopeResponse {
	out := make([]ScopeResponse, len(scopes))
	for i := range scopes {
		out[i] = ScopeToResponse(&scopes[i])
	}
	return out
}

type ResultResponse struct {
	ID         string                 `json:"_id"`
	TaskID     string                 `json:"task_id"`
	Data       map[string]interface{} `json:"data"`
	SaveDate   string                 `json:"save_date"`
	UpdateDate string                 `json:"update_date"`
}

func ResultsToResponse(records []domain.ResultRecord) []ResultResponse {
	out := make([]ResultResponse, len(records))
	for i, r := range records {
		data := map[string]interface{}(r.Data)
		if data == nil {
			data = map[string]interface{}{}
		}
		out[i] = ResultResponse{
			ID:         r.ID,
			TaskID:     r.TaskID,
			Data:       data,
			SaveDate:   FormatTime(r.SaveDate),
			UpdateDate: FormatTime(r.UpdateDate),
		}
	}
	return out
}

type BlackIPsRequest struct {
	BlackIPs []string `json:"black_ips"`
}

type BlackIPsResponse struct {
	BlackIPs  []string `json:"black_ips"`
	Effective []string `json:"effective"`
}
