package services

import (
	"context"

	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/domain"
)

type resultService struct {
	repo ports.ResultRepository
}

func NewResultService(repo ports.ResultRepository) ports.ResultService {
	return &resultService{repo: repo}
}

func (s *resultService) ListResults(ctx context.Context, collection string, params query.Params) (*ports.Page[domain.ResultRecord], error) {
	if !domain.IsResultCollection(collection) {
		return nil, newError(ErrValidation, map[string]interface{}{"collection": collection})
	}
	q, err := query.Translate(ResultSchema, params)
	if err != nil {
		return nil, wrapError(ErrValidation, map[string]interface{}{"reason": err.Error()}, err)
	}
	items, total, err := s.repo.Find(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	return &ports.Page[domain.ResultRecord]{Page: q.Page, Size: q.Size, Total: total, Items: items, Query: q.Echo()}, nil
}
