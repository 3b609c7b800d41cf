package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
)

type scopeService struct {
	repo   ports.AssetScopeRepository
	logger *logger.Logger
}

func NewScopeService(repo ports.AssetScopeRepository, log *logger.Logger) ports.ScopeService {
	return &scopeService{repo: repo, logger: log}
}

func (s *scopeService) ListScopes(ctx context.Context, params query.Params) (*ports.Page[domain.AssetScope], error) {
	q, err := query.Translate(ScopeSchema, params)
	if err != nil {
		return nil, wrapError(ErrValidation, map[string]interface{}{"reason": err.Error()}, err)
	}
	items, total, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ports.Page[domain.AssetScope]{Page: q.Page, Size: q.Size, Total: total, Items: items, Query: q.Echo()}, nil
}

// CreateScope stores a domain scope from a comma or whitespace separated
// list of root domains.
func (s *scopeService) CreateScope(ctx context.Context, input ports.CreateScopeInput) (*domain.AssetScope, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newError(ErrValidation, map[string]interface{}{"reason": "name is required"})
	}

	var patterns []string
	for _, tok := range SplitTargets(strings.ToLower(input.Scope)) {
		if !IsValidDomain(tok) {
			return nil, newError(ErrDomainInvalid, map[string]interface{}{"target": tok})
		}
		patterns = append(patterns, tok)
	}
	patterns = mergeEntries(patterns)
	if len(patterns) == 0 {
		return nil, newError(ErrValidation, map[string]interface{}{"reason": "scope is required"})
	}

	scope := &domain.AssetScope{
		Name:       name,
		ScopeType:  domain.ScopeTypeDomain,
		Scope:      strings.Join(patterns, ","),
		ScopeArray: domain.StringList(patterns),
	}
	if err := s.repo.Create(ctx, scope); err != nil {
		s.logger.Errorw("scope_create_failed", "name", name, "error", err)
		return nil, err
	}
	s.logger.Infow("scope_create_ok", "scope_id", scope.ID, "patterns", len(patterns))
	return scope, nil
}

func (s *scopeService) DeleteScope(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return newError(ErrScopeNotFound, map[string]interface{}{"scope_id": id})
	}
	scope, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if scope == nil {
		return newError(ErrScopeNotFound, map[string]interface{}{"scope_id": id})
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Errorw("scope_delete_failed", "scope_id", id, "error", err)
		return err
	}
	s.logger.Infow("scope_delete_ok", "scope_id", id)
	return nil
}
