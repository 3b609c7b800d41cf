package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type assetScopeRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetScopeRepository(db *gorm.DB, log *logger.Logger) ports.AssetScopeRepository {
	return &assetScopeRepository{db: db, log: log}
}

func (r *assetScopeRepository) Create(ctx context.Context, scope *domain.AssetScope) error {
	scope.ID = uuid.Must(uuid.NewV7()).String()
	if err := r.db.WithContext(ctx).Create(scope).Error; err != nil {
		r.log.Errorw("scope_repo_create_failed", "name", scope.Name, "error", err)
		return err
	}
	r.log.Infow("scope_repo_create_ok", "id", scope.ID, "name", scope.Name)
	return nil
}

func (r *assetScopeRepository) GetByID(ctx context.Context, id string) (*domain.AssetScope, error) {
	var scope domain.AssetScope
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&scope).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorw("scope_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &scope, nil
}

func (r *assetScopeRepository) Find(ctx context.Context, q query.Query) ([]domain.AssetScope, int64, error) {
	var scopes []domain.AssetScope
	total, err := findPage(r.db.WithContext(ctx).Model(&domain.AssetScope{}), q, &scopes)
	if err != nil {
		r.log.Errorw("scope_repo_find_failed", "error", err)
		return nil, 0, err
	}
	return scopes, total, nil
}

func (r *assetScopeRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.AssetScope{}).Error; err != nil {
		r.log.Errorw("scope_repo_delete_failed", "id", id, "error", err)
		return err
	}
	r.log.Infow("scope_repo_delete_ok", "id", id)
	return nil
}
