package db

import (
	"context"
	"fmt"

	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// resultRepository reads the result tables the scan worker writes. All of
// them share the ResultRecord row shape.
type resultRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResultRepository(db *gorm.DB, log *logger.Logger) ports.ResultRepository {
	return &resultRepository{db: db, log: log}
}

func (r *resultRepository) Find(ctx context.Context, collection string, q query.Query) ([]domain.ResultRecord, int64, error) {
	if !domain.IsResultCollection(collection) {
		return nil, 0, fmt.Errorf("unknown result collection %q", collection)
	}
	var records []domain.ResultRecord
	total, err := findPage(r.db.WithContext(ctx).Table(collection), q, &records)
	if err != nil {
		r.log.Errorw("result_repo_find_failed", "collection", collection, "error", err)
		return nil, 0, err
	}
	return records, total, nil
}
