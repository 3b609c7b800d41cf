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
	"gorm.io/gorm/clause"
)

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(db *gorm.DB, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{db: db, log: log}
}

// Create assigns a time-ordered id so the default "-_id" sort lists the
// newest tasks first.
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	task.ID = uuid.Must(uuid.NewV7()).String()
	if task.Service == nil {
		task.Service = domain.JSONList{}
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.log.Errorw("task_repo_create_failed", "target", task.Target, "error", err)
		return err
	}
	r.log.Infow("task_repo_create_ok", "id", task.ID, "type", task.Type)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorw("task_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Find(ctx context.Context, q query.Query) ([]domain.Task, int64, error) {
	var tasks []domain.Task
	total, err := findPage(r.db.WithContext(ctx).Model(&domain.Task{}), q, &tasks)
	if err != nil {
		r.log.Errorw("task_repo_find_failed", "error", err)
		return nil, 0, err
	}
	return tasks, total, nil
}

func patchColumns(patch ports.TaskPatch) map[string]interface{} {
	cols := map[string]interface{}{}
	if patch.Status != nil {
		cols["status"] = *patch.Status
	}
	if patch.SyncStatus != nil {
		cols["sync_status"] = *patch.SyncStatus
	}
	if patch.EndTime != nil {
		cols["end_time"] = *patch.EndTime
	}
	if patch.JobHandle != nil {
		cols["job_handle"] = *patch.JobHandle
	}
	return cols
}

func (r *taskRepository) Update(ctx context.Context, id string, patch ports.TaskPatch) error {
	cols := patchColumns(patch)
	if len(cols) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		r.log.Errorw("task_repo_update_failed", "id", id, "error", err)
		return err
	}
	r.log.Infow("task_repo_update_ok", "id", id, "columns", len(cols))
	return nil
}

// UpdateIf applies patch only while the task still satisfies guard.
func (r *taskRepository) UpdateIf(ctx context.Context, id string, guard ports.TaskGuard, patch ports.TaskPatch) error {
	cols := patchColumns(patch)
	if len(cols) == 0 {
		return nil
	}
	tx := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id)
	tx = guarded(tx, guard)
	res := tx.Updates(cols)
	if res.Error != nil {
		r.log.Errorw("task_repo_update_if_failed", "id", id, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Warnw("task_repo_update_if_conflict", "id", id)
		return ports.ErrConflict
	}
	r.log.Infow("task_repo_update_if_ok", "id", id, "columns", len(cols))
	return nil
}

func guarded(tx *gorm.DB, guard ports.TaskGuard) *gorm.DB {
	if len(guard.Statuses) > 0 {
		tx = tx.Where("status IN ?", guard.Statuses)
	}
	if len(guard.SyncStatuses) > 0 {
		tx = tx.Where("sync_status IN ?", guard.SyncStatuses)
	}
	return tx
}

// DeleteTerminal removes the tasks and their results in one transaction.
// The guarded delete must match every id, otherwise it rolls back.
func (r *taskRepository) DeleteTerminal(ctx context.Context, ids []string, collections []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range collections {
			if !domain.IsResultCollection(c) {
				continue
			}
			if err := tx.Exec("DELETE FROM ? WHERE task_id IN ?", clause.Table{Name: c}, ids).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id IN ?", ids).
			Where("status IN ?", domain.TerminalTaskStatuses).
			Delete(&domain.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			return ports.ErrConflict
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			r.log.Warnw("task_repo_delete_conflict", "ids", ids)
		} else {
			r.log.Errorw("task_repo_delete_failed", "ids", ids, "error", err)
		}
		return err
	}
	r.log.Infow("task_repo_delete_ok", "ids", ids, "collections", len(collections))
	return nil
}
