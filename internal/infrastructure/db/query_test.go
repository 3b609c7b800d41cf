package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/query"
	"github.com/lighthouse/backend/internal/domain"
)

var testSchema = query.Schema{Fields: map[string]query.Kind{
	"name":        query.KindString,
	"status":      query.KindString,
	"scope_array": query.KindList,
	"options":     query.KindObject,
	"start_time":  query.KindTime,
	"task_id":     query.KindID,
}}

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=arl dbname=arl sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return database
}

func renderTaskQuery(t *testing.T, params query.Params) string {
	t.Helper()
	q, err := query.Translate(testSchema, params)
	require.NoError(t, err)
	database := newDryRunDB(t)
	return database.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var tasks []domain.Task
		return filtered(tx.Model(&domain.Task{}), q).
			Clauses(orderBy(q.Sort)).
			Offset(q.Skip()).
			Limit(q.Limit()).
			Find(&tasks)
	})
}

func TestRenderQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   query.Params
		contains []string
		excludes []string
	}{
		{
			name:     "defaults",
			params:   query.Params{},
			contains: []string{`FROM "task"`, `ORDER BY "id" DESC`, `LIMIT 10`},
			excludes: []string{"WHERE", "OFFSET"},
		},
		{
			name:     "substring is escaped and case insensitive",
			params:   query.Params{Filters: map[string]interface{}{"name": "a.b"}},
			contains: []string{`"name" ~* 'a\.b'`},
		},
		{
			name:     "list element match",
			params:   query.Params{Filters: map[string]interface{}{"scope_array": "example.com"}},
			contains: []string{`jsonb_array_elements_text("scope_array")`, `elem ~* 'example\.com'`},
		},
		{
			name:     "object sub-field boolean",
			params:   query.Params{Filters: map[string]interface{}{"options.port_scan": true}},
			contains: []string{`"options"->>'port_scan' = 'true'`},
		},
		{
			name:     "identifier is exact",
			params:   query.Params{Filters: map[string]interface{}{"_id": "0190A3A0-0000-7000-8000-000000000001"}},
			contains: []string{`"id" = '0190a3a0-0000-7000-8000-000000000001'`},
		},
		{
			name: "date range",
			params: query.Params{Filters: map[string]interface{}{
				"start_time__dgt": "2024-01-01 00:00:00",
				"start_time__dlt": "2024-02-01 00:00:00",
			}},
			contains: []string{`"start_time" > '2024-01-01 00:00:00`, `"start_time" < '2024-02-01 00:00:00`},
		},
		{
			name:     "paging and multi-key order",
			params:   query.Params{Page: 3, Size: 20, Order: "status,-name"},
			contains: []string{`ORDER BY "status","name" DESC`, `LIMIT 20`, `OFFSET 40`},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sql := renderTaskQuery(t, tt.params)
			for _, want := range tt.contains {
				assert.Contains(t, sql, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, sql, unwanted)
			}
		})
	}
}

func TestGuardedUpdate(t *testing.T) {
	t.Parallel()
	database := newDryRunDB(t)

	sql := database.ToSQL(func(tx *gorm.DB) *gorm.DB {
		tx = tx.Model(&domain.Task{}).Where("id = ?", "abc")
		return guarded(tx, ports.TaskGuard{
			Statuses:     domain.TerminalTaskStatuses,
			SyncStatuses: domain.SyncableStatuses,
		}).Updates(map[string]interface{}{"sync_status": domain.SyncStatusWaiting})
	})
	assert.Contains(t, sql, `UPDATE "task" SET`)
	assert.Contains(t, sql, `"sync_status"='waiting'`)
	assert.Contains(t, sql, `status IN ('done','stop','error')`)
	assert.Contains(t, sql, `sync_status IN ('default','error')`)
}
