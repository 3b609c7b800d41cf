package services

import "github.com/lighthouse/backend/internal/core/query"

// Filterable fields per resource.
var (
	TaskSchema = query.Schema{Fields: map[string]query.Kind{
		"name":        query.KindString,
		"target":      query.KindString,
		"type":        query.KindString,
		"task_tag":    query.KindString,
		"status":      query.KindString,
		"sync_status": query.KindString,
		"job_handle":  query.KindString,
		"start_time":  query.KindTime,
		"end_time":    query.KindTime,
		"created_at":  query.KindTime,
		"options":     query.KindObject,
	}}

	ScopeSchema = query.Schema{Fields: map[string]query.Kind{
		"name":        query.KindString,
		"scope_type":  query.KindString,
		"scope":       query.KindString,
		"scope_array": query.KindList,
		"created_at":  query.KindTime,
	}}

	ResultSchema = query.Schema{Fields: map[string]query.Kind{
		"task_id":     query.KindID,
		"data":        query.KindObject,
		"save_date":   query.KindTime,
		"update_date": query.KindTime,
	}}
)
