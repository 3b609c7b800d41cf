package domain

import (
	"fmt"
	"time"
)

// TaskType says what kind of targets a task carries.
type TaskType string

const (
	TaskTypeDomain TaskType = "domain"
	TaskTypeIP     TaskType = "ip"
)

func (t TaskType) String() string { return string(t) }

// TaskTagTask marks tasks created through the submission API.
const TaskTagTask = "task"

// TaskStatus is the execution state of a task. The worker drives
// waiting -> running -> done|error; the control plane only ever moves a
// task into stop or error.
type TaskStatus string

const (
	TaskStatusWaiting TaskStatus = "waiting"
	TaskStatusRunning TaskStatus = "running"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusStop    TaskStatus = "stop"
	TaskStatusError   TaskStatus = "error"
)

// TerminalTaskStatuses are the states a task never leaves.
var TerminalTaskStatuses = []TaskStatus{TaskStatusDone, TaskStatusStop, TaskStatusError}

func (s TaskStatus) String() string { return string(s) }

// IsTerminal reports whether s is done, stop or error.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusDone, TaskStatusStop, TaskStatusError:
		return true
	default:
		return false
	}
}

// ParseTaskStatus converts a string to a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case TaskStatusWaiting, TaskStatusRunning, TaskStatusDone, TaskStatusStop, TaskStatusError:
		return TaskStatus(s), true
	default:
		return "", false
	}
}

// ValidateTransition checks if a status transition is valid and returns an error if not.
func (s TaskStatus) ValidateTransition(target TaskStatus) error {
	if !s.isValidTransition(target) {
		return fmt.Errorf("invalid task status transition from %s to %s", s, target)
	}
	return nil
}

func (s TaskStatus) isValidTransition(target TaskStatus) bool {
	switch s {
	case TaskStatusWaiting:
		return target == TaskStatusRunning || target == TaskStatusDone ||
			target == TaskStatusStop || target == TaskStatusError
	case TaskStatusRunning:
		return target == TaskStatusDone || target == TaskStatusStop || target == TaskStatusError
	case TaskStatusDone, TaskStatusStop, TaskStatusError:
		return false
	default:
		return false
	}
}

// SyncStatus tracks copying a finished task's assets into an asset scope.
// It moves independently of TaskStatus.
type SyncStatus string

const (
	SyncStatusDefault SyncStatus = "default"
	SyncStatusWaiting SyncStatus = "waiting"
	SyncStatusRunning SyncStatus = "running"
	SyncStatusDone    SyncStatus = "done"
	SyncStatusError   SyncStatus = "error"
)

// SyncableStatuses are the sync states from which a new sync may start.
var SyncableStatuses = []SyncStatus{SyncStatusDefault, SyncStatusError}

func (s SyncStatus) String() string { return string(s) }

// CanStartSync reports whether no sync is pending or in flight.
func (s SyncStatus) CanStartSync() bool {
	switch s {
	case SyncStatusDefault, SyncStatusError:
		return true
	case SyncStatusWaiting, SyncStatusRunning, SyncStatusDone:
		return false
	default:
		return false
	}
}

// ParseSyncStatus converts a string to a SyncStatus.
func ParseSyncStatus(s string) (SyncStatus, bool) {
	switch SyncStatus(s) {
	case SyncStatusDefault, SyncStatusWaiting, SyncStatusRunning, SyncStatusDone, SyncStatusError:
		return SyncStatus(s), true
	default:
		return "", false
	}
}

// Task is one admitted unit of reconnaissance work. StartTime and EndTime
// stay nil until the worker (or a stop) sets them.
type Task struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name       string     `gorm:"size:255;not null" json:"name"`
	Target     string     `gorm:"type:text;not null" json:"target"`
	Type       TaskType   `gorm:"size:20;not null;index" json:"type"`
	TaskTag    string     `gorm:"size:50;not null;default:'task';index" json:"task_tag"`
	Status     TaskStatus `gorm:"size:20;not null;default:'waiting';index" json:"status"`
	SyncStatus SyncStatus `gorm:"size:20;not null;default:'default'" json:"sync_status"`
	StartTime  *time.Time `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Options    JSONB      `gorm:"type:jsonb" json:"options"`
	Service    JSONList   `gorm:"type:jsonb;not null;default:'[]'" json:"service"`
	JobHandle  JobHandle  `gorm:"size:64;index" json:"job_handle"`
}

func (Task) TableName() string { return "task" }

// HasJobHandle reports whether dispatch succeeded and was recorded.
func (t *Task) HasJobHandle() bool { return t.JobHandle != "" }

// OptionKind is the JSON type a task option must carry.
type OptionKind string

const (
	OptionBool   OptionKind = "bool"
	OptionString OptionKind = "string"
)

// TaskOptionKinds lists the scan features a task may toggle.
var TaskOptionKinds = map[string]OptionKind{
	"domain_brute":         OptionBool,
	"domain_brute_type":    OptionString,
	"port_scan":            OptionBool,
	"port_scan_type":       OptionString,
	"service_detection":    OptionBool,
	"service_brute":        OptionBool,
	"os_detection":         OptionBool,
	"site_identify":        OptionBool,
	"site_capture":         OptionBool,
	"file_leak":            OptionBool,
	"search_engines":       OptionBool,
	"site_spider":          OptionBool,
	"arl_search":           OptionBool,
	"riskiq_search":        OptionBool,
	"alt_dns":              OptionBool,
	"github_search_domain": OptionBool,
	"url_spider":           OptionBool,
	"ssl_cert":             OptionBool,
	"fetch_api_path":       OptionBool,
	"fofa_search":          OptionBool,
	"sub_takeover":         OptionBool,
}

// CheckTaskOption returns why value is not acceptable for key, or "" if it is.
func CheckTaskOption(key string, value interface{}) string {
	kind, ok := TaskOptionKinds[key]
	if !ok {
		return "unknown option"
	}
	switch value.(type) {
	case bool:
		if kind == OptionBool {
			return ""
		}
	case string:
		if kind == OptionString {
			return ""
		}
	}
	if kind == OptionString {
		return "must be a string"
	}
	return "must be a boolean"
}
