package domain

// Task timeline event types
const (
	EventTypeTaskSubmitted     = "TASK_SUBMITTED"
	EventTypeTaskDispatchError = "TASK_DISPATCH_FAILED"
	EventTypeTaskStopped       = "TASK_STOPPED"
	EventTypeTaskDeleted       = "TASK_DELETED"
	EventTypeTaskSyncRequested = "TASK_SYNC_REQUESTED"
	EventTypePolicyUpdated     = "POLICY_UPDATED"
	EventTypePolicyCleared     = "POLICY_CLEARED"
)

const (
	ResourceTypeTask   = "task"
	ResourceTypePolicy = "policy"
)
