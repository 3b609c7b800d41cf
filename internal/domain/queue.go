package domain

// JobHandle is the opaque reference a work queue returns for a dispatched job.
type JobHandle string

func (h JobHandle) String() string { return string(h) }

// QueueAction tells the worker which job body it received.
type QueueAction string

const (
	QueueActionDomainTask     QueueAction = "DOMAIN_TASK"
	QueueActionIPTask         QueueAction = "IP_TASK"
	QueueActionDomainSyncTask QueueAction = "DOMAIN_TASK_SYNC_TASK"
)

func (a QueueAction) String() string { return string(a) }

// ActionForTaskType maps a task type onto its scan action.
func ActionForTaskType(t TaskType) (QueueAction, bool) {
	switch t {
	case TaskTypeDomain:
		return QueueActionDomainTask, true
	case TaskTypeIP:
		return QueueActionIPTask, true
	default:
		return "", false
	}
}

// JobPayload is the discriminated body handed to the work queue.
type JobPayload struct {
	Action QueueAction `json:"action"`
	Data   interface{} `json:"data"`
}

// SyncJobData is the body of a DOMAIN_TASK_SYNC_TASK job.
type SyncJobData struct {
	TaskID  string `json:"task_id"`
	ScopeID string `json:"scope_id"`
}

// RevokeSignal is sent with forced revocations.
const RevokeSignal = "SIGTERM"
