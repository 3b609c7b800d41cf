package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatusIsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   TaskStatus
		terminal bool
	}{
		{TaskStatusWaiting, false},
		{TaskStatusRunning, false},
		{TaskStatusDone, true},
		{TaskStatusStop, true},
		{TaskStatusError, true},
		{TaskStatus("bogus"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestTaskStatusValidateTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    TaskStatus
		to      TaskStatus
		wantErr bool
	}{
		{"waiting to stop", TaskStatusWaiting, TaskStatusStop, false},
		{"running to stop", TaskStatusRunning, TaskStatusStop, false},
		{"running to done", TaskStatusRunning, TaskStatusDone, false},
		{"running back to waiting", TaskStatusRunning, TaskStatusWaiting, true},
		{"done to stop", TaskStatusDone, TaskStatusStop, true},
		{"stop to running", TaskStatusStop, TaskStatusRunning, true},
		{"error to stop", TaskStatusError, TaskStatusStop, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.from.ValidateTransition(tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSyncStatusCanStartSync(t *testing.T) {
	t.Parallel()

	assert.True(t, SyncStatusDefault.CanStartSync())
	assert.True(t, SyncStatusError.CanStartSync())
	assert.False(t, SyncStatusWaiting.CanStartSync())
	assert.False(t, SyncStatusRunning.CanStartSync())
	assert.False(t, SyncStatusDone.CanStartSync())
}

func TestParseStatuses(t *testing.T) {
	t.Parallel()

	s, ok := ParseTaskStatus("running")
	assert.True(t, ok)
	assert.Equal(t, TaskStatusRunning, s)

	_, ok = ParseTaskStatus("RUNNING")
	assert.False(t, ok)

	ss, ok := ParseSyncStatus("waiting")
	assert.True(t, ok)
	assert.Equal(t, SyncStatusWaiting, ss)
}

func TestActionForTaskType(t *testing.T) {
	t.Parallel()

	a, ok := ActionForTaskType(TaskTypeDomain)
	assert.True(t, ok)
	assert.Equal(t, QueueActionDomainTask, a)

	a, ok = ActionForTaskType(TaskTypeIP)
	assert.True(t, ok)
	assert.Equal(t, QueueActionIPTask, a)

	_, ok = ActionForTaskType(TaskType("url"))
	assert.False(t, ok)
}

func TestJSONColumnsScan(t *testing.T) {
	t.Parallel()

	var opts JSONB
	assert.NoError(t, opts.Scan([]byte(`{"port_scan":true}`)))
	assert.Equal(t, true, opts["port_scan"])

	var list StringList
	assert.NoError(t, list.Scan(`["a.com","b.com"]`))
	assert.Equal(t, StringList{"a.com", "b.com"}, list)

	var svc JSONList
	assert.NoError(t, svc.Scan(nil))
	assert.Empty(t, svc)

	v, err := JSONList(nil).Value()
	assert.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	assert.Error(t, opts.Scan(42))
}

func TestCheckTaskOption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		key    string
		value  interface{}
		reason string
	}{
		{"bool flag", "port_scan", true, ""},
		{"string flag", "port_scan_type", "top100", ""},
		{"unknown key", "x", true, "unknown option"},
		{"object value", "port_scan", map[string]interface{}{"nested": []interface{}{1, 2}}, "must be a boolean"},
		{"number value", "site_capture", 3.5, "must be a boolean"},
		{"null value", "domain_brute_type", nil, "must be a string"},
		{"bool for string", "domain_brute_type", false, "must be a string"},
		{"string for bool", "ssl_cert", "yes", "must be a boolean"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.reason, CheckTaskOption(tt.key, tt.value))
		})
	}
}
