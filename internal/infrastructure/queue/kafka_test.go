package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
)

type countingMetrics struct {
	published map[string]int
	failed    map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{published: map[string]int{}, failed: map[string]int{}}
}

func (m *countingMetrics) IncMessagesPublished(topic string) { m.published[topic]++ }
func (m *countingMetrics) IncPublishErrors(topic string)     { m.failed[topic]++ }

type ctxKey struct{}

func newTestQueue(producer sarama.SyncProducer, metrics *countingMetrics) *KafkaQueue {
	return NewKafkaQueue(KafkaQueueConfig{
		Producer:     producer,
		TaskTopic:    "arl.task",
		ControlTopic: "arl.control",
		Logger:       logger.NewNop(),
		Metrics:      metrics,
		RequestID: func(ctx context.Context) string {
			id, _ := ctx.Value(ctxKey{}).(string)
			return id
		},
	})
}

func TestKafkaQueue_Submit(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	metrics := newCountingMetrics()
	q := newTestQueue(producer, metrics)

	var got JobMessage
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		return json.Unmarshal(val, &got)
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	handle, err := q.Submit(ctx, domain.JobPayload{
		Action: domain.QueueActionDomainSyncTask,
		Data:   domain.SyncJobData{TaskID: "t1", ScopeID: "s1"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, handle)

	assert.Equal(t, string(handle), got.ID)
	assert.Equal(t, domain.QueueActionDomainSyncTask, got.Action)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, map[string]interface{}{"task_id": "t1", "scope_id": "s1"}, got.Data)
	assert.Equal(t, 1, metrics.published["arl.task"])

	require.NoError(t, q.Close())
}

func TestKafkaQueue_SubmitFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	metrics := newCountingMetrics()
	q := newTestQueue(producer, metrics)

	brokerErr := errors.New("leader not available")
	producer.ExpectSendMessageAndFail(brokerErr)

	handle, err := q.Submit(context.Background(), domain.JobPayload{Action: domain.QueueActionIPTask})
	require.Error(t, err)
	assert.ErrorIs(t, err, brokerErr)
	assert.Empty(t, handle)
	assert.Equal(t, 1, metrics.failed["arl.task"])
	assert.Zero(t, metrics.published["arl.task"])

	require.NoError(t, q.Close())
}

func TestKafkaQueue_Revoke(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	metrics := newCountingMetrics()
	q := newTestQueue(producer, metrics)

	var got ControlMessage
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		return json.Unmarshal(val, &got)
	})

	require.NoError(t, q.Revoke(context.Background(), "job-42"))
	assert.Equal(t, "revoke", got.Type)
	assert.Equal(t, "job-42", got.JobHandle)
	assert.Equal(t, domain.RevokeSignal, got.Signal)
	assert.True(t, got.Terminate)
	assert.Equal(t, 1, metrics.published["arl.control"])

	require.NoError(t, q.Close())
}

func TestNewProducerConfig(t *testing.T) {
	t.Parallel()
	cfg := NewProducerConfig("arl-control")
	assert.Equal(t, "arl-control", cfg.ClientID)
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.True(t, cfg.Producer.Return.Successes)
	assert.NoError(t, cfg.Validate())
}

func TestMemoryQueue(t *testing.T) {
	t.Parallel()
	q := NewMemoryQueue(logger.NewNop())
	ctx := context.Background()

	h1, err := q.Submit(ctx, domain.JobPayload{Action: domain.QueueActionDomainTask})
	require.NoError(t, err)
	h2, err := q.Submit(ctx, domain.JobPayload{Action: domain.QueueActionIPTask})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	require.NoError(t, q.Revoke(ctx, h1))
	require.NoError(t, q.Revoke(ctx, "unknown"))

	jobs := q.Jobs()
	require.Len(t, jobs, 2)
	assert.True(t, jobs[0].Revoked)
	assert.False(t, jobs[1].Revoked)
	assert.Equal(t, domain.QueueActionIPTask, jobs[1].Payload.Action)

	require.NoError(t, q.Close())
	_, err = q.Submit(ctx, domain.JobPayload{Action: domain.QueueActionDomainTask})
	assert.ErrorIs(t, err, ErrQueueClosed)
}
