// Package queue implements ports.WorkQueue over Kafka and in memory.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/lighthouse/backend/internal/config"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
)

var _ ports.WorkQueue = (*KafkaQueue)(nil)

// Message types on the control topic.
const controlTypeRevoke = "revoke"

// JobMessage is the record written to the task topic. The worker keys its
// bookkeeping on ID, which is also the job handle returned to callers.
type JobMessage struct {
	ID          string             `json:"job_id"`
	Action      domain.QueueAction `json:"action"`
	Data        interface{}        `json:"data"`
	RequestID   string             `json:"request_id,omitempty"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

// ControlMessage asks workers to act on a dispatched job.
type ControlMessage struct {
	Type      string    `json:"type"`
	JobHandle string    `json:"job_id"`
	Signal    string    `json:"signal"`
	Terminate bool      `json:"terminate"`
	SentAt    time.Time `json:"sent_at"`
}

// KafkaQueue publishes jobs and revocations with a synchronous producer, so
// a returned handle means the broker acknowledged the job.
type KafkaQueue struct {
	producer     sarama.SyncProducer
	taskTopic    string
	controlTopic string
	logger       *logger.Logger
	metrics      ports.QueueMetrics
	requestID    func(context.Context) string
}

type KafkaQueueConfig struct {
	Producer     sarama.SyncProducer
	TaskTopic    string
	ControlTopic string
	Logger       *logger.Logger
	Metrics      ports.QueueMetrics
	// RequestID extracts a correlation id from the submitting context.
	RequestID func(context.Context) string
}

func NewKafkaQueue(cfg KafkaQueueConfig) *KafkaQueue {
	q := &KafkaQueue{
		producer:     cfg.Producer,
		taskTopic:    cfg.TaskTopic,
		controlTopic: cfg.ControlTopic,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		requestID:    cfg.RequestID,
	}
	if q.metrics == nil {
		q.metrics = nopQueueMetrics{}
	}
	if q.requestID == nil {
		q.requestID = func(context.Context) string { return "" }
	}
	return q
}

// NewProducerConfig returns the sarama settings used for job dispatch.
func NewProducerConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Producer.Retry.Max = 3
	cfg.Version = sarama.V3_6_0_0
	return cfg
}

// ConnectWithRetry dials the brokers with exponential backoff until
// cfg.ConnectTimeout elapses.
func ConnectWithRetry(cfg config.QueueConfig, log *logger.Logger) (sarama.SyncProducer, error) {
	var producer sarama.SyncProducer

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 2 * time.Second
	expBackoff.MaxElapsedTime = cfg.ConnectTimeout
	if expBackoff.MaxElapsedTime <= 0 {
		expBackoff.MaxElapsedTime = time.Minute
	}

	operation := func() error {
		p, err := sarama.NewSyncProducer(cfg.Brokers, NewProducerConfig(cfg.ClientID))
		if err != nil {
			log.Warnw("queue_connect_retry", "brokers", cfg.Brokers, "error", err)
			return err
		}
		producer = p
		return nil
	}

	if err := backoff.Retry(operation, expBackoff); err != nil {
		return nil, fmt.Errorf("failed to connect to kafka after retries: %w", err)
	}
	log.Infow("queue_connect_ok", "brokers", cfg.Brokers, "task_topic", cfg.TaskTopic)
	return producer, nil
}

func (q *KafkaQueue) Submit(ctx context.Context, payload domain.JobPayload) (domain.JobHandle, error) {
	handle := uuid.NewString()
	msg := JobMessage{
		ID:          handle,
		Action:      payload.Action,
		Data:        payload.Data,
		RequestID:   q.requestID(ctx),
		SubmittedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		q.metrics.IncPublishErrors(q.taskTopic)
		return "", fmt.Errorf("failed to serialize job %s: %w", payload.Action, err)
	}

	if err := q.send(q.taskTopic, handle, string(payload.Action), body); err != nil {
		return "", err
	}
	q.logger.Infow("queue_submit_ok", "job_handle", handle, "action", payload.Action)
	return domain.JobHandle(handle), nil
}

func (q *KafkaQueue) Revoke(_ context.Context, handle domain.JobHandle) error {
	body, err := json.Marshal(ControlMessage{
		Type:      controlTypeRevoke,
		JobHandle: string(handle),
		Signal:    domain.RevokeSignal,
		Terminate: true,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		q.metrics.IncPublishErrors(q.controlTopic)
		return fmt.Errorf("failed to serialize revoke for %s: %w", handle, err)
	}

	if err := q.send(q.controlTopic, string(handle), controlTypeRevoke, body); err != nil {
		return err
	}
	q.logger.Infow("queue_revoke_ok", "job_handle", handle)
	return nil
}

func (q *KafkaQueue) send(topic, key, action string, body []byte) error {
	partition, offset, err := q.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("action"), Value: []byte(action)},
		},
	})
	if err != nil {
		q.metrics.IncPublishErrors(topic)
		q.logger.Errorw("queue_send_failed", "topic", topic, "key", key, "error", err)
		return fmt.Errorf("failed to send message to kafka topic %s: %w", topic, err)
	}
	q.metrics.IncMessagesPublished(topic)
	q.logger.Debugw("queue_send_ok", "topic", topic, "key", key, "partition", partition, "offset", offset)
	return nil
}

func (q *KafkaQueue) Close() error {
	return q.producer.Close()
}

type nopQueueMetrics struct{}

func (nopQueueMetrics) IncMessagesPublished(string) {}
func (nopQueueMetrics) IncPublishErrors(string)     {}
