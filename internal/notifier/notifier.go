// Package notifier announces successful configuration rebuilds on a
// well-known topic. The payload carries no delta; consumers re-fetch the full
// snapshot on receipt.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"tenantgrid/internal/platform/metrics"
	"tenantgrid/pkg/platform/sentinel"
)

// Message is the fixed notification payload. It is a pure trigger.
const Message = "config reloaded"

const (
	topicPartitions        = 3
	topicReplicationFactor = 1
)

// TopicAdmin is the subset of the Kafka admin API the notifier needs.
// *kadm.Client implements it.
type TopicAdmin interface {
	ListTopics(ctx context.Context, topics ...string) (kadm.TopicDetails, error)
	CreateTopic(ctx context.Context, partitions int32, replicationFactor int16,
		configs map[string]*string, topic string) (kadm.CreateTopicResponse, error)
}

// Producer is the subset of the Kafka producer API the notifier needs.
// *kgo.Client implements it.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Notifier publishes "config reloaded" signals at-least-once.
type Notifier struct {
	admin    TopicAdmin
	producer Producer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics

	// ensured caches successful topic existence so steady-state publishes
	// skip the admin round trip.
	ensured atomic.Bool
}

// New constructs a notifier for the given topic.
func New(admin TopicAdmin, producer Producer, topic string, logger *slog.Logger, m *metrics.Metrics) *Notifier {
	return &Notifier{admin: admin, producer: producer, topic: topic, logger: logger, metrics: m}
}

// Publish ensures the notification topic exists, then sends the fixed
// payload. Creation is idempotent: losing a creation race to a concurrent
// creator is not an error, the send proceeds once the topic exists either
// way. No ordering is guaranteed between successive notifications.
func (n *Notifier) Publish(ctx context.Context) error {
	if err := n.ensureTopic(ctx); err != nil {
		n.metrics.Notifications.WithLabelValues("failure").Inc()
		return err
	}

	record := &kgo.Record{Topic: n.topic, Value: []byte(Message)}
	if err := n.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		n.metrics.Notifications.WithLabelValues("failure").Inc()
		return fmt.Errorf("publish config notification: %w", err)
	}

	n.metrics.Notifications.WithLabelValues("success").Inc()
	n.logger.Info("config reload notification published", "topic", n.topic)
	return nil
}

func (n *Notifier) ensureTopic(ctx context.Context) error {
	if n.ensured.Load() {
		return nil
	}

	details, err := n.admin.ListTopics(ctx, n.topic)
	if err != nil {
		return fmt.Errorf("list notification topics: %w", err)
	}
	if details.Has(n.topic) {
		n.ensured.Store(true)
		return nil
	}

	_, err = n.admin.CreateTopic(ctx, topicPartitions, topicReplicationFactor, nil, n.topic)
	switch {
	case err == nil:
		n.logger.Info("notification topic created", "topic", n.topic)
	case errors.Is(err, kerr.TopicAlreadyExists):
		// Another creator won the race; the send can proceed.
		n.logger.Debug("notification topic creation race",
			"topic", n.topic, "cause", sentinel.ErrPublishRace)
	default:
		return fmt.Errorf("create notification topic: %w", err)
	}

	n.ensured.Store(true)
	return nil
}
