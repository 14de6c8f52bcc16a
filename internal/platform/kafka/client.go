// Package kafka constructs the franz-go clients the CDC gateway and the
// change notifier share. Producer and consumer are separate clients so the
// consumer group session never blocks notification sends.
package kafka

import (
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"tenantgrid/internal/platform/config"
)

// NewConsumer returns a client subscribed to the change-event topic as part
// of the configured consumer group. Commits are explicit: the gateway marks
// and commits each record after handling it.
func NewConsumer(cfg config.KafkaConfig) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(cfg.ChangeTopic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return client, nil
}

// NewProducer returns a plain producer client for the notification topic.
func NewProducer(cfg config.KafkaConfig) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return client, nil
}

// NewAdmin wraps a producer client with the admin API used for idempotent
// topic creation.
func NewAdmin(client *kgo.Client) *kadm.Client {
	return kadm.NewClient(client)
}
