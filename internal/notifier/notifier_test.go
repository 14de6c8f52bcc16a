package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"tenantgrid/internal/platform/metrics"
)

// metrics.New registers collectors globally, so the test binary shares one
// instance.
var testMetrics = metrics.New()

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeAdmin struct {
	existing  map[string]bool
	listCalls int
	created   []string
	createErr error

	partitions int32
	replicas   int16
}

func (f *fakeAdmin) ListTopics(_ context.Context, topics ...string) (kadm.TopicDetails, error) {
	f.listCalls++
	details := make(kadm.TopicDetails)
	for _, topic := range topics {
		if f.existing[topic] {
			details[topic] = kadm.TopicDetail{Topic: topic}
		}
	}
	return details, nil
}

func (f *fakeAdmin) CreateTopic(_ context.Context, partitions int32, replicationFactor int16,
	_ map[string]*string, topic string) (kadm.CreateTopicResponse, error) {
	f.created = append(f.created, topic)
	f.partitions = partitions
	f.replicas = replicationFactor
	if f.createErr != nil {
		return kadm.CreateTopicResponse{}, f.createErr
	}
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[topic] = true
	return kadm.CreateTopicResponse{Topic: topic}, nil
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	if f.err != nil {
		return kgo.ProduceResults{{Err: f.err}}
	}
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r})
	}
	return results
}

func TestPublishExistingTopic(t *testing.T) {
	admin := &fakeAdmin{existing: map[string]bool{"config_event_loader": true}}
	producer := &fakeProducer{}
	n := New(admin, producer, "config_event_loader", testLogger, testMetrics)

	require.NoError(t, n.Publish(context.Background()))

	assert.Empty(t, admin.created, "an existing topic is never recreated")
	require.Len(t, producer.records, 1)
	assert.Equal(t, "config_event_loader", producer.records[0].Topic)
	assert.Equal(t, Message, string(producer.records[0].Value))
}

func TestPublishCreatesMissingTopic(t *testing.T) {
	admin := &fakeAdmin{}
	producer := &fakeProducer{}
	n := New(admin, producer, "config_event_loader", testLogger, testMetrics)

	require.NoError(t, n.Publish(context.Background()))

	require.Equal(t, []string{"config_event_loader"}, admin.created)
	assert.Equal(t, int32(3), admin.partitions)
	assert.Equal(t, int16(1), admin.replicas)
	assert.Len(t, producer.records, 1)
}

func TestPublishToleratesCreationRace(t *testing.T) {
	admin := &fakeAdmin{createErr: kerr.TopicAlreadyExists}
	producer := &fakeProducer{}
	n := New(admin, producer, "config_event_loader", testLogger, testMetrics)

	require.NoError(t, n.Publish(context.Background()))
	assert.Len(t, producer.records, 1, "losing the creation race must not block the send")
}

func TestPublishCreateFailure(t *testing.T) {
	admin := &fakeAdmin{createErr: errors.New("not authorized")}
	producer := &fakeProducer{}
	n := New(admin, producer, "config_event_loader", testLogger, testMetrics)

	require.Error(t, n.Publish(context.Background()))
	assert.Empty(t, producer.records)
}

func TestPublishSkipsAdminOnceEnsured(t *testing.T) {
	admin := &fakeAdmin{existing: map[string]bool{"config_event_loader": true}}
	n := New(admin, &fakeProducer{}, "config_event_loader", testLogger, testMetrics)

	require.NoError(t, n.Publish(context.Background()))
	require.NoError(t, n.Publish(context.Background()))

	assert.Equal(t, 1, admin.listCalls, "topic existence is cached after the first publish")
}

func TestPublishProducerFailure(t *testing.T) {
	admin := &fakeAdmin{existing: map[string]bool{"config_event_loader": true}}
	producer := &fakeProducer{err: errors.New("broker unavailable")}
	n := New(admin, producer, "config_event_loader", testLogger, testMetrics)

	assert.Error(t, n.Publish(context.Background()))
}
