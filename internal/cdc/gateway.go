package cdc

import (
	"context"
	"log/slog"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"

	"tenantgrid/internal/platform/metrics"
)

// Rebuilder triggers a configuration rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// Publisher announces a successful rebuild to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context) error
}

// Filter decides which tables can trigger a rebuild.
type Filter struct {
	capturePrefixes []string
	excluded        map[string]struct{}
}

// NewFilter builds a filter from high-volume capture-table prefixes and an
// exclusion set of bookkeeping tables that never affect routing config.
func NewFilter(capturePrefixes, excludedTables []string) *Filter {
	excluded := make(map[string]struct{}, len(excludedTables))
	for _, t := range excludedTables {
		excluded[t] = struct{}{}
	}
	return &Filter{capturePrefixes: capturePrefixes, excluded: excluded}
}

// Relevant reports whether a change to table should trigger a rebuild.
func (f *Filter) Relevant(table string) bool {
	for _, prefix := range f.capturePrefixes {
		if strings.HasPrefix(table, prefix) {
			return false
		}
	}
	_, skip := f.excluded[table]
	return !skip
}

// Gateway consumes the change-event stream, filters irrelevant tables, and
// triggers rebuild-and-notify for the rest. Every consumed record is
// committed exactly once, whether or not its rebuild succeeded: a failed
// rebuild must not stall the stream, and the scheduled fallback rebuild
// covers any change lost to a failure.
type Gateway struct {
	client   *kgo.Client
	filter   *Filter
	manager  Rebuilder
	notifier Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewGateway wires the gateway. The client must already be subscribed to the
// change topic with auto-commit disabled.
func NewGateway(client *kgo.Client, filter *Filter, manager Rebuilder, notifier Publisher,
	logger *slog.Logger, m *metrics.Metrics) *Gateway {
	return &Gateway{
		client:   client,
		filter:   filter,
		manager:  manager,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
	}
}

// Run polls the change stream until ctx is cancelled or the client closes.
func (g *Gateway) Run(ctx context.Context) error {
	for {
		fetches := g.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			g.logger.Error("change stream fetch error",
				"topic", topic, "partition", partition, "error", err)
		})

		var records []*kgo.Record
		fetches.EachRecord(func(rec *kgo.Record) {
			g.HandleRecord(ctx, rec.Key, rec.Value)
			records = append(records, rec)
		})

		if len(records) > 0 {
			if err := g.client.CommitRecords(ctx, records...); err != nil {
				g.logger.Error("commit change stream offsets", "error", err)
			}
		}
	}
}

// HandleRecord processes one change event. All errors are contained here so
// the caller can always acknowledge the record.
func (g *Gateway) HandleRecord(ctx context.Context, key, value []byte) {
	table, err := TableFromRecord(key, value)
	if err != nil {
		g.metrics.ChangeEvents.WithLabelValues("error").Inc()
		g.logger.Warn("dropping malformed change event", "error", err)
		return
	}

	if !g.filter.Relevant(table) {
		g.metrics.ChangeEvents.WithLabelValues("filtered").Inc()
		return
	}

	g.metrics.ChangeEvents.WithLabelValues("triggered").Inc()
	if err := g.manager.Rebuild(ctx); err != nil {
		// A later change event or the scheduled rebuild will retry.
		g.logger.Error("rebuild after change event failed", "table", table, "error", err)
		return
	}
	if err := g.notifier.Publish(ctx); err != nil {
		g.logger.Error("notify after rebuild failed", "table", table, "error", err)
	}
}
