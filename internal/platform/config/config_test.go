package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "res_admin", cfg.Database.AdminDB)
	assert.Equal(t, "res_", cfg.Database.TenantPrefix)
	assert.Equal(t, 10*time.Second, cfg.Database.TenantLoadTimeout)

	assert.Equal(t, "all-mysql-changes", cfg.Kafka.ChangeTopic)
	assert.Equal(t, "configGroup", cfg.Kafka.ConsumerGroup)
	assert.Equal(t, "config_event_loader", cfg.Kafka.NotifyTopic)
	assert.Equal(t,
		[]string{"sip_capture", "rtcp_capture", "report_capture", "logs_capture"},
		cfg.Kafka.CapturePrefixes)

	assert.Equal(t, "0 0 * * *", cfg.ReloadSchedule)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TENANTGRID_ADDR", ":9090")
	t.Setenv("ADMIN_DB", "core_admin")
	t.Setenv("TENANT_DB_PREFIX", "core_")
	t.Setenv("TENANT_LOAD_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("CONFIG_RELOAD_EXCLUDED_TABLES", "audit_log,job_queue")
	t.Setenv("CONFIG_RELOAD_SCHEDULE", "*/15 * * * *")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "core_admin", cfg.Database.AdminDB)
	assert.Equal(t, "core_", cfg.Database.TenantPrefix)
	assert.Equal(t, 30*time.Second, cfg.Database.TenantLoadTimeout)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"audit_log", "job_queue"}, cfg.Kafka.ExcludedTables)
	assert.Equal(t, "*/15 * * * *", cfg.ReloadSchedule)
}

func TestFromEnvBadDurationFallsBack(t *testing.T) {
	t.Setenv("TENANT_LOAD_TIMEOUT", "soon")
	assert.Equal(t, 10*time.Second, FromEnv().Database.TenantLoadTimeout)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , ,"))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,b, a ,"))
}
