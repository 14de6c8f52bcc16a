package config

import (
	"os"
	"strings"
	"time"

	pstrings "tenantgrid/pkg/platform/strings"
)

// Config captures everything the process consumes from its environment. The
// core does not own these values, it only reads them here so main stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string

	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig

	// ReloadSchedule is a cron expression for the fallback rebuild that runs
	// even when no change event arrives. Empty disables the scheduler.
	ReloadSchedule string
}

// DatabaseConfig describes how per-tenant connections are derived. The final
// DSN for a tenant is URLBase + database name plus the shared credentials.
type DatabaseConfig struct {
	URLBase  string
	User     string
	Password string

	// AdminDB is the administrative root database; it anchors discovery and
	// is the root of the tenant tree.
	AdminDB string

	// TenantPrefix filters discovered database names down to tenant databases.
	TenantPrefix string

	// TenantLoadTimeout bounds how long one tenant's profile load may take
	// during a rebuild before that tenant is skipped.
	TenantLoadTimeout time.Duration
}

// KafkaConfig holds change-stream and notification settings.
type KafkaConfig struct {
	Brokers       []string
	ChangeTopic   string
	ConsumerGroup string
	NotifyTopic   string

	// ExcludedTables never trigger a rebuild (audit/ledger/job bookkeeping).
	ExcludedTables []string

	// CapturePrefixes are high-volume telemetry table name prefixes whose
	// events are dropped before any other filtering.
	CapturePrefixes []string
}

// RedisConfig configures the balance store used by the credit-check rule.
type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds the full configuration from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          envOr("TENANTGRID_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Database: DatabaseConfig{
			URLBase:           envOr("DATASOURCE_URL_BASE", "postgres://localhost:5432/"),
			User:              envOr("DATASOURCE_USER", "postgres"),
			Password:          os.Getenv("DATASOURCE_PASSWORD"),
			AdminDB:           envOr("ADMIN_DB", "res_admin"),
			TenantPrefix:      envOr("TENANT_DB_PREFIX", "res_"),
			TenantLoadTimeout: durationOr("TENANT_LOAD_TIMEOUT", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(envOr("KAFKA_BROKERS", "localhost:9092")),
			ChangeTopic:   envOr("KAFKA_CHANGE_TOPIC", "all-mysql-changes"),
			ConsumerGroup: envOr("KAFKA_CONSUMER_GROUP", "configGroup"),
			NotifyTopic:   envOr("KAFKA_NOTIFY_TOPIC", "config_event_loader"),
			ExcludedTables: splitList(os.Getenv("CONFIG_RELOAD_EXCLUDED_TABLES")),
			CapturePrefixes: splitList(envOr("CAPTURE_TABLE_PREFIXES",
				"sip_capture,rtcp_capture,report_capture,logs_capture")),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		ReloadSchedule: envOr("CONFIG_RELOAD_SCHEDULE", "0 0 * * *"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	out := pstrings.DedupeAndTrim(strings.Split(v, ","))
	if len(out) == 0 {
		return nil
	}
	return out
}
