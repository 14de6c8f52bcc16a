package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tenantgrid/internal/cdc"
	configmgr "tenantgrid/internal/config"
	"tenantgrid/internal/dbrouter"
	"tenantgrid/internal/jwttoken"
	"tenantgrid/internal/loader"
	"tenantgrid/internal/notifier"
	"tenantgrid/internal/platform/config"
	"tenantgrid/internal/platform/httpserver"
	platformkafka "tenantgrid/internal/platform/kafka"
	"tenantgrid/internal/platform/logger"
	"tenantgrid/internal/platform/metrics"
	"tenantgrid/internal/platform/middleware"
	platformredis "tenantgrid/internal/platform/redis"
	"tenantgrid/internal/rules"
	"tenantgrid/internal/rules/common"
	"tenantgrid/internal/rules/credit"
	"tenantgrid/internal/scheduler"
	"tenantgrid/internal/tenant/builder"
	httpapi "tenantgrid/internal/transport/http"
)

type adminValidator struct {
	tokens *jwttoken.Service
}

func (v adminValidator) ValidateToken(token string) error {
	_, err := v.tokens.Validate(token)
	return err
}

// main wires the configuration pipeline: router, builder, manager, CDC
// gateway, notifier, scheduler and the HTTP surface. Business logic lives in
// the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := dbrouter.New(cfg.Database, nil, log)
	treeBuilder := builder.New(router, loader.NewPostgres(), log, cfg.Database.TenantLoadTimeout)
	manager := configmgr.NewManager(treeBuilder, cfg.Database.AdminDB, log, m)

	producer, err := platformkafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Error("kafka producer init failed", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	notify := notifier.New(platformkafka.NewAdmin(producer), producer, cfg.Kafka.NotifyTopic, log, m)

	consumer, err := platformkafka.NewConsumer(cfg.Kafka)
	if err != nil {
		log.Error("kafka consumer init failed", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	filter := cdc.NewFilter(cfg.Kafka.CapturePrefixes, cfg.Kafka.ExcludedTables)
	gateway := cdc.NewGateway(consumer, filter, manager, notify, log, m)

	// Rule engine: closed set of rules, registered once at startup.
	ruleRegistry := rules.NewRegistry()
	ruleRegistry.Register(common.NewTagRule())
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		ruleRegistry.Register(credit.New(credit.NewRedisStore(redisClient), log))
	}
	processor := rules.NewProcessor(ruleRegistry, log)
	log.Info("business rules registered", "rules", ruleRegistry.IDs())

	// First build before serving; a failure leaves the manager Empty and
	// the snapshot endpoints report not-yet-available until the stream or
	// the scheduler brings it up.
	if err := manager.Rebuild(ctx); err != nil {
		log.Error("initial configuration build failed", "error", err)
	}

	tokens := jwttoken.New(cfg.JWTSigningKey, "tenantgrid")
	handler := httpapi.NewHandler(manager, manager, notify, processor, log, m)
	srv := httpserver.New(cfg.Addr, httpapi.NewRouter(handler,
		middleware.RequireAdmin(adminValidator{tokens}, log)))

	go func() {
		if err := gateway.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("change gateway stopped", "error", err)
		}
	}()

	sched := scheduler.New(manager, notify, cfg.ReloadSchedule, log)
	if err := sched.Start(ctx); err != nil {
		log.Error("reload scheduler failed to start", "error", err)
		os.Exit(1)
	}

	go func() {
		log.Info("starting tenantgrid", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	if err := httpserver.Shutdown(srv); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
