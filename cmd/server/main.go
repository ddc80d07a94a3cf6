package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	authhandler "familyhub/internal/auth/handler"
	"familyhub/internal/auth/password"
	authservice "familyhub/internal/auth/service"
	userstore "familyhub/internal/auth/store/user"
	familyhandler "familyhub/internal/family/handler"
	familymetrics "familyhub/internal/family/metrics"
	familyservice "familyhub/internal/family/service"
	invitationhandler "familyhub/internal/invitation/handler"
	invitationmetrics "familyhub/internal/invitation/metrics"
	invitationservice "familyhub/internal/invitation/service"
	"familyhub/internal/invitation/token"
	jwttoken "familyhub/internal/jwt_token"
	"familyhub/internal/notify"
	"familyhub/internal/onboarding"
	"familyhub/internal/platform/config"
	"familyhub/internal/platform/httpserver"
	"familyhub/internal/platform/logger"
	"familyhub/internal/platform/metrics"
	"familyhub/internal/platform/postgres"
	platformredis "familyhub/internal/platform/redis"
	"familyhub/internal/storage"
	"familyhub/internal/storage/memory"
	pgstore "familyhub/internal/storage/postgres"
	"familyhub/internal/storage/postgres/migrations"
	httptransport "familyhub/internal/transport/http"
	"familyhub/pkg/platform/audit"
)

type auditSink interface {
	audit.Publisher
	Close() error
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		slog.Error("familyhub stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)
	slog.SetDefault(log)
	if cfg.UsesDevSigningKey() {
		log.Warn("using the development JWT signing key; set JWT_SIGNING_KEY in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := metrics.NewRegistry()
	checks := map[string]httptransport.HealthCheck{}

	publisher, err := buildAuditSink(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("failed to close audit publisher", "error", err)
		}
	}()

	var users authservice.UserStore
	var stores storage.Stores
	var txRunner storage.TxRunner
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.Database.AutoMigrate {
			if err := migrations.Run(ctx, db, log); err != nil {
				return err
			}
		}
		runner := pgstore.NewTxRunner(db, cfg.Database.TxTimeout)
		users, stores, txRunner = userstore.NewPostgres(db), runner.Stores(), runner
		checks["postgres"] = db.PingContext
	} else {
		log.Warn("DATABASE_URL not set, keeping all data in memory")
		db := memory.New(memory.WithTxTimeout(cfg.Database.TxTimeout))
		users, stores, txRunner = userstore.New(), db.Stores(), db
	}

	deduper := notify.Deduper(notify.NewMemoryDeduper(cfg.Email.DedupeTTL))
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		deduper = notify.NewRedisDeduper(redisClient, cfg.Email.DedupeTTL)
		checks["redis"] = redisClient.Health
	}

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Email.SendGridAPIKey != "" {
		sg, err := notify.NewSendGridNotifier(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return err
		}
		notifier = sg
	} else {
		log.Warn("SENDGRID_API_KEY not set, invitation emails are only logged")
	}

	invitationMetrics := invitationmetrics.New(registry)
	dispatcher := notify.NewDispatcher(notifier,
		notify.WithDeduper(deduper),
		notify.WithLogger(log),
		notify.WithAuditPublisher(publisher),
		notify.WithResultRecorder(invitationMetrics),
		notify.WithSendTimeout(cfg.Email.SendTimeout),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	authSvc, err := authservice.New(users, jwtService, password.NewHasher(cfg.Auth.BcryptCost),
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(publisher),
		authservice.WithTokenTTL(cfg.Auth.AccessTokenTTL),
	)
	if err != nil {
		return err
	}
	familySvc, err := familyservice.New(stores.Families, users,
		familyservice.WithLogger(log),
		familyservice.WithAuditPublisher(publisher),
		familyservice.WithMetrics(familymetrics.New(registry)),
	)
	if err != nil {
		return err
	}
	invitationSvc, err := invitationservice.New(stores, txRunner, users, token.NewGenerator(token.WithTTL(cfg.Invitation.TTL)),
		invitationservice.WithLogger(log),
		invitationservice.WithAuditPublisher(publisher),
		invitationservice.WithMetrics(invitationMetrics),
		invitationservice.WithNotifier(dispatcher),
		invitationservice.WithAcceptBaseURL(cfg.Invitation.BaseURL),
	)
	if err != nil {
		return err
	}
	orchestrator, err := onboarding.New(authSvc, invitationSvc,
		onboarding.WithLogger(log),
		onboarding.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}

	validator := jwttoken.NewValidator(jwtService)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:   log,
		Metrics:  metrics.New(registry),
		Registry: registry,
		Checks:   checks,
	},
		authhandler.New(authSvc, validator, log),
		familyhandler.New(familySvc, validator, log),
		invitationhandler.New(invitationSvc, orchestrator, validator, log),
	)

	srv := httpserver.New(cfg.Server, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting familyhub", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warn("pending invitation emails abandoned", "error", err)
	}
	log.Info("server stopped")
	return nil
}

// buildAuditSink publishes to Kafka when brokers are configured and to the
// structured log otherwise.
func buildAuditSink(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (auditSink, error) {
	if len(cfg.Brokers) == 0 {
		return audit.NewLogPublisher(log), nil
	}
	client, err := audit.NewKafkaClient(cfg.Brokers, cfg.ClientID)
	if err != nil {
		return nil, err
	}
	if cfg.EnsureTopicOnBoot {
		if err := audit.EnsureTopic(ctx, client, cfg.AuditTopic, cfg.TopicPartitions, cfg.TopicReplication); err != nil {
			client.Close()
			return nil, err
		}
	}
	log.Info("publishing audit events to kafka", "topic", cfg.AuditTopic)
	return audit.NewKafkaPublisher(client, cfg.AuditTopic, log), nil
}
