package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	apphandler "hsaonboard/internal/application/handler"
	appservice "hsaonboard/internal/application/service"
	apppg "hsaonboard/internal/application/store/postgres"
	assistantcache "hsaonboard/internal/assistant/cache"
	assistanthandler "hsaonboard/internal/assistant/handler"
	assistantmetrics "hsaonboard/internal/assistant/metrics"
	"hsaonboard/internal/assistant/rag"
	assistantservice "hsaonboard/internal/assistant/service"
	assistantpg "hsaonboard/internal/assistant/store/postgres"
	"hsaonboard/internal/decision"
	decisionadapters "hsaonboard/internal/decision/adapters"
	decisionhandler "hsaonboard/internal/decision/handler"
	decisionmetrics "hsaonboard/internal/decision/metrics"
	decisionpg "hsaonboard/internal/decision/store/postgres"
	docadapters "hsaonboard/internal/document/adapters"
	dochandler "hsaonboard/internal/document/handler"
	"hsaonboard/internal/document/ocr"
	docservice "hsaonboard/internal/document/service"
	docpg "hsaonboard/internal/document/store/postgres"
	"hsaonboard/internal/platform/auth"
	"hsaonboard/internal/platform/config"
	"hsaonboard/internal/platform/httpserver"
	"hsaonboard/internal/platform/logger"
	"hsaonboard/internal/platform/postgres"
	"hsaonboard/internal/platform/ratelimit"
	"hsaonboard/internal/platform/redis"
	httptransport "hsaonboard/internal/transport/http"
	"hsaonboard/pkg/platform/audit/publisher"
	"hsaonboard/pkg/platform/audit/relay"
	auditoutbox "hsaonboard/pkg/platform/audit/store/postgres"
)

const auditConsumerGroup = "hsa-audit-materializer"

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal module packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// The audit outbox rides database/sql so outbox writes can share a
	// transaction with the event row.
	auditDB, err := sql.Open("postgres", cfg.Postgres.URL)
	if err != nil {
		log.Error("audit store connect failed", "error", err)
		os.Exit(1)
	}
	defer auditDB.Close()
	auditStore := auditoutbox.New(auditDB)
	auditPub := publisher.New(auditStore,
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics()),
	)

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Hosted extraction and RAG collaborators fall back to canned responses
	// when no API key is configured, keeping local development offline.
	var extractor ocr.Extractor = &ocr.MockExtractor{}
	var ragClient rag.Client = &rag.MockClient{}
	if cfg.OpenAI.APIKey != "" {
		extractor = ocr.NewOpenAIExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.VisionModel, cfg.OpenAI.Timeout)
		ragClient = rag.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.AnswerModel, cfg.OpenAI.VectorStoreID, cfg.OpenAI.Timeout)
	}

	apps := appservice.New(apppg.New(pool), auditPub, log)
	docs := docservice.New(docpg.New(pool), extractor, docadapters.NewApplicationChecker(apps), auditPub, log)

	engine := decision.NewEngine(decision.NewMatcher(cfg.Decision.NameDistancePer10))
	decisions := decision.NewService(
		engine,
		decisionadapters.NewApplicationAdapter(apps),
		decisionadapters.NewDocumentAdapter(docs),
		decisionpg.New(pool),
		auditPub,
		decisionmetrics.New(),
		log,
	)

	var answerCache assistantcache.AnswerCache
	if rdb != nil {
		answerCache = assistantcache.NewRedisCache(rdb, assistantcache.DefaultTTL, log)
	}
	assistant := assistantservice.New(ragClient, answerCache, assistantpg.New(pool), auditPub, assistantmetrics.New(), log)

	issuer := auth.NewIssuer(cfg.Server.ReviewerSigningKey, cfg.Server.ReviewerSecretHash)

	var tokenHandler http.HandlerFunc
	if cfg.Server.ReviewerSecretHash != "" {
		tokenHandler = httptransport.TokenHandler(issuer, auditPub, log)
	} else {
		log.Warn("REVIEWER_SECRET_HASH not set, reviewer login disabled")
	}

	health := map[string]httptransport.HealthChecker{
		"postgres": poolHealth{pool: pool},
		"redis":    nil,
	}
	if rdb != nil {
		health["redis"] = rdb
	}

	var limitRequests func(http.Handler) http.Handler
	if !cfg.RateLimit.Disabled {
		var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		if rdb != nil {
			limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
		limitRequests = ratelimit.Middleware(limiter, log)
	}

	router := httptransport.NewRouter(httptransport.Options{
		Modules: []httptransport.Registrar{
			apphandler.New(apps, log),
			dochandler.New(docs, log),
			decisionhandler.New(decisions, auditStore, issuer, log),
			assistanthandler.New(assistant, log),
		},
		TokenHandler: tokenHandler,
		RateLimit:    limitRequests,
		Health:       health,
		Logger:       log,
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	group, workerCtx := errgroup.WithContext(workerCtx)

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kgo.NewClient(kgo.SeedBrokers(cfg.Kafka.Brokers...))
		if err != nil {
			log.Error("kafka producer setup failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		if err := relay.EnsureTopic(ctx, producer, cfg.Kafka.AuditTopic); err != nil {
			log.Error("audit topic setup failed", "error", err)
			os.Exit(1)
		}

		consumerClient, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.Kafka.Brokers...),
			kgo.ConsumerGroup(auditConsumerGroup),
			kgo.ConsumeTopics(cfg.Kafka.AuditTopic),
			kgo.DisableAutoCommit(),
		)
		if err != nil {
			log.Error("kafka consumer setup failed", "error", err)
			os.Exit(1)
		}
		defer consumerClient.Close()

		outboxRelay := relay.New(auditStore, producer, cfg.Kafka.AuditTopic, log)
		consumer := relay.NewConsumer(consumerClient, auditStore, log)
		group.Go(func() error { return outboxRelay.Run(workerCtx) })
		group.Go(func() error { return consumer.Run(workerCtx) })
	} else {
		log.Warn("KAFKA_BROKERS not set, audit relay disabled")
	}

	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting hsa onboarding server", "addr", cfg.Server.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	stopWorkers()
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("background worker exited", "error", err)
	}
}

// poolHealth adapts the pgx pool to the router's health check contract.
type poolHealth struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p poolHealth) Health(ctx context.Context) error { return p.pool.Ping(ctx) }
