package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/yt-rag-engine/pkg/validator"

	"github.com/johnquangdev/yt-rag-engine/internal/adapter/handler"
	"github.com/johnquangdev/yt-rag-engine/internal/adapter/repository"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/cache"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/database"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/asr"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/downloader"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/embedding"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/llm"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/telegram"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/vectorstore"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/storage"
	"github.com/johnquangdev/yt-rag-engine/internal/usecase/retrieval"
	"github.com/johnquangdev/yt-rag-engine/internal/usecase/scheduler"
	"github.com/johnquangdev/yt-rag-engine/internal/usecase/sensors"
	"github.com/johnquangdev/yt-rag-engine/internal/usecase/workers"
	"github.com/johnquangdev/yt-rag-engine/pkg/config"
	"github.com/johnquangdev/yt-rag-engine/pkg/jwt"
)

// @title           YouTube RAG Engine API
// @version         1.0
// @description     Ingestion and retrieval API for the YouTube transcript RAG pipeline.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	log.Println("connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("running database migrations (development only)...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	}

	log.Println("connecting to redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	log.Println("opening artifact store and vector index...")
	artifactStore, err := storage.NewArtifactStore(cfg.Storage.DataRoot)
	if err != nil {
		log.Fatalf("Failed to open artifact store: %v", err)
	}

	var artifactMirror *storage.ArtifactMirror
	if cfg.Storage.MirrorEnabled {
		artifactMirror, err = storage.NewArtifactMirror(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to init artifact mirror: %v", err)
		}
	}

	vectorStore, err := vectorstore.Open(cfg.Storage.DataRoot + "/vectors")
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	defer vectorStore.Close()

	asrClient := asr.NewClient(&cfg.ASR)
	embeddingClient := embedding.NewClient(&cfg.Embedding)
	llmClient := llm.NewClient(&cfg.LLM)
	ytDownloader := downloader.NewDownloader("yt-dlp")

	log.Println("initializing repositories...")
	submissionRepo := repository.NewSubmissionRepository(db)
	artifactRepo := repository.NewAudioArtifactRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)
	chunkRepo := repository.NewChunkRepository(db)
	jobRepo := repository.NewPipelineJobRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	queryRepo := repository.NewQueryRepository(db)
	preferenceRepo := repository.NewUserPreferenceRepository(db)

	log.Println("initializing pipeline workers...")
	downloadWorker := workers.NewDownloadWorker(submissionRepo, artifactRepo, artifactStore, artifactMirror, ytDownloader, logger, "download-1")
	transcribeWorker := workers.NewTranscribeWorker(submissionRepo, artifactRepo, transcriptRepo, artifactStore, asrClient)
	chunkWorker := workers.NewChunkWorker(submissionRepo, transcriptRepo, chunkRepo, cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	embedWorker := workers.NewEmbedWorker(submissionRepo, chunkRepo, embeddingClient, vectorStore, cfg.Pipeline.EmbedBatchSize, cfg.Pipeline.EmbedConcurrency)

	sched := scheduler.New(
		&cfg.Pipeline,
		submissionRepo,
		transcriptRepo,
		jobRepo,
		asrClient,
		downloadWorker,
		transcribeWorker,
		chunkWorker,
		embedWorker,
		redisClient,
		logger,
	)
	if err := sched.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("initializing sensors...")
	telegramClient := telegram.NewClient(cfg.BotToken, cfg.AdminChat)
	alertNotifier := telegram.NewNotifier(telegramClient)

	sensorRegistry := sensors.NewRegistry(
		logger,
		sensors.NewURLSensor(submissionRepo, cfg.Pipeline.URLSensorInterval, cfg.Pipeline.GlobalTaskCeiling, logger),
		sensors.NewAudioFileSensor(submissionRepo, cfg.Pipeline.IngressDir, cfg.Pipeline.DedupWindow, cfg.Pipeline.AudioFileSensorInterval, logger),
		sensors.NewHealthSensor(submissionRepo, alertRepo, redisClient, cfg.Storage.DataRoot, &cfg.Pipeline, logger),
		sensors.NewCleanupSensor(submissionRepo, artifactRepo, artifactStore, cfg.Pipeline.CleanupRetention, cfg.Pipeline.CleanupSensorInterval, logger),
		sensors.NewAlertDispatchSensor(alertRepo, alertNotifier, cfg.Pipeline.AlertDispatchSensorInterval, logger),
	)
	sensorRegistry.Start(context.Background())

	log.Println("initializing retrieval engine...")
	hybridSearcher := retrieval.NewHybridSearcher(vectorStore, embeddingClient, chunkRepo, &cfg.Retrieval)
	reranker := retrieval.NewReranker()
	rewriter := retrieval.NewQueryRewriter(llmClient, cfg.Retrieval.RewriteCount)
	engine := retrieval.NewEngine(rewriter, hybridSearcher, reranker, llmClient, queryRepo, redisClient, &cfg.Retrieval)

	log.Println("initializing HTTP handlers...")
	submissionHandler := handler.NewSubmissionHandler(submissionRepo, cfg.Pipeline.HighWaterMark, logger)
	queryHandler := handler.NewQueryHandler(engine, feedbackRepo, preferenceRepo, logger)
	asrWebhookHandler := handler.NewASRWebhookHandler(asrClient, workers.NewWebhookHandler(submissionRepo, transcriptRepo), cfg.ASR.WebhookSecret, logger)
	statusHandler := handler.NewStatusHandler(submissionRepo, chunkRepo, artifactStore, sched, logger)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	router := handler.NewRouter(cfg, jwtManager, submissionHandler, queryHandler, asrWebhookHandler, statusHandler)
	router.Setup(e)

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("starting server on %s", addr)
		log.Printf("environment: %s", cfg.Server.Environment)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	sensorRegistry.Stop()
	if err := sched.Stop(); err != nil {
		log.Printf("scheduler stop error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server stopped gracefully")
}
