package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/castlehq/checkmate/config"
	"github.com/castlehq/checkmate/internal/api/handlers"
	"github.com/castlehq/checkmate/internal/api/middleware"
	"github.com/castlehq/checkmate/internal/api/routes"
	"github.com/castlehq/checkmate/internal/logger"
	"github.com/castlehq/checkmate/internal/parser"
	"github.com/castlehq/checkmate/internal/providers/google"
	"github.com/castlehq/checkmate/internal/providers/llm"
	pgrepo "github.com/castlehq/checkmate/internal/repositories/postgres"
	"github.com/castlehq/checkmate/internal/services"
	"github.com/castlehq/checkmate/internal/storage"
	"github.com/castlehq/checkmate/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	ctx := context.Background()

	db, err := config.NewPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	// Repositories
	userRepo := pgrepo.NewUserRepo(db)
	resumeRepo := pgrepo.NewResumeRepo(db)
	interviewRepo := pgrepo.NewInterviewRepo(db)
	messageRepo := pgrepo.NewMessageRepo(db)

	// File storage
	var store storage.Store
	if cfg.GCSBucket != "" {
		gcsStore, err := storage.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer gcsStore.Close()
		store = gcsStore
	} else {
		localStore, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("local storage init error: %v", err)
		}
		store = localStore
	}

	// Completion provider
	var provider llm.Provider
	switch cfg.LLMProvider {
	case "vertex":
		provider, err = llm.NewVertexGemini(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.VertexModel)
		if err != nil {
			log.Fatalf("vertex init error: %v", err)
		}
	default:
		provider = llm.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	defer provider.Close()

	// Parse queue + worker pool; without Redis the queue is a no-op and
	// resumes stay unparsed.
	var queue services.ParseQueue = workers.NoopQueue{}
	if cfg.RedisAddr != "" {
		rdb, err := config.NewRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatalf("Redis init error: %v", err)
		}
		l.Info("Redis connected")
		queue = workers.NewStreamQueue(rdb, workers.DefaultStream)

		resumeSvcForWorker := services.NewResumeService(resumeRepo, store, nil, l)
		pool := &workers.ParseWorkerPool{
			Redis:      rdb,
			Resumes:    resumeRepo,
			Apply:      resumeSvcForWorker,
			Files:      store,
			Parser:     parser.New(),
			NumWorkers: cfg.ParseWorkers,
			Logger:     l,
		}
		if err := pool.Start(ctx); err != nil {
			log.Fatalf("parse worker init error: %v", err)
		}
	} else {
		l.Warn("REDIS_ADDR not set; resume parsing is disabled")
	}

	// Services
	var verifier google.Verifier
	if cfg.GoogleClientID != "" {
		verifier = google.NewTokeninfoVerifier(cfg.GoogleClientID)
	}
	authSvc := services.NewAuthService(userRepo, verifier, cfg.JWTSecret, cfg.TokenTTL)
	resumeSvc := services.NewResumeService(resumeRepo, store, queue, l)
	interviewSvc := services.NewInterviewService(interviewRepo, resumeRepo)
	relaySvc := services.NewRelayService(interviewRepo, messageRepo, resumeRepo, provider, cfg.LLMTimeout, l)
	exportSvc := services.NewExportService(userRepo, resumeRepo, interviewRepo, messageRepo, cfg.ExportDir)

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret:    cfg.JWTSecret,
		Auth:         handlers.NewAuthHandler(authSvc),
		Resume:       handlers.NewResumeHandler(resumeSvc),
		Interview:    handlers.NewInterviewHandler(interviewSvc),
		Conversation: handlers.NewConversationHandler(relaySvc),
		Export:       handlers.NewExportHandler(exportSvc),
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
