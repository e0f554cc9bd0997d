package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-talentmatch-backend/config"
	_ "go-talentmatch-backend/docs" // Important for Swagger
	v1 "go-talentmatch-backend/internal/delivery/http/v1"
	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/internal/matching"
	"go-talentmatch-backend/internal/repository/memory"
	"go-talentmatch-backend/internal/repository/postgres"
	"go-talentmatch-backend/internal/usecase"
	"go-talentmatch-backend/pkg/cache"
	"go-talentmatch-backend/pkg/database"
	"go-talentmatch-backend/pkg/email"
	"go-talentmatch-backend/pkg/logger"
	"go-talentmatch-backend/pkg/redis"
	"go-talentmatch-backend/pkg/storage"
	"go-talentmatch-backend/pkg/validation"
)

// @title           TalentMatch Backend API
// @version         1.0
// @description     Candidate to job matching engine using Clean Architecture.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting talentmatch backend", "port", cfg.Port, "match_store", cfg.MatchStore)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.DBAutoMigrate {
		if err := database.EnsureSchema(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to apply schema", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Redis (optional)
	var statsCache cache.Cache = cache.Noop{}
	var redisPinger usecase.Pinger
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, continuing without cache", "error", err)
	}
	if rdb := redis.Client(); rdb != nil {
		statsCache = cache.NewRedisCache(rdb)
		redisPinger = usecase.PingFunc(redis.HealthCheck)
		defer redis.Close()
	}

	// 5. Setup Repositories
	jobRepo := postgres.NewJobRepository(dbPool)
	candidateRepo := postgres.NewCandidateRepository(dbPool)

	var matchRepo domain.MatchRepository
	var interviewRepo domain.InterviewRepository
	if cfg.MatchStore == config.MatchStoreMemory {
		interviews := memory.NewInterviewStore()
		matchRepo = memory.NewMatchStore(memory.WithInterviews(interviews))
		interviewRepo = interviews
		logger.Log.Warn("Using in-memory match store, matches are lost on restart")
	} else {
		matchRepo = postgres.NewMatchRepository(dbPool)
		interviewRepo = postgres.NewInterviewRepository(dbPool)
	}

	// 6. Setup Résumé Storage (optional)
	var resumeStorage domain.FileStorage
	var storagePinger usecase.Pinger
	storageCfg := storage.Config{
		Provider:        storage.Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
	}
	if storageCfg.Configured() {
		s3Storage, err := storage.NewS3Storage(ctx, storageCfg)
		if err != nil {
			logger.Log.Error("Failed to init résumé storage", "error", err)
			os.Exit(1)
		}
		resumeStorage, storagePinger = s3Storage, s3Storage
	} else {
		logger.Log.Warn("Résumé storage not configured - uploads will be unavailable")
	}

	// 7. Setup Email Service
	var notifier domain.InterviewNotifier
	emailService := email.NewEmailService(cfg)
	if emailService.IsConfigured() {
		notifier = emailService
	} else {
		logger.Log.Warn("Email service not fully configured - interview invitations will not be sent")
	}

	// 8. Setup Matching Engine
	synonyms, err := matching.ParseSynonyms(cfg.SkillSynonyms)
	if err != nil {
		logger.Log.Error("Invalid SKILL_SYNONYMS", "error", err)
		os.Exit(1)
	}
	normalizer := matching.NewNormalizer(synonyms)
	scorer := matching.NewScorer(normalizer)

	// 9. Setup UseCases
	validate := validation.New()
	matchUC := usecase.NewMatchUsecase(matchRepo, candidateRepo, jobRepo, scorer, usecase.MatchConfig{
		PageSize:            cfg.MatchPageSize,
		ShortlistMinScore:   cfg.ShortlistMinScore,
		EvaluateConcurrency: cfg.EvaluateConcurrency,
	})
	jobUC := usecase.NewJobUsecase(jobRepo, matchRepo, matchUC, normalizer, validate)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, matchRepo, resumeStorage, normalizer, validate, cfg.MaxResumeBytes)
	interviewUC := usecase.NewInterviewUsecase(interviewRepo, matchUC, candidateRepo, jobRepo, notifier, validate)
	statsUC := usecase.NewStatsUsecase(jobRepo, candidateRepo, matchRepo, interviewRepo, statsCache,
		time.Duration(cfg.StatsCacheTTLSeconds)*time.Second)
	healthUC := usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"database": dbPool,
		"redis":    redisPinger,
		"storage":  storagePinger,
	})

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		JobUC:       jobUC,
		CandidateUC: candidateUC,
		MatchUC:     matchUC,
		InterviewUC: interviewUC,
		StatsUC:     statsUC,
		HealthUC:    healthUC,
		Config:      cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
