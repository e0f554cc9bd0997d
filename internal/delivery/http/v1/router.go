package v1

import (
	"time"

	"go-talentmatch-backend/config"
	"go-talentmatch-backend/internal/delivery/http/middleware"
	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/internal/usecase"
	"go-talentmatch-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	JobUC       domain.JobUsecase
	CandidateUC domain.CandidateUsecase
	MatchUC     domain.MatchUsecase
	InterviewUC domain.InterviewUsecase
	StatsUC     domain.StatsUsecase
	HealthUC    usecase.HealthUsecase
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, gin.Mode() == gin.ReleaseMode)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimitMiddleware(
		middleware.DefaultRateLimitConfig(cfg.RateLimitGlobalThreshold, window, cfg.RateLimitFailClosed),
	))

	v1.GET("/health", healthCheck(deps.HealthUC))
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var keys *auth.KeySet
	if cfg.JWKSURL != "" {
		keys = auth.NewKeySet(cfg.JWKSURL, nil)
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, keys))
	{
		uploadLimit := middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(cfg.RateLimitUploadThreshold, window))
		NewCandidateHandler(protected, deps.CandidateUC, deps.MatchUC, cfg.MaxResumeBytes, cfg.MatchPageSize, uploadLimit)
		NewJobHandler(protected, deps.JobUC)
		NewAdminHandler(protected, deps.StatsUC)

		recruiters := protected.Group("", middleware.RequireRecruiter())
		evaluateLimit := middleware.RateLimitMiddleware(middleware.EvaluateRateLimitConfig(cfg.RateLimitEvaluateThreshold, window))
		NewMatchHandler(recruiters, deps.MatchUC, cfg.MatchPageSize, evaluateLimit)
		NewInterviewHandler(recruiters, deps.InterviewUC)
	}

	return r
}
