package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	MatchStorePostgres = "postgres"
	MatchStoreMemory   = "memory"
)

type Config struct {
	Port          string
	DBUrl         string
	DBAutoMigrate bool
	JWTSecret     string
	JWKSURL       string
	FrontendURL   string
	LogLevel      string
	// Matching engine
	MatchStore          string // "postgres" or "memory"
	MatchPageSize       int
	ShortlistMinScore   int
	EvaluateConcurrency int
	SkillSynonyms       string // "alias:canonical,alias:canonical"
	// Redis Configuration
	RedisURL             string
	RedisPassword        string
	StatsCacheTTLSeconds int
	// Rate Limiting Configuration
	RateLimitWindowSeconds     int
	RateLimitGlobalThreshold   int
	RateLimitUploadThreshold   int
	RateLimitEvaluateThreshold int
	RateLimitFailClosed        bool
	// Résumé storage (S3 compatible)
	S3Provider        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	MaxResumeBytes    int64
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production relies on real env vars
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBUrl:         getEnv("DATABASE_URL", ""),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWKSURL:       getEnv("JWKS_URL", ""),
		FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		// Matching engine
		MatchStore:          strings.ToLower(getEnv("MATCH_STORE", MatchStorePostgres)),
		MatchPageSize:       getEnvInt("MATCH_PAGE_SIZE", 100),
		ShortlistMinScore:   getEnvInt("SHORTLIST_MIN_SCORE", 70),
		EvaluateConcurrency: getEnvInt("EVALUATE_CONCURRENCY", 8),
		SkillSynonyms:       getEnv("SKILL_SYNONYMS", ""),
		// Redis Configuration
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		StatsCacheTTLSeconds: getEnvInt("STATS_CACHE_TTL_SECONDS", 60),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:     getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold:   getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitUploadThreshold:   getEnvInt("RATE_LIMIT_UPLOAD_THRESHOLD", 10),
		RateLimitEvaluateThreshold: getEnvInt("RATE_LIMIT_EVALUATE_THRESHOLD", 5),
		RateLimitFailClosed:        getEnvBool("RATE_LIMIT_FAIL_CLOSED", false),
		// Résumé storage
		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("RESUME_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		MaxResumeBytes:    int64(getEnvInt("MAX_RESUME_BYTES", 5<<20)),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@talentmatch.local"),
	}

	if cfg.MatchStore != MatchStorePostgres && cfg.MatchStore != MatchStoreMemory {
		log.Printf("WARNING: unknown MATCH_STORE %q, falling back to %s", cfg.MatchStore, MatchStorePostgres)
		cfg.MatchStore = MatchStorePostgres
	}
	if cfg.MatchPageSize < 1 {
		cfg.MatchPageSize = 100
	}
	if cfg.EvaluateConcurrency < 1 {
		cfg.EvaluateConcurrency = 1
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		log.Println("WARNING: neither JWT_SECRET nor JWKS_URL is set. All protected routes will reject requests.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback and stats are not cached.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
