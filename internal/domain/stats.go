package domain

import (
	"context"
	"time"
)

// Stats backs the admin dashboard.
type Stats struct {
	TotalJobs         int64                 `json:"total_jobs"`
	TotalCandidates   int64                 `json:"total_candidates"`
	TotalMatches      int64                 `json:"total_matches"`
	TotalInterviews   int64                 `json:"total_interviews"`
	AverageMatchScore float64               `json:"avg_match_score"`
	MatchesByStatus   map[MatchStatus]int64 `json:"matches_by_status"`
	GeneratedAt       time.Time             `json:"generated_at"`
}

type StatsUsecase interface {
	GetStats(ctx context.Context) (*Stats, error)
}
