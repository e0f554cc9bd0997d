package usecase

import (
	"context"
	"time"

	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/cache"
	"go-talentmatch-backend/pkg/logger"
)

const statsCacheKey = "talentmatch:stats:v1"

type statsUsecase struct {
	jobs       domain.JobRepository
	candidates domain.CandidateRepository
	matches    domain.MatchRepository
	interviews domain.InterviewRepository
	cache      cache.Cache
	ttl        time.Duration
}

func NewStatsUsecase(
	jobs domain.JobRepository,
	candidates domain.CandidateRepository,
	matches domain.MatchRepository,
	interviews domain.InterviewRepository,
	c cache.Cache,
	ttl time.Duration,
) domain.StatsUsecase {
	if c == nil {
		c = cache.Noop{}
	}
	return &statsUsecase{
		jobs:       jobs,
		candidates: candidates,
		matches:    matches,
		interviews: interviews,
		cache:      c,
		ttl:        ttl,
	}
}

func (u *statsUsecase) GetStats(ctx context.Context) (*domain.Stats, error) {
	const op = "statsUsecase.GetStats"

	var cached domain.Stats
	if hit, err := u.cache.GetJSON(ctx, statsCacheKey, &cached); err != nil {
		logger.Log.Warn("Stats cache read failed", "error", err)
	} else if hit {
		return &cached, nil
	}

	stats := &domain.Stats{GeneratedAt: time.Now().UTC()}
	var err error
	if stats.TotalJobs, err = u.jobs.Count(ctx); err != nil {
		return nil, repoError(op, err, "Stats unavailable")
	}
	if stats.TotalCandidates, err = u.candidates.Count(ctx); err != nil {
		return nil, repoError(op, err, "Stats unavailable")
	}
	if stats.TotalInterviews, err = u.interviews.Count(ctx); err != nil {
		return nil, repoError(op, err, "Stats unavailable")
	}
	matchStats, err := u.matches.Stats(ctx)
	if err != nil {
		return nil, repoError(op, err, "Stats unavailable")
	}
	stats.TotalMatches = matchStats.Total
	stats.AverageMatchScore = matchStats.AverageScore
	stats.MatchesByStatus = make(map[domain.MatchStatus]int64, len(domain.AllMatchStatuses))
	for _, s := range domain.AllMatchStatuses {
		stats.MatchesByStatus[s] = matchStats.ByStatus[s]
	}

	if err := u.cache.SetJSON(ctx, statsCacheKey, stats, u.ttl); err != nil {
		logger.Log.Warn("Stats cache write failed", "error", err)
	}
	return stats, nil
}
