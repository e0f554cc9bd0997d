package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/internal/matching"
	"go-talentmatch-backend/pkg/apperror"
	"go-talentmatch-backend/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// errSkipped marks a batch item that is left out of the summary entirely.
var errSkipped = errors.New("skipped")

// openStatuses are the statuses a rescore may still touch.
var openStatuses = []domain.MatchStatus{domain.MatchStatusPending, domain.MatchStatusInterviewScheduled}

// MatchConfig tunes the matching engine.
type MatchConfig struct {
	PageSize            int
	ShortlistMinScore   int
	EvaluateConcurrency int
}

type matchUsecase struct {
	matches    domain.MatchRepository
	candidates domain.CandidateRepository
	jobs       domain.JobRepository
	scorer     *matching.Scorer
	cfg        MatchConfig
}

func NewMatchUsecase(
	matches domain.MatchRepository,
	candidates domain.CandidateRepository,
	jobs domain.JobRepository,
	scorer *matching.Scorer,
	cfg MatchConfig,
) domain.MatchUsecase {
	if cfg.PageSize < 1 {
		cfg.PageSize = 100
	}
	if cfg.EvaluateConcurrency < 1 {
		cfg.EvaluateConcurrency = 1
	}
	if cfg.ShortlistMinScore <= 0 {
		cfg.ShortlistMinScore = 70
	}
	return &matchUsecase{
		matches:    matches,
		candidates: candidates,
		jobs:       jobs,
		scorer:     scorer,
		cfg:        cfg,
	}
}

func (u *matchUsecase) getCandidate(ctx context.Context, op string, id int64) (*domain.CandidateProfile, error) {
	c, err := u.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(op, err, fmt.Sprintf("Candidate %d not found", id))
	}
	return c, nil
}

// evaluate scores one pair and upserts the result.
func (u *matchUsecase) evaluate(ctx context.Context, candidate *domain.CandidateProfile, job *domain.Job) (*domain.Match, bool, error) {
	res, err := u.scorer.Score(candidate.Skills, job.RequiredSkills)
	if err != nil {
		return nil, false, err
	}
	return u.matches.Upsert(ctx, candidate.ID, job.ID, res.Score, domain.MatchDetails{
		MatchedSkills: res.Matched,
		MissingSkills: res.Missing,
	})
}

func (u *matchUsecase) EvaluatePair(ctx context.Context, candidateID, jobID int64) (*domain.Match, error) {
	const op = "matchUsecase.EvaluatePair"

	job, _, err := authorizeJobOwner(ctx, op, u.jobs, jobID)
	if err != nil {
		return nil, err
	}
	candidate, err := u.getCandidate(ctx, op, candidateID)
	if err != nil {
		return nil, err
	}

	m, created, err := u.evaluate(ctx, candidate, job)
	switch {
	case errors.Is(err, domain.ErrMatchTerminal):
		return nil, apperror.Conflict(fmt.Sprintf("Match for candidate %d and job %d is closed and cannot be rescored", candidateID, jobID)).WithOp(op).Wrap(err)
	case errors.Is(err, matching.ErrNoRequiredSkills), isInvalidSkill(err):
		return nil, scoringError(op, err, jobID)
	case err != nil:
		return nil, repoError(op, err, "Match not found")
	}

	logger.Log.Info("Match evaluated",
		"match_id", m.ID, "candidate_id", candidateID, "job_id", jobID,
		"score", m.Score, "created", created)
	return m, nil
}

func (u *matchUsecase) EvaluateJob(ctx context.Context, jobID int64) (*domain.EvaluationSummary, error) {
	const op = "matchUsecase.EvaluateJob"

	job, _, err := authorizeJobOwner(ctx, op, u.jobs, jobID)
	if err != nil {
		return nil, err
	}
	if err := u.checkRequired(op, job); err != nil {
		return nil, err
	}

	pages := func(ctx context.Context, offset int) ([]*domain.CandidateProfile, error) {
		profiles, err := u.candidates.Fetch(ctx, u.cfg.PageSize, offset)
		if err != nil {
			return nil, err
		}
		out := make([]*domain.CandidateProfile, len(profiles))
		for i := range profiles {
			out[i] = &profiles[i]
		}
		return out, nil
	}
	summary, err := fanOut(ctx, u.cfg, pages, func(ctx context.Context, c *domain.CandidateProfile) (*domain.Match, bool, error) {
		return u.evaluate(ctx, c, job)
	})
	if err != nil {
		return nil, repoError(op, err, fmt.Sprintf("Job %d not found", jobID))
	}

	logger.Log.Info("Job evaluated against candidates",
		"job_id", jobID, "evaluated", summary.Evaluated, "created", summary.Created,
		"updated", summary.Updated, "skipped_terminal", summary.SkippedTerminal)
	return summary, nil
}

func (u *matchUsecase) EvaluateCandidate(ctx context.Context, candidateID int64) (*domain.EvaluationSummary, error) {
	const op = "matchUsecase.EvaluateCandidate"

	actor, err := requireActor(ctx, op)
	if err != nil {
		return nil, err
	}
	if !actor.IsRecruiter() {
		return nil, apperror.Forbidden("Only recruiters can evaluate candidates").WithOp(op)
	}
	candidate, err := u.getCandidate(ctx, op, candidateID)
	if err != nil {
		return nil, err
	}
	if _, err := u.scorer.Normalizer().NormalizeSet(candidate.Skills); err != nil {
		return nil, scoringError(op, err, 0)
	}

	pages := func(ctx context.Context, offset int) ([]*domain.Job, error) {
		jobs, _, err := u.jobs.Fetch(ctx, u.cfg.PageSize, offset)
		if err != nil {
			return nil, err
		}
		out := make([]*domain.Job, len(jobs))
		for i := range jobs {
			out[i] = &jobs[i]
		}
		return out, nil
	}
	// Recruiters only score the candidate against their own postings.
	summary, err := fanOut(ctx, u.cfg, pages, func(ctx context.Context, j *domain.Job) (*domain.Match, bool, error) {
		if j.OwnerID != actor.UserID && !actor.IsAdmin() {
			return nil, false, errSkipped
		}
		return u.evaluate(ctx, candidate, j)
	})
	if err != nil {
		return nil, repoError(op, err, fmt.Sprintf("Candidate %d not found", candidateID))
	}

	logger.Log.Info("Candidate evaluated against jobs",
		"candidate_id", candidateID, "evaluated", summary.Evaluated, "created", summary.Created,
		"updated", summary.Updated, "skipped_terminal", summary.SkippedTerminal)
	return summary, nil
}

func (u *matchUsecase) checkRequired(op string, job *domain.Job) error {
	required, err := u.scorer.Normalizer().NormalizeSet(job.RequiredSkills)
	if err != nil {
		return scoringError(op, err, job.ID)
	}
	if len(required) == 0 {
		return scoringError(op, matching.ErrNoRequiredSkills, job.ID)
	}
	return nil
}

// fanOut pages through counterparts and evaluates each one with bounded concurrency.
// Terminal matches and counterparts with unscorable skills are skipped, not fatal.
func fanOut[T any](
	ctx context.Context,
	cfg MatchConfig,
	page func(ctx context.Context, offset int) ([]T, error),
	eval func(ctx context.Context, item T) (*domain.Match, bool, error),
) (*domain.EvaluationSummary, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.EvaluateConcurrency)

	var mu sync.Mutex
	summary := &domain.EvaluationSummary{}

	for offset := 0; ; offset += cfg.PageSize {
		items, err := page(gctx, offset)
		if err != nil {
			if werr := g.Wait(); werr != nil {
				return nil, werr
			}
			return nil, err
		}
		for _, item := range items {
			g.Go(func() error {
				_, created, err := eval(gctx, item)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case errors.Is(err, errSkipped):
					return nil
				case errors.Is(err, domain.ErrMatchTerminal):
					summary.SkippedTerminal++
					return nil
				case errors.Is(err, matching.ErrNoRequiredSkills), isInvalidSkill(err):
					summary.SkippedInvalid++
					return nil
				case err != nil:
					return err
				}
				summary.Evaluated++
				if created {
					summary.Created++
				} else {
					summary.Updated++
				}
				return nil
			})
		}
		if len(items) < cfg.PageSize {
			break
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

func isInvalidSkill(err error) bool {
	var invalid *matching.InvalidSkillError
	return errors.As(err, &invalid)
}

// GetMatch is open to admins, the owner of the job and the matched candidate.
func (u *matchUsecase) GetMatch(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	const op = "matchUsecase.GetMatch"

	actor, err := requireActor(ctx, op)
	if err != nil {
		return nil, err
	}
	m, err := u.matches.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(op, err, fmt.Sprintf("Match %s not found", id))
	}
	if actor.IsAdmin() {
		return m, nil
	}

	job, err := u.jobs.GetByID(ctx, m.JobID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, repoError(op, err, fmt.Sprintf("Job %d not found", m.JobID))
	}
	if err == nil && job.OwnerID == actor.UserID {
		return m, nil
	}
	candidate, err := u.candidates.GetByID(ctx, m.CandidateID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, repoError(op, err, fmt.Sprintf("Candidate %d not found", m.CandidateID))
	}
	if err == nil && ownsProfile(actor, candidate) {
		return m, nil
	}
	return nil, apperror.Forbidden(fmt.Sprintf("You cannot view match %s", id)).WithOp(op)
}

func checkFilter(op string, filter domain.MatchFilter) error {
	for _, s := range filter.Statuses {
		if !s.Valid() {
			return apperror.Validation(fmt.Sprintf("Unknown match status %q", s)).WithOp(op)
		}
	}
	if filter.MinScore < 0 || filter.MinScore > 100 {
		return apperror.Validation("min_score must be between 0 and 100").WithOp(op)
	}
	return nil
}

func (u *matchUsecase) ListByJob(ctx context.Context, jobID int64, filter domain.MatchFilter) (iter.Seq2[domain.Match, error], error) {
	const op = "matchUsecase.ListByJob"
	if err := checkFilter(op, filter); err != nil {
		return nil, err
	}
	if _, _, err := authorizeJobOwner(ctx, op, u.jobs, jobID); err != nil {
		return nil, err
	}
	return u.paginate(ctx, filter, func(ctx context.Context, f domain.MatchFilter, limit int) ([]domain.Match, error) {
		return u.matches.ListByJob(ctx, jobID, f, limit)
	}), nil
}

func (u *matchUsecase) ListByCandidate(ctx context.Context, candidateID int64, filter domain.MatchFilter) (iter.Seq2[domain.Match, error], error) {
	const op = "matchUsecase.ListByCandidate"
	if err := checkFilter(op, filter); err != nil {
		return nil, err
	}
	actor, err := requireActor(ctx, op)
	if err != nil {
		return nil, err
	}
	candidate, err := u.getCandidate(ctx, op, candidateID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !ownsProfile(actor, candidate) {
		return nil, apperror.Forbidden("You can only list your own matches").WithOp(op)
	}
	return u.paginate(ctx, filter, func(ctx context.Context, f domain.MatchFilter, limit int) ([]domain.Match, error) {
		return u.matches.ListByCandidate(ctx, candidateID, f, limit)
	}), nil
}

// paginate walks keyset pages lazily. Each range starts again from filter.After.
func (u *matchUsecase) paginate(
	ctx context.Context,
	filter domain.MatchFilter,
	fetch func(ctx context.Context, f domain.MatchFilter, limit int) ([]domain.Match, error),
) iter.Seq2[domain.Match, error] {
	pageSize := u.cfg.PageSize
	return func(yield func(domain.Match, error) bool) {
		f := filter
		for {
			page, err := fetch(ctx, f, pageSize)
			if err != nil {
				yield(domain.Match{}, repoError("matchUsecase.list", err, "Match not found"))
				return
			}
			for _, m := range page {
				if !yield(m, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			next := page[len(page)-1].Cursor()
			f.After = &next
		}
	}
}

func (u *matchUsecase) Shortlist(ctx context.Context, jobID int64, minScore *int) ([]domain.Match, error) {
	threshold := u.cfg.ShortlistMinScore
	if minScore != nil {
		threshold = *minScore
	}
	seq, err := u.ListByJob(ctx, jobID, domain.MatchFilter{
		Statuses: []domain.MatchStatus{
			domain.MatchStatusPending,
			domain.MatchStatusInterviewScheduled,
			domain.MatchStatusAccepted,
			domain.MatchStatusHired,
		},
		MinScore: threshold,
	})
	if err != nil {
		return nil, err
	}

	shortlist := []domain.Match{}
	for m, err := range seq {
		if err != nil {
			return nil, err
		}
		shortlist = append(shortlist, m)
	}
	return shortlist, nil
}

func (u *matchUsecase) Transition(ctx context.Context, id uuid.UUID, status domain.MatchStatus) (*domain.Match, error) {
	const op = "matchUsecase.Transition"

	if !status.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("Unknown match status %q", status)).WithOp(op)
	}

	current, err := u.matches.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(op, err, fmt.Sprintf("Match %s not found", id))
	}
	if _, _, err := authorizeJobOwner(ctx, op, u.jobs, current.JobID); err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, apperror.InvalidTransition(
			fmt.Sprintf("Match %s cannot move from %s to %s", id, current.Status, status),
		).WithOp(op)
	}

	updated, err := u.matches.UpdateStatus(ctx, id, current.Version, status)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, apperror.Conflict(fmt.Sprintf("Match %s was changed by another request, reload and retry", id)).WithOp(op).Wrap(err)
		}
		return nil, repoError(op, err, fmt.Sprintf("Match %s not found", id))
	}
	updated.CandidateName, updated.JobTitle = current.CandidateName, current.JobTitle

	logger.Log.Info("Match status changed",
		"match_id", id, "from", current.Status, "to", status, "version", updated.Version)
	return updated, nil
}

func (u *matchUsecase) RescoreJob(ctx context.Context, jobID int64) (*domain.EvaluationSummary, error) {
	const op = "matchUsecase.RescoreJob"

	job, _, err := authorizeJobOwner(ctx, op, u.jobs, jobID)
	if err != nil {
		return nil, err
	}
	if err := u.checkRequired(op, job); err != nil {
		return nil, err
	}

	// Rescoring reorders the keyset, so take a snapshot before writing.
	var open []domain.Match
	seq := u.paginate(ctx, domain.MatchFilter{Statuses: openStatuses}, func(ctx context.Context, f domain.MatchFilter, limit int) ([]domain.Match, error) {
		return u.matches.ListByJob(ctx, jobID, f, limit)
	})
	for m, err := range seq {
		if err != nil {
			return nil, err
		}
		open = append(open, m)
	}

	pages := func(_ context.Context, offset int) ([]domain.Match, error) {
		if offset >= len(open) {
			return nil, nil
		}
		return open[offset:min(offset+u.cfg.PageSize, len(open))], nil
	}
	summary, err := fanOut(ctx, u.cfg, pages, func(ctx context.Context, m domain.Match) (*domain.Match, bool, error) {
		candidate, err := u.candidates.GetByID(ctx, m.CandidateID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, errSkipped
		}
		if err != nil {
			return nil, false, err
		}
		return u.evaluate(ctx, candidate, job)
	})
	if err != nil {
		return nil, repoError(op, err, fmt.Sprintf("Job %d not found", jobID))
	}

	logger.Log.Info("Job matches rescored",
		"job_id", jobID, "updated", summary.Updated, "skipped_terminal", summary.SkippedTerminal)
	return summary, nil
}
