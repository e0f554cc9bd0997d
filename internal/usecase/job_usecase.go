package usecase

import (
	"context"
	"fmt"
	"slices"

	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/internal/matching"
	"go-talentmatch-backend/pkg/apperror"
	"go-talentmatch-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// JobRescorer refreshes stored matches after a job's required skills change.
type JobRescorer interface {
	RescoreJob(ctx context.Context, jobID int64) (*domain.EvaluationSummary, error)
}

type jobUsecase struct {
	jobRepo    domain.JobRepository
	matchRepo  domain.MatchRepository
	rescorer   JobRescorer
	normalizer *matching.Normalizer
	validate   *validator.Validate
}

// NewJobUsecase wires the job service. rescorer may be nil, in which case
// matches keep their old scores until the job is evaluated again.
func NewJobUsecase(
	jobRepo domain.JobRepository,
	matchRepo domain.MatchRepository,
	rescorer JobRescorer,
	normalizer *matching.Normalizer,
	validate *validator.Validate,
) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:    jobRepo,
		matchRepo:  matchRepo,
		rescorer:   rescorer,
		normalizer: normalizer,
		validate:   validate,
	}
}

// checkJob validates the posting and rejects a skill list that normalizes to nothing.
func (u *jobUsecase) checkJob(op string, job *domain.Job) error {
	if err := u.validate.Struct(job); err != nil {
		return validationError(op, err)
	}
	required, err := u.normalizer.NormalizeSet(job.RequiredSkills)
	if err != nil {
		return scoringError(op, err, job.ID)
	}
	if len(required) == 0 {
		return scoringError(op, matching.ErrNoRequiredSkills, job.ID)
	}
	return nil
}

func (u *jobUsecase) CreateJob(ctx context.Context, job *domain.Job) error {
	const op = "jobUsecase.CreateJob"

	actor, err := requireActor(ctx, op)
	if err != nil {
		return err
	}
	if !actor.IsRecruiter() {
		return apperror.Forbidden("Only recruiters can post jobs").WithOp(op)
	}
	job.OwnerID = actor.UserID

	if err := u.checkJob(op, job); err != nil {
		return err
	}
	if err := u.jobRepo.Create(ctx, job); err != nil {
		return repoError(op, err, "Job not found")
	}

	logger.Log.Info("Job created", "job_id", job.ID, "owner_id", job.OwnerID)
	return nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("jobUsecase.GetJob", err, fmt.Sprintf("Job %d not found", id))
	}
	return job, nil
}

func (u *jobUsecase) ListJobs(ctx context.Context, page, pageSize int) (*domain.PaginatedResult[domain.Job], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	jobs, total, err := u.jobRepo.Fetch(ctx, pageSize, offset)
	if err != nil {
		return nil, repoError("jobUsecase.ListJobs", err, "Job not found")
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &domain.PaginatedResult[domain.Job]{
		Data:       jobs,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (u *jobUsecase) UpdateJob(ctx context.Context, job *domain.Job) error {
	const op = "jobUsecase.UpdateJob"

	existing, _, err := authorizeJobOwner(ctx, op, u.jobRepo, job.ID)
	if err != nil {
		return err
	}
	job.OwnerID = existing.OwnerID
	job.CreatedAt = existing.CreatedAt

	if err := u.checkJob(op, job); err != nil {
		return err
	}
	if err := u.jobRepo.Update(ctx, job); err != nil {
		return repoError(op, err, fmt.Sprintf("Job %d not found", job.ID))
	}

	if u.rescorer != nil && !slices.Equal(existing.RequiredSkills, job.RequiredSkills) {
		summary, err := u.rescorer.RescoreJob(ctx, job.ID)
		if err != nil {
			// The posting is saved; EvaluateJob refreshes the scores later.
			logger.Log.Warn("Rescoring matches failed", "job_id", job.ID, "error", err)
			return nil
		}
		logger.Log.Info("Matches rescored after skill change",
			"job_id", job.ID, "updated", summary.Updated, "skipped_terminal", summary.SkippedTerminal)
	}
	return nil
}

// DeleteJob removes the posting together with its matches.
func (u *jobUsecase) DeleteJob(ctx context.Context, id int64) error {
	const op = "jobUsecase.DeleteJob"

	if _, _, err := authorizeJobOwner(ctx, op, u.jobRepo, id); err != nil {
		return err
	}
	if err := u.matchRepo.DeleteByJob(ctx, id); err != nil {
		return repoError(op, err, fmt.Sprintf("Job %d not found", id))
	}
	if err := u.jobRepo.Delete(ctx, id); err != nil {
		return repoError(op, err, fmt.Sprintf("Job %d not found", id))
	}

	logger.Log.Info("Job deleted", "job_id", id)
	return nil
}
