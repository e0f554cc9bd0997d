package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/apperror"
	"go-talentmatch-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type interviewUsecase struct {
	repo       domain.InterviewRepository
	matchUC    domain.MatchUsecase
	candidates domain.CandidateRepository
	jobs       domain.JobRepository
	notifier   domain.InterviewNotifier
	validate   *validator.Validate
	now        func() time.Time
}

func NewInterviewUsecase(
	repo domain.InterviewRepository,
	matchUC domain.MatchUsecase,
	candidates domain.CandidateRepository,
	jobs domain.JobRepository,
	notifier domain.InterviewNotifier,
	validate *validator.Validate,
) domain.InterviewUsecase {
	return &interviewUsecase{
		repo:       repo,
		matchUC:    matchUC,
		candidates: candidates,
		jobs:       jobs,
		notifier:   notifier,
		validate:   validate,
		now:        time.Now,
	}
}

// Schedule books an interview for a match. A pending match moves to
// interview_scheduled; closed matches cannot get new interviews. The row is
// written first and removed again if the match cannot be held open.
func (u *interviewUsecase) Schedule(ctx context.Context, matchID uuid.UUID, req domain.ScheduleInterviewRequest) (*domain.Interview, error) {
	const op = "interviewUsecase.Schedule"

	if err := u.validate.Struct(req); err != nil {
		return nil, validationError(op, err)
	}
	if !req.ScheduledTime.After(u.now()) {
		return nil, apperror.Validation("Interview must be scheduled in the future").WithOp(op)
	}

	m, err := u.manageableMatch(ctx, op, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status.IsTerminal() {
		return nil, closedMatch(op, m)
	}

	interview := &domain.Interview{
		ID:              uuid.New(),
		MatchID:         matchID,
		ScheduledTime:   req.ScheduledTime.UTC(),
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		Status:          domain.InterviewStatusScheduled,
	}
	if err := u.repo.Create(ctx, interview); err != nil {
		return nil, repoError(op, err, fmt.Sprintf("Match %s not found", matchID))
	}

	if m, err = u.holdScheduled(ctx, op, m); err != nil {
		u.discard(ctx, interview.ID)
		return nil, err
	}

	logger.Log.Info("Interview scheduled", "interview_id", interview.ID, "match_id", matchID, "at", interview.ScheduledTime)
	u.invite(ctx, m, *interview)
	return interview, nil
}

// manageableMatch loads a match the caller may book interviews for.
func (u *interviewUsecase) manageableMatch(ctx context.Context, op string, matchID uuid.UUID) (*domain.Match, error) {
	m, err := u.matchUC.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if _, _, err := authorizeJobOwner(ctx, op, u.jobs, m.JobID); err != nil {
		return nil, err
	}
	return m, nil
}

// holdScheduled makes sure the match sits at interview_scheduled after the
// booking. A concurrent close between the read and the insert is caught here.
func (u *interviewUsecase) holdScheduled(ctx context.Context, op string, m *domain.Match) (*domain.Match, error) {
	if m.Status == domain.MatchStatusPending {
		moved, err := u.matchUC.Transition(ctx, m.ID, domain.MatchStatusInterviewScheduled)
		if err == nil {
			return moved, nil
		}
		// Another booking may have moved it first; the re-read decides.
		if !errors.Is(err, apperror.ErrConflict) && !errors.Is(err, apperror.ErrInvalidTransition) {
			return nil, err
		}
	}

	current, err := u.matchUC.GetMatch(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.MatchStatusInterviewScheduled {
		return nil, closedMatch(op, current)
	}
	return current, nil
}

// discard removes a booking whose match could not be held open.
func (u *interviewUsecase) discard(ctx context.Context, id uuid.UUID) {
	if err := u.repo.Delete(context.WithoutCancel(ctx), id); err != nil {
		logger.Log.Error("Failed to remove orphaned interview", "interview_id", id, "error", err)
	}
}

func closedMatch(op string, m *domain.Match) error {
	return apperror.InvalidTransition(fmt.Sprintf("Match %s is %s and cannot be interviewed", m.ID, m.Status)).WithOp(op)
}

// invite is best effort; a failed email never fails the booking.
func (u *interviewUsecase) invite(ctx context.Context, m *domain.Match, interview domain.Interview) {
	if u.notifier == nil {
		return
	}
	candidate, err := u.candidates.GetByID(ctx, m.CandidateID)
	if err != nil || candidate.Email == "" {
		logger.Log.Warn("Interview invitation skipped", "match_id", m.ID, "reason", "candidate email unavailable")
		return
	}
	job, err := u.jobs.GetByID(ctx, m.JobID)
	if err != nil {
		logger.Log.Warn("Interview invitation skipped", "match_id", m.ID, "reason", "job unavailable")
		return
	}

	err = u.notifier.SendInterviewInvitation(ctx, domain.InterviewInvitation{
		CandidateName:  candidate.FullName,
		CandidateEmail: candidate.Email,
		JobTitle:       job.Title,
		Company:        job.Company,
		Interview:      interview,
	})
	if err != nil {
		logger.Log.Warn("Interview invitation failed", "match_id", m.ID, "error", err)
	}
}

func (u *interviewUsecase) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Interview, error) {
	const op = "interviewUsecase.ListByMatch"

	if _, err := u.matchUC.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	interviews, err := u.repo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, repoError(op, err, fmt.Sprintf("Match %s not found", matchID))
	}
	return interviews, nil
}

// UpdateStatus closes a scheduled interview as completed or cancelled.
func (u *interviewUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InterviewStatus) (*domain.Interview, error) {
	const op = "interviewUsecase.UpdateStatus"

	switch status {
	case domain.InterviewStatusCompleted, domain.InterviewStatusCancelled:
	case domain.InterviewStatusScheduled:
		return nil, apperror.InvalidTransition("Interview cannot be moved back to scheduled").WithOp(op)
	default:
		return nil, apperror.Validation(fmt.Sprintf("Unknown interview status %q", status)).WithOp(op)
	}

	interview, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(op, err, fmt.Sprintf("Interview %s not found", id))
	}
	if _, err := u.manageableMatch(ctx, op, interview.MatchID); err != nil {
		return nil, err
	}
	if interview.Status != domain.InterviewStatusScheduled {
		return nil, apperror.InvalidTransition(
			fmt.Sprintf("Interview %s is already %s", id, interview.Status),
		).WithOp(op)
	}

	if err := u.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, repoError(op, err, fmt.Sprintf("Interview %s not found", id))
	}
	interview.Status = status
	interview.UpdatedAt = u.now().UTC()
	return interview, nil
}
