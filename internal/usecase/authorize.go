package usecase

import (
	"context"
	"fmt"

	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/apperror"
)

// authorizeJobOwner loads the job and checks the caller owns it or is an admin.
func authorizeJobOwner(ctx context.Context, op string, jobs domain.JobRepository, jobID int64) (*domain.Job, domain.Actor, error) {
	actor, err := requireActor(ctx, op)
	if err != nil {
		return nil, actor, err
	}
	job, err := jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, actor, repoError(op, err, fmt.Sprintf("Job %d not found", jobID))
	}
	if job.OwnerID != actor.UserID && !actor.IsAdmin() {
		return nil, actor, apperror.Forbidden(fmt.Sprintf("Job %d belongs to another recruiter", jobID)).WithOp(op)
	}
	return job, actor, nil
}

// ownsProfile reports whether the caller is the candidate behind the profile.
func ownsProfile(actor domain.Actor, profile *domain.CandidateProfile) bool {
	return profile.UserID != "" && profile.UserID == actor.UserID
}
