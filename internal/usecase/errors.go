package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/internal/matching"
	"go-talentmatch-backend/pkg/apperror"
	"go-talentmatch-backend/pkg/validation"
)

// repoError maps a repository failure onto the apperror taxonomy.
func repoError(op string, err error, notFound string) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound(notFound).WithOp(op).Wrap(err)
	case errors.Is(err, domain.ErrVersionConflict):
		return apperror.Conflict(err.Error()).WithOp(op).Wrap(err)
	default:
		return apperror.Internal(fmt.Errorf("%s: %w", op, err)).WithOp(op)
	}
}

// scoringError maps normalizer and scorer failures onto validation errors.
func scoringError(op string, err error, jobID int64) error {
	var invalid *matching.InvalidSkillError
	switch {
	case errors.Is(err, matching.ErrNoRequiredSkills):
		return apperror.Validation(fmt.Sprintf("Job %d has no required skills", jobID)).WithOp(op).Wrap(err)
	case errors.As(err, &invalid):
		return apperror.Validation(invalid.Error()).WithOp(op).Wrap(err)
	default:
		return apperror.Internal(err).WithOp(op)
	}
}

func validationError(op string, err error) error {
	return apperror.Validation(strings.Join(validation.FormatValidationErrors(err), "; ")).WithOp(op).Wrap(err)
}

func requireActor(ctx context.Context, op string) (domain.Actor, error) {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, apperror.Unauthorized("User not authenticated").WithOp(op)
	}
	return actor, nil
}
