package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/internal/matching"
	"go-talentmatch-backend/pkg/apperror"
	"go-talentmatch-backend/pkg/logger"
	"go-talentmatch-backend/pkg/security"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type candidateUsecase struct {
	repo           domain.CandidateRepository
	matchRepo      domain.MatchRepository
	storage        domain.FileStorage
	normalizer     *matching.Normalizer
	validate       *validator.Validate
	maxResumeBytes int64
}

func NewCandidateUsecase(
	repo domain.CandidateRepository,
	matchRepo domain.MatchRepository,
	storage domain.FileStorage,
	normalizer *matching.Normalizer,
	validate *validator.Validate,
	maxResumeBytes int64,
) domain.CandidateUsecase {
	return &candidateUsecase{
		repo:           repo,
		matchRepo:      matchRepo,
		storage:        storage,
		normalizer:     normalizer,
		validate:       validate,
		maxResumeBytes: maxResumeBytes,
	}
}

func (u *candidateUsecase) GetProfile(ctx context.Context, userID string) (*domain.CandidateProfile, error) {
	const op = "candidateUsecase.GetProfile"

	actor, err := requireActor(ctx, op)
	if err != nil {
		return nil, err
	}
	// Security: ownership check, admins may read any profile
	if actor.UserID != userID && !actor.IsAdmin() {
		return nil, apperror.Forbidden("You can only view your own profile").WithOp(op)
	}

	profile, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, repoError(op, err, "Candidate profile not found")
	}
	return profile, nil
}

// SaveProfile creates the caller's profile or replaces the existing one.
func (u *candidateUsecase) SaveProfile(ctx context.Context, profile *domain.CandidateProfile) (*domain.CandidateProfile, error) {
	const op = "candidateUsecase.SaveProfile"

	actor, err := requireActor(ctx, op)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleCandidate {
		return nil, apperror.Forbidden("Only candidates can maintain a résumé profile").WithOp(op)
	}

	// Force the UserID to be the context user
	profile.UserID = actor.UserID
	if profile.Email == "" {
		profile.Email = actor.Email
	}
	profile.FullName = strings.TrimSpace(profile.FullName)

	if err := u.validate.Struct(profile); err != nil {
		return nil, validationError(op, err)
	}
	if _, err := u.normalizer.NormalizeSet(profile.Skills); err != nil {
		return nil, scoringError(op, err, 0)
	}

	_, err = u.repo.GetByUserID(ctx, actor.UserID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		profile.ResumeURL = ""
		if err := u.repo.Create(ctx, profile); err != nil {
			return nil, repoError(op, err, "Candidate profile not found")
		}
		logger.Log.Info("Candidate profile created", "candidate_id", profile.ID, "user_id", actor.UserID)
	case err != nil:
		return nil, repoError(op, err, "Candidate profile not found")
	default:
		if err := u.repo.Update(ctx, profile); err != nil {
			return nil, repoError(op, err, "Candidate profile not found")
		}
	}
	return profile, nil
}

// DeleteProfile removes the profile together with its matches.
func (u *candidateUsecase) DeleteProfile(ctx context.Context, userID string) error {
	const op = "candidateUsecase.DeleteProfile"

	profile, err := u.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if err := u.matchRepo.DeleteByCandidate(ctx, profile.ID); err != nil {
		return repoError(op, err, "Candidate profile not found")
	}
	if err := u.repo.Delete(ctx, profile.ID); err != nil {
		return repoError(op, err, "Candidate profile not found")
	}

	logger.Log.Info("Candidate profile deleted", "candidate_id", profile.ID)
	return nil
}

// UploadResume stores the file first and only then records its URL on the profile.
func (u *candidateUsecase) UploadResume(ctx context.Context, userID string, upload domain.ResumeUpload) (*domain.CandidateProfile, error) {
	const op = "candidateUsecase.UploadResume"

	profile, err := u.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, ok := security.ResumeExtension(upload.ContentType); !ok {
		return nil, apperror.Validation("Résumé must be a PDF or Word document").WithOp(op)
	}
	if upload.Size <= 0 {
		return nil, apperror.Validation("Résumé file is empty").WithOp(op)
	}
	if u.maxResumeBytes > 0 && upload.Size > u.maxResumeBytes {
		return nil, apperror.Validation(fmt.Sprintf("Résumé must be at most %d bytes", u.maxResumeBytes)).WithOp(op)
	}
	if u.storage == nil {
		return nil, apperror.Unavailable("Résumé storage is not configured").WithOp(op)
	}

	// Résumé files are stored as-is; no text is extracted from them.
	body := bufio.NewReaderSize(upload.Body, security.SniffLen)
	head, _ := body.Peek(security.SniffLen)
	ext, err := security.ValidateResume(upload.ContentType, head)
	if err != nil {
		logger.Log.Warn("Résumé rejected", "user_id", userID, "reason", err)
		return nil, apperror.Validation("Résumé content does not match its file type").WithOp(op).Wrap(err)
	}

	key := path.Join("resumes", userID, uuid.NewString()+ext)
	url, err := u.storage.Upload(ctx, key, upload.ContentType, body, upload.Size)
	if err != nil {
		logger.Log.Error("Résumé upload failed", "user_id", userID, "error", err)
		return nil, apperror.Unavailable("Could not store résumé, please try again").WithOp(op).Wrap(err)
	}

	if err := u.repo.UpdateResumeURL(ctx, userID, url); err != nil {
		return nil, repoError(op, err, "Candidate profile not found")
	}
	profile.ResumeURL = url

	logger.Log.Info("Résumé uploaded", "candidate_id", profile.ID, "key", key)
	return profile, nil
}
