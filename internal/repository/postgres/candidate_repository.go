package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-talentmatch-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

const candidateColumns = `id, user_id, full_name, email, skills, education, experience, certifications, resume_url, created_at, updated_at`

func scanCandidate(row pgx.Row) (*domain.CandidateProfile, error) {
	var p domain.CandidateProfile
	var skills, certifications []string
	var education, experience []byte

	err := row.Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Email,
		pq.Array(&skills), &education, &experience, pq.Array(&certifications),
		&p.ResumeURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Skills = skills
	p.Certifications = certifications
	if err := json.Unmarshal(education, &p.Education); err != nil {
		return nil, fmt.Errorf("decode education: %w", err)
	}
	if err := json.Unmarshal(experience, &p.Experience); err != nil {
		return nil, fmt.Errorf("decode experience: %w", err)
	}
	return &p, nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id int64) (*domain.CandidateProfile, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidate_profiles WHERE id = $1`
	return scanCandidate(r.db.QueryRow(ctx, query, id))
}

func (r *candidateRepository) GetByUserID(ctx context.Context, userID string) (*domain.CandidateProfile, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidate_profiles WHERE user_id = $1`
	return scanCandidate(r.db.QueryRow(ctx, query, userID))
}

func (r *candidateRepository) Fetch(ctx context.Context, limit, offset int) ([]domain.CandidateProfile, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidate_profiles ORDER BY id ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.CandidateProfile
	for rows.Next() {
		p, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// jsonbArgs encodes the nested résumé sections for jsonb columns.
func jsonbArgs(p *domain.CandidateProfile) (string, string, error) {
	education := p.Education
	if education == nil {
		education = []domain.Education{}
	}
	experience := p.Experience
	if experience == nil {
		experience = []domain.Experience{}
	}
	edu, err := json.Marshal(education)
	if err != nil {
		return "", "", err
	}
	exp, err := json.Marshal(experience)
	if err != nil {
		return "", "", err
	}
	return string(edu), string(exp), nil
}

func (r *candidateRepository) Create(ctx context.Context, profile *domain.CandidateProfile) error {
	edu, exp, err := jsonbArgs(profile)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO candidate_profiles (user_id, full_name, email, skills, education, experience, certifications, resume_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		profile.UserID, profile.FullName, profile.Email,
		pq.Array(profile.Skills), edu, exp, pq.Array(nonNil(profile.Certifications)),
		profile.ResumeURL,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *candidateRepository) Update(ctx context.Context, profile *domain.CandidateProfile) error {
	edu, exp, err := jsonbArgs(profile)
	if err != nil {
		return err
	}
	query := `
		UPDATE candidate_profiles
		SET full_name = $1, email = $2, skills = $3, education = $4::jsonb, experience = $5::jsonb,
			certifications = $6, updated_at = NOW()
		WHERE user_id = $7
		RETURNING id, resume_url, created_at, updated_at`
	err = r.db.QueryRow(ctx, query,
		profile.FullName, profile.Email, pq.Array(profile.Skills), edu, exp,
		pq.Array(nonNil(profile.Certifications)), profile.UserID,
	).Scan(&profile.ID, &profile.ResumeURL, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *candidateRepository) UpdateResumeURL(ctx context.Context, userID, resumeURL string) error {
	tag, err := r.db.Exec(ctx, `UPDATE candidate_profiles SET resume_url = $1, updated_at = NOW() WHERE user_id = $2`, resumeURL, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *candidateRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM candidate_profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *candidateRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM candidate_profiles`).Scan(&total)
	return total, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
