package postgres

import (
	"context"
	"errors"

	"go-talentmatch-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO job_postings (owner_id, title, company, description, required_skills, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		job.OwnerID, job.Title, job.Company, job.Description, pq.Array(job.RequiredSkills),
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT id, owner_id, title, company, description, required_skills, created_at, updated_at FROM job_postings WHERE id = $1`
	var job domain.Job
	var skills []string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.OwnerID, &job.Title, &job.Company, &job.Description, pq.Array(&skills),
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.RequiredSkills = skills
	return &job, nil
}

func (r *jobRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Job, int64, error) {
	query := `SELECT id, owner_id, title, company, description, required_skills, created_at, updated_at
              FROM job_postings ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		var job domain.Job
		var skills []string
		if err := rows.Scan(&job.ID, &job.OwnerID, &job.Title, &job.Company, &job.Description, pq.Array(&skills), &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, 0, err
		}
		job.RequiredSkills = skills
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_postings`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `UPDATE job_postings SET title = $1, company = $2, description = $3, required_skills = $4, updated_at = NOW()
              WHERE id = $5 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		job.Title, job.Company, job.Description, pq.Array(job.RequiredSkills), job.ID,
	).Scan(&job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_postings`).Scan(&total)
	return total, err
}
