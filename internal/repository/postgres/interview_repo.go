package postgres

import (
	"context"
	"errors"

	"go-talentmatch-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type interviewRepo struct {
	db *pgxpool.Pool
}

func NewInterviewRepository(db *pgxpool.Pool) domain.InterviewRepository {
	return &interviewRepo{db: db}
}

const interviewColumns = `id, match_id, scheduled_time, duration_minutes, interview_type, status, created_at, updated_at`

func scanInterview(row pgx.Row) (*domain.Interview, error) {
	var i domain.Interview
	var kind, status string
	err := row.Scan(&i.ID, &i.MatchID, &i.ScheduledTime, &i.DurationMinutes, &kind, &status, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	i.Type = domain.InterviewType(kind)
	i.Status = domain.InterviewStatus(status)
	return &i, nil
}

func (r *interviewRepo) Create(ctx context.Context, interview *domain.Interview) error {
	if interview.ID == uuid.Nil {
		interview.ID = uuid.New()
	}
	query := `INSERT INTO interviews (` + interviewColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		interview.ID, interview.MatchID, interview.ScheduledTime, interview.DurationMinutes,
		string(interview.Type), string(interview.Status),
	).Scan(&interview.CreatedAt, &interview.UpdatedAt)
}

func (r *interviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Interview, error) {
	return scanInterview(r.db.QueryRow(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id))
}

func (r *interviewRepo) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Interview, error) {
	rows, err := r.db.Query(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE match_id = $1 ORDER BY scheduled_time ASC`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interviews := []domain.Interview{}
	for rows.Next() {
		i, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, *i)
	}
	return interviews, rows.Err()
}

func (r *interviewRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InterviewStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE interviews SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *interviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM interviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *interviewRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM interviews`).Scan(&total)
	return total, err
}
