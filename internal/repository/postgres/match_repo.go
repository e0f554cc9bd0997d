package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-talentmatch-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type matchRepo struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) domain.MatchRepository {
	return &matchRepo{db: db}
}

const matchColumns = `m.id, m.candidate_id, m.job_id, m.score, m.status, m.matched_skills, m.missing_skills, m.version, m.created_at, m.updated_at`

func scanMatch(row pgx.Row, extra ...any) (*domain.Match, error) {
	var m domain.Match
	var status string
	var matched, missing []string

	dest := []any{
		&m.ID, &m.CandidateID, &m.JobID, &m.Score, &status,
		pq.Array(&matched), pq.Array(&missing), &m.Version, &m.CreatedAt, &m.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	m.Status = domain.MatchStatus(status)
	m.Details = domain.MatchDetails{MatchedSkills: nonNil(matched), MissingSkills: nonNil(missing)}
	return &m, nil
}

// Upsert serializes writers of one pair with a row lock; the unique
// (candidate_id, job_id) constraint settles racing inserts.
func (r *matchRepo) Upsert(ctx context.Context, candidateID, jobID int64, score int, details domain.MatchDetails) (*domain.Match, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	selectQuery := `SELECT ` + matchColumns + ` FROM matches m WHERE m.candidate_id = $1 AND m.job_id = $2 FOR UPDATE`
	existing, err := scanMatch(tx.QueryRow(ctx, selectQuery, candidateID, jobID))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	if existing == nil {
		insertQuery := `
			INSERT INTO matches AS m (id, candidate_id, job_id, score, status, matched_skills, missing_skills, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'pending', $5, $6, 1, clock_timestamp(), clock_timestamp())
			ON CONFLICT (candidate_id, job_id) DO NOTHING
			RETURNING ` + matchColumns
		m, err := scanMatch(tx.QueryRow(ctx, insertQuery,
			uuid.New(), candidateID, jobID, score,
			pq.Array(nonNil(details.MatchedSkills)), pq.Array(nonNil(details.MissingSkills)),
		))
		switch {
		case err == nil:
			if err := tx.Commit(ctx); err != nil {
				return nil, false, err
			}
			return m, true, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, false, err
		}

		// A concurrent insert won; lock its row and fall through to the update path.
		existing, err = scanMatch(tx.QueryRow(ctx, selectQuery, candidateID, jobID))
		if err != nil {
			return nil, false, err
		}
	}

	if existing.Status.IsTerminal() {
		return nil, false, domain.ErrMatchTerminal
	}

	updateQuery := `
		UPDATE matches AS m SET score = $1, matched_skills = $2, missing_skills = $3, updated_at = clock_timestamp()
		WHERE m.id = $4
		RETURNING ` + matchColumns
	m, err := scanMatch(tx.QueryRow(ctx, updateQuery,
		score, pq.Array(nonNil(details.MatchedSkills)), pq.Array(nonNil(details.MissingSkills)), existing.ID,
	))
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return m, false, nil
}

func (r *matchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + `, c.full_name, j.title
		FROM matches m
		LEFT JOIN candidate_profiles c ON c.id = m.candidate_id
		LEFT JOIN job_postings j ON j.id = m.job_id
		WHERE m.id = $1`
	var candidateName, jobTitle *string
	m, err := scanMatch(r.db.QueryRow(ctx, query, id), &candidateName, &jobTitle)
	if err != nil {
		return nil, err
	}
	m.CandidateName, m.JobTitle = candidateName, jobTitle
	return m, nil
}

func (r *matchRepo) ListByJob(ctx context.Context, jobID int64, filter domain.MatchFilter, limit int) ([]domain.Match, error) {
	return r.list(ctx, "m.job_id", jobID, filter, limit)
}

func (r *matchRepo) ListByCandidate(ctx context.Context, candidateID int64, filter domain.MatchFilter, limit int) ([]domain.Match, error) {
	return r.list(ctx, "m.candidate_id", candidateID, filter, limit)
}

// list returns one keyset page ordered by score DESC, created_at ASC, id ASC.
func (r *matchRepo) list(ctx context.Context, ownerColumn string, ownerID int64, filter domain.MatchFilter, limit int) ([]domain.Match, error) {
	conditions := []string{ownerColumn + " = $1"}
	args := []any{ownerID}

	if filter.MinScore > 0 {
		args = append(args, filter.MinScore)
		conditions = append(conditions, fmt.Sprintf("m.score >= $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("m.status = ANY($%d::text[])", len(args)))
	}
	if c := filter.After; c != nil {
		args = append(args, c.Score, c.CreatedAt, c.ID)
		s, t, id := len(args)-2, len(args)-1, len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(m.score < $%d OR (m.score = $%d AND (m.created_at > $%d OR (m.created_at = $%d AND m.id > $%d))))",
			s, s, t, t, id,
		))
	}

	query := `
		SELECT ` + matchColumns + `, c.full_name, j.title
		FROM matches m
		LEFT JOIN candidate_profiles c ON c.id = m.candidate_id
		LEFT JOIN job_postings j ON j.id = m.job_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY m.score DESC, m.created_at ASC, m.id ASC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []domain.Match{}
	for rows.Next() {
		var candidateName, jobTitle *string
		m, err := scanMatch(rows, &candidateName, &jobTitle)
		if err != nil {
			return nil, err
		}
		m.CandidateName, m.JobTitle = candidateName, jobTitle
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *matchRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int64, status domain.MatchStatus) (*domain.Match, error) {
	query := `
		UPDATE matches AS m SET status = $1, version = m.version + 1, updated_at = clock_timestamp()
		WHERE m.id = $2 AND m.version = $3
		RETURNING ` + matchColumns
	m, err := scanMatch(r.db.QueryRow(ctx, query, string(status), id, expectedVersion))
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrVersionConflict
	}
	return nil, domain.ErrNotFound
}

func (r *matchRepo) DeleteByCandidate(ctx context.Context, candidateID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM matches WHERE candidate_id = $1`, candidateID)
	return err
}

func (r *matchRepo) DeleteByJob(ctx context.Context, jobID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM matches WHERE job_id = $1`, jobID)
	return err
}

func (r *matchRepo) Stats(ctx context.Context) (*domain.MatchStats, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*), COALESCE(SUM(score), 0) FROM matches GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.MatchStats{ByStatus: make(map[domain.MatchStatus]int64)}
	var sum int64
	for rows.Next() {
		var status string
		var count, scoreSum int64
		if err := rows.Scan(&status, &count, &scoreSum); err != nil {
			return nil, err
		}
		stats.ByStatus[domain.MatchStatus(status)] = count
		stats.Total += count
		sum += scoreSum
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if stats.Total > 0 {
		stats.AverageScore = float64(sum) / float64(stats.Total)
	}
	return stats, nil
}
