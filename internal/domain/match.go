package domain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

// Match status constants
const (
	MatchStatusPending            MatchStatus = "pending"
	MatchStatusInterviewScheduled MatchStatus = "interview_scheduled"
	MatchStatusAccepted           MatchStatus = "accepted"
	MatchStatusRejected           MatchStatus = "rejected"
	MatchStatusHired              MatchStatus = "hired"
)

// AllMatchStatuses lists statuses in lifecycle order.
var AllMatchStatuses = []MatchStatus{
	MatchStatusPending,
	MatchStatusInterviewScheduled,
	MatchStatusAccepted,
	MatchStatusRejected,
	MatchStatusHired,
}

// Status flow: pending → interview_scheduled → accepted / rejected / hired.
// pending may also jump straight to a terminal status.
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending: {
		MatchStatusInterviewScheduled,
		MatchStatusAccepted,
		MatchStatusRejected,
		MatchStatusHired,
	},
	MatchStatusInterviewScheduled: {
		MatchStatusAccepted,
		MatchStatusRejected,
		MatchStatusHired,
	},
}

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusPending, MatchStatusInterviewScheduled,
		MatchStatusAccepted, MatchStatusRejected, MatchStatusHired:
		return true
	}
	return false
}

func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusAccepted || s == MatchStatusRejected || s == MatchStatusHired
}

func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	for _, allowed := range matchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MatchDetails explains a score.
type MatchDetails struct {
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
}

// Match is the scored association between one candidate profile and one job.
// Version is bumped on every status change and guards concurrent transitions.
type Match struct {
	ID          uuid.UUID    `json:"id"`
	CandidateID int64        `json:"candidate_id"`
	JobID       int64        `json:"job_id"`
	Score       int          `json:"score"`
	Status      MatchStatus  `json:"status"`
	Details     MatchDetails `json:"details"`
	Version     int64        `json:"version"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Joined data for list responses
	CandidateName *string `json:"candidate_name,omitempty"`
	JobTitle      *string `json:"job_title,omitempty"`
}

// MatchLess orders matches by score descending, then creation time ascending, then id.
func MatchLess(a, b Match) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// MatchCursor is a keyset position in the MatchLess ordering.
type MatchCursor struct {
	Score     int       `json:"s"`
	CreatedAt time.Time `json:"c"`
	ID        uuid.UUID `json:"i"`
}

func (m Match) Cursor() MatchCursor {
	return MatchCursor{Score: m.Score, CreatedAt: m.CreatedAt, ID: m.ID}
}

// Precedes reports whether m sorts strictly after the cursor position.
func (c MatchCursor) Precedes(m Match) bool {
	return MatchLess(Match{Score: c.Score, CreatedAt: c.CreatedAt, ID: c.ID}, m)
}

func (c MatchCursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

var ErrInvalidCursor = errors.New("invalid match cursor")

func DecodeMatchCursor(s string) (*MatchCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c MatchCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

// MatchFilter narrows list queries. Zero value lists everything.
type MatchFilter struct {
	Statuses []MatchStatus
	MinScore int
	After    *MatchCursor
}

// Accepts applies Statuses and MinScore; After is handled by the caller.
func (f MatchFilter) Accepts(m Match) bool {
	if m.Score < f.MinScore {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if s == m.Status {
			return true
		}
	}
	return false
}

// MatchStats aggregates the match table.
type MatchStats struct {
	Total        int64                 `json:"total"`
	AverageScore float64               `json:"average_score"`
	ByStatus     map[MatchStatus]int64 `json:"by_status"`
}

// EvaluationSummary reports a batch evaluation.
type EvaluationSummary struct {
	Evaluated       int `json:"evaluated"`
	Created         int `json:"created"`
	Updated         int `json:"updated"`
	SkippedTerminal int `json:"skipped_terminal"`
	SkippedInvalid  int `json:"skipped_invalid"`
}

type MatchRepository interface {
	// Upsert creates a pending match for the pair or updates the score of the
	// existing non-terminal one. created reports whether a row was inserted.
	// Returns ErrMatchTerminal when the existing match is terminal.
	Upsert(ctx context.Context, candidateID, jobID int64, score int, details MatchDetails) (m *Match, created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*Match, error)
	ListByJob(ctx context.Context, jobID int64, filter MatchFilter, limit int) ([]Match, error)
	ListByCandidate(ctx context.Context, candidateID int64, filter MatchFilter, limit int) ([]Match, error)
	// UpdateStatus applies status only if the stored version equals expectedVersion.
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int64, status MatchStatus) (*Match, error)
	DeleteByCandidate(ctx context.Context, candidateID int64) error
	DeleteByJob(ctx context.Context, jobID int64) error
	Stats(ctx context.Context) (*MatchStats, error)
}

type MatchUsecase interface {
	EvaluatePair(ctx context.Context, candidateID, jobID int64) (*Match, error)
	EvaluateJob(ctx context.Context, jobID int64) (*EvaluationSummary, error)
	EvaluateCandidate(ctx context.Context, candidateID int64) (*EvaluationSummary, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*Match, error)
	// ListByJob and ListByCandidate return lazy sequences; ranging again restarts from the top.
	ListByJob(ctx context.Context, jobID int64, filter MatchFilter) (iter.Seq2[Match, error], error)
	ListByCandidate(ctx context.Context, candidateID int64, filter MatchFilter) (iter.Seq2[Match, error], error)
	// Shortlist uses the configured threshold when minScore is nil.
	Shortlist(ctx context.Context, jobID int64, minScore *int) ([]Match, error)
	Transition(ctx context.Context, id uuid.UUID, status MatchStatus) (*Match, error)
	ExportByJob(ctx context.Context, jobID int64, format string) ([]byte, string, error)
	// RescoreJob refreshes the open matches of a job against its current skills.
	RescoreJob(ctx context.Context, jobID int64) (*EvaluationSummary, error)
}

// TakeMatches drains up to limit matches from seq. next is set when seq holds more.
func TakeMatches(seq iter.Seq2[Match, error], limit int) (page []Match, next *MatchCursor, err error) {
	page = []Match{}
	for m, err := range seq {
		if err != nil {
			return nil, nil, err
		}
		if len(page) == limit {
			c := page[len(page)-1].Cursor()
			return page, &c, nil
		}
		page = append(page, m)
	}
	return page, nil, nil
}
