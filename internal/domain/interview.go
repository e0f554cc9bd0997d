package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type InterviewType string

const (
	InterviewTypeVideo    InterviewType = "video"
	InterviewTypePhone    InterviewType = "phone"
	InterviewTypeInPerson InterviewType = "in_person"
)

type InterviewStatus string

const (
	InterviewStatusScheduled InterviewStatus = "scheduled"
	InterviewStatusCompleted InterviewStatus = "completed"
	InterviewStatusCancelled InterviewStatus = "cancelled"
)

// Interview is a meeting scheduled for a match.
type Interview struct {
	ID              uuid.UUID       `json:"id"`
	MatchID         uuid.UUID       `json:"match_id"`
	ScheduledTime   time.Time       `json:"scheduled_time"`
	DurationMinutes int             `json:"duration_minutes"`
	Type            InterviewType   `json:"interview_type"`
	Status          InterviewStatus `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ScheduleInterviewRequest is the input for scheduling an interview
type ScheduleInterviewRequest struct {
	ScheduledTime   time.Time     `json:"scheduled_time" validate:"required"`
	DurationMinutes int           `json:"duration_minutes" validate:"required,min=15,max=480"`
	Type            InterviewType `json:"interview_type" validate:"required,oneof=video phone in_person"`
}

type InterviewRepository interface {
	Create(ctx context.Context, interview *Interview) error
	GetByID(ctx context.Context, id uuid.UUID) (*Interview, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]Interview, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status InterviewStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type InterviewUsecase interface {
	Schedule(ctx context.Context, matchID uuid.UUID, req ScheduleInterviewRequest) (*Interview, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]Interview, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status InterviewStatus) (*Interview, error)
}

// InterviewInvitation carries what a candidate needs to attend an interview.
type InterviewInvitation struct {
	CandidateName  string
	CandidateEmail string
	JobTitle       string
	Company        string
	Interview      Interview
}

type InterviewNotifier interface {
	SendInterviewInvitation(ctx context.Context, inv InterviewInvitation) error
}
