package domain

import (
	"context"
	"time"
)

// Job is a posting owned by the recruiter who created it.
type Job struct {
	ID             int64     `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Title          string    `json:"title" validate:"required,min=3,max=150,no_emoji"`
	Company        string    `json:"company" validate:"required,max=150"`
	Description    string    `json:"description" validate:"max=10000"`
	RequiredSkills []string  `json:"required_skills" validate:"required,min=1,max=50,dive,skill_token"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	Fetch(ctx context.Context, limit, offset int) ([]Job, int64, error)
	Update(ctx context.Context, job *Job) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type JobUsecase interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id int64) (*Job, error)
	ListJobs(ctx context.Context, page, pageSize int) (*PaginatedResult[Job], error)
	UpdateJob(ctx context.Context, job *Job) error
	DeleteJob(ctx context.Context, id int64) error
}

// PaginatedResult for list responses
type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}
