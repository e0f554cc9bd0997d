package domain

import (
	"context"
	"io"
	"time"
)

type Education struct {
	Degree      string `json:"degree" validate:"required,max=100"`
	Field       string `json:"field" validate:"max=100"`
	Institution string `json:"institution" validate:"required,max=150"`
	Year        int    `json:"year,omitempty" validate:"omitempty,min=1950,max_current_year"`
}

type Experience struct {
	Title       string `json:"title" validate:"required,max=100"`
	Company     string `json:"company" validate:"required,max=150"`
	Duration    string `json:"duration,omitempty" validate:"max=50"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// CandidateProfile is the structured résumé of a job seeker.
// Skills keep the order the candidate entered them in.
type CandidateProfile struct {
	ID             int64        `json:"id"`
	UserID         string       `json:"user_id" validate:"required"`
	FullName       string       `json:"full_name" validate:"required,min=2,max=100,valid_name"`
	Email          string       `json:"email,omitempty" validate:"omitempty,email"`
	Skills         []string     `json:"skills" validate:"required,min=1,max=100,dive,skill_token"`
	Education      []Education  `json:"education" validate:"max=20,dive"`
	Experience     []Experience `json:"experience" validate:"max=30,dive"`
	Certifications []string     `json:"certifications" validate:"max=50,dive,required,max=200"`
	ResumeURL      string       `json:"resume_url,omitempty" validate:"omitempty,url"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ResumeUpload is a raw résumé file handed over by the HTTP layer.
type ResumeUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type CandidateRepository interface {
	GetByID(ctx context.Context, id int64) (*CandidateProfile, error)
	GetByUserID(ctx context.Context, userID string) (*CandidateProfile, error)
	// Fetch pages through all profiles ordered by id.
	Fetch(ctx context.Context, limit, offset int) ([]CandidateProfile, error)
	Create(ctx context.Context, profile *CandidateProfile) error
	Update(ctx context.Context, profile *CandidateProfile) error
	UpdateResumeURL(ctx context.Context, userID, resumeURL string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type CandidateUsecase interface {
	GetProfile(ctx context.Context, userID string) (*CandidateProfile, error)
	SaveProfile(ctx context.Context, profile *CandidateProfile) (*CandidateProfile, error)
	DeleteProfile(ctx context.Context, userID string) error
	UploadResume(ctx context.Context, userID string, upload ResumeUpload) (*CandidateProfile, error)
}

// FileStorage stores uploaded files and returns a URL for them.
type FileStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}
