package usecase_test

import (
	"context"
	"encoding/json"
	"io"
	"slices"
	"sync"
	"time"

	"go-talentmatch-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

func actorCtx(userID, role string) context.Context {
	return domain.WithActor(context.Background(), domain.Actor{
		UserID: userID,
		Email:  userID + "@example.com",
		Role:   role,
	})
}

func recruiterCtx() context.Context { return actorCtx("recruiter-1", domain.RoleRecruiter) }

// fakeCandidateRepo keeps profiles in a map keyed by id.
type fakeCandidateRepo struct {
	mu       sync.Mutex
	nextID   int64
	byID     map[int64]domain.CandidateProfile
	fetchErr error
}

func newFakeCandidateRepo(profiles ...domain.CandidateProfile) *fakeCandidateRepo {
	r := &fakeCandidateRepo{byID: make(map[int64]domain.CandidateProfile)}
	for _, p := range profiles {
		if p.ID == 0 {
			r.nextID++
			p.ID = r.nextID
		}
		r.nextID = max(r.nextID, p.ID)
		r.byID[p.ID] = p
	}
	return r
}

func (r *fakeCandidateRepo) GetByID(_ context.Context, id int64) (*domain.CandidateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *fakeCandidateRepo) GetByUserID(_ context.Context, userID string) (*domain.CandidateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeCandidateRepo) Fetch(_ context.Context, limit, offset int) ([]domain.CandidateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	all := make([]domain.CandidateProfile, 0, len(r.byID))
	for _, p := range r.byID {
		all = append(all, p)
	}
	slices.SortFunc(all, func(a, b domain.CandidateProfile) int { return int(a.ID - b.ID) })
	if offset >= len(all) {
		return []domain.CandidateProfile{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (r *fakeCandidateRepo) Create(_ context.Context, profile *domain.CandidateProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	profile.ID = r.nextID
	profile.CreatedAt, profile.UpdatedAt = time.Now(), time.Now()
	r.byID[profile.ID] = *profile
	return nil
}

func (r *fakeCandidateRepo) Update(_ context.Context, profile *domain.CandidateProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.byID {
		if p.UserID == profile.UserID {
			profile.ID = id
			profile.ResumeURL = p.ResumeURL
			profile.CreatedAt = p.CreatedAt
			r.byID[id] = *profile
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeCandidateRepo) UpdateResumeURL(_ context.Context, userID, resumeURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.byID {
		if p.UserID == userID {
			p.ResumeURL = resumeURL
			r.byID[id] = p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeCandidateRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeCandidateRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

// fakeJobRepo keeps jobs in a map keyed by id.
type fakeJobRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.Job
}

func newFakeJobRepo(jobs ...domain.Job) *fakeJobRepo {
	r := &fakeJobRepo{byID: make(map[int64]domain.Job)}
	for _, j := range jobs {
		if j.ID == 0 {
			r.nextID++
			j.ID = r.nextID
		}
		r.nextID = max(r.nextID, j.ID)
		r.byID[j.ID] = j
	}
	return r
}

func (r *fakeJobRepo) Create(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	job.ID = r.nextID
	job.CreatedAt, job.UpdatedAt = time.Now(), time.Now()
	r.byID[job.ID] = *job
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id int64) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

func (r *fakeJobRepo) Fetch(_ context.Context, limit, offset int) ([]domain.Job, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.Job, 0, len(r.byID))
	for _, j := range r.byID {
		all = append(all, j)
	}
	slices.SortFunc(all, func(a, b domain.Job) int { return int(a.ID - b.ID) })
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.Job{}, total, nil
	}
	return all[offset:min(offset+limit, len(all))], total, nil
}

func (r *fakeJobRepo) Update(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[job.ID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[job.ID] = *job
	return nil
}

func (r *fakeJobRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeJobRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

type MockJobRescorer struct {
	mock.Mock
}

func (m *MockJobRescorer) RescoreJob(ctx context.Context, jobID int64) (*domain.EvaluationSummary, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationSummary), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendInterviewInvitation(ctx context.Context, inv domain.InterviewInvitation) error {
	return m.Called(ctx, inv).Error(0)
}

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, key, contentType, body, size)
	return args.String(0), args.Error(1)
}

// fakeCache stores JSON in a map and counts hits.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	ttls    []time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, val any, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	c.ttls = append(c.ttls, ttl)
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}
