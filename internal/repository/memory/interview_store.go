package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"go-talentmatch-backend/internal/domain"

	"github.com/google/uuid"
)

// InterviewStore keeps interviews next to an in-memory MatchStore.
type InterviewStore struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]domain.Interview
	now  func() time.Time
}

func NewInterviewStore() *InterviewStore {
	return &InterviewStore{
		byID: make(map[uuid.UUID]domain.Interview),
		now:  time.Now,
	}
}

func (s *InterviewStore) Create(ctx context.Context, interview *domain.Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if interview.ID == uuid.Nil {
		interview.ID = uuid.New()
	}
	if interview.Status == "" {
		interview.Status = domain.InterviewStatusScheduled
	}
	now := s.now().UTC()
	interview.CreatedAt, interview.UpdatedAt = now, now
	s.byID[interview.ID] = *interview
	return nil
}

func (s *InterviewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	iv, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &iv, nil
}

func (s *InterviewStore) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Interview{}
	for _, iv := range s.byID {
		if iv.MatchID == matchID {
			out = append(out, iv)
		}
	}
	slices.SortFunc(out, func(a, b domain.Interview) int {
		return a.ScheduledTime.Compare(b.ScheduledTime)
	})
	return out, nil
}

func (s *InterviewStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InterviewStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	iv, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	iv.Status = status
	iv.UpdatedAt = s.now().UTC()
	s.byID[id] = iv
	return nil
}

func (s *InterviewStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *InterviewStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

// deleteByMatches drops interviews of removed matches, mirroring ON DELETE CASCADE.
func (s *InterviewStore) deleteByMatches(ids map[uuid.UUID]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, iv := range s.byID {
		if _, gone := ids[iv.MatchID]; gone {
			delete(s.byID, id)
		}
	}
}
