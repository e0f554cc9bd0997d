// Package memory holds an embedded MatchRepository for single-instance deployments
// and tests. Data does not survive a restart.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"go-talentmatch-backend/internal/domain"

	"github.com/google/uuid"
)

type pairKey struct {
	candidateID int64
	jobID       int64
}

// pairLock is a refcounted mutex for one (candidate, job) pair.
type pairLock struct {
	mu   sync.Mutex
	refs int
}

type MatchStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*domain.Match
	byPair map[pairKey]uuid.UUID

	locksMu sync.Mutex
	locks   map[pairKey]*pairLock

	now         func() time.Time
	lastCreated time.Time

	interviews *InterviewStore
}

type Option func(*MatchStore)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *MatchStore) { s.now = now }
}

// WithInterviews cascades match deletes to an interview store.
func WithInterviews(interviews *InterviewStore) Option {
	return func(s *MatchStore) { s.interviews = interviews }
}

func NewMatchStore(opts ...Option) *MatchStore {
	s := &MatchStore{
		byID:   make(map[uuid.UUID]*domain.Match),
		byPair: make(map[pairKey]uuid.UUID),
		locks:  make(map[pairKey]*pairLock),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MatchStore) lockPair(k pairKey) func() {
	s.locksMu.Lock()
	l, ok := s.locks[k]
	if !ok {
		l = &pairLock{}
		s.locks[k] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, k)
		}
		s.locksMu.Unlock()
	}
}

func (s *MatchStore) Upsert(ctx context.Context, candidateID, jobID int64, score int, details domain.MatchDetails) (*domain.Match, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	key := pairKey{candidateID: candidateID, jobID: jobID}
	unlock := s.lockPair(key)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if id, ok := s.byPair[key]; ok {
		m := s.byID[id]
		if m.Status.IsTerminal() {
			return nil, false, domain.ErrMatchTerminal
		}
		m.Score = score
		m.Details = cloneDetails(details)
		m.UpdatedAt = now
		return clone(m), false, nil
	}

	// Creation times are strictly increasing so equal scores keep insertion order.
	created := now.Truncate(time.Microsecond)
	if !created.After(s.lastCreated) {
		created = s.lastCreated.Add(time.Microsecond)
	}
	s.lastCreated = created

	m := &domain.Match{
		ID:          uuid.New(),
		CandidateID: candidateID,
		JobID:       jobID,
		Score:       score,
		Status:      domain.MatchStatusPending,
		Details:     cloneDetails(details),
		Version:     1,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	s.byID[m.ID] = m
	s.byPair[key] = m.ID
	return clone(m), true, nil
}

func (s *MatchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(m), nil
}

func (s *MatchStore) ListByJob(ctx context.Context, jobID int64, filter domain.MatchFilter, limit int) ([]domain.Match, error) {
	return s.list(ctx, func(m *domain.Match) bool { return m.JobID == jobID }, filter, limit)
}

func (s *MatchStore) ListByCandidate(ctx context.Context, candidateID int64, filter domain.MatchFilter, limit int) ([]domain.Match, error) {
	return s.list(ctx, func(m *domain.Match) bool { return m.CandidateID == candidateID }, filter, limit)
}

func (s *MatchStore) list(ctx context.Context, owned func(*domain.Match) bool, filter domain.MatchFilter, limit int) ([]domain.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matches := make([]domain.Match, 0)
	for _, m := range s.byID {
		if !owned(m) || !filter.Accepts(*m) {
			continue
		}
		if filter.After != nil && !filter.After.Precedes(*m) {
			continue
		}
		matches = append(matches, *clone(m))
	}
	s.mu.RUnlock()

	slices.SortFunc(matches, func(a, b domain.Match) int {
		switch {
		case domain.MatchLess(a, b):
			return -1
		case domain.MatchLess(b, a):
			return 1
		}
		return 0
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *MatchStore) UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int64, status domain.MatchStatus) (*domain.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if m.Version != expectedVersion {
		return nil, domain.ErrVersionConflict
	}
	m.Status = status
	m.Version++
	m.UpdatedAt = s.now().UTC()
	return clone(m), nil
}

func (s *MatchStore) DeleteByCandidate(ctx context.Context, candidateID int64) error {
	s.deleteWhere(func(m *domain.Match) bool { return m.CandidateID == candidateID })
	return nil
}

func (s *MatchStore) DeleteByJob(ctx context.Context, jobID int64) error {
	s.deleteWhere(func(m *domain.Match) bool { return m.JobID == jobID })
	return nil
}

func (s *MatchStore) deleteWhere(match func(*domain.Match) bool) {
	removed := make(map[uuid.UUID]struct{})

	s.mu.Lock()
	for id, m := range s.byID {
		if match(m) {
			delete(s.byID, id)
			delete(s.byPair, pairKey{candidateID: m.CandidateID, jobID: m.JobID})
			removed[id] = struct{}{}
		}
	}
	s.mu.Unlock()

	if s.interviews != nil && len(removed) > 0 {
		s.interviews.deleteByMatches(removed)
	}
}

func (s *MatchStore) Stats(ctx context.Context) (*domain.MatchStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.MatchStats{ByStatus: make(map[domain.MatchStatus]int64)}
	var sum int64
	for _, m := range s.byID {
		stats.Total++
		stats.ByStatus[m.Status]++
		sum += int64(m.Score)
	}
	if stats.Total > 0 {
		stats.AverageScore = float64(sum) / float64(stats.Total)
	}
	return stats, nil
}

func clone(m *domain.Match) *domain.Match {
	c := *m
	c.Details = cloneDetails(m.Details)
	return &c
}

func cloneDetails(d domain.MatchDetails) domain.MatchDetails {
	return domain.MatchDetails{
		MatchedSkills: slices.Clone(d.MatchedSkills),
		MissingSkills: slices.Clone(d.MissingSkills),
	}
}
