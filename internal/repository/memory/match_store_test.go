package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-talentmatch-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func TestMatchStore_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a pending match", func(t *testing.T) {
		s := NewMatchStore()
		m, created, err := s.Upsert(ctx, 1, 10, 67, domain.MatchDetails{MatchedSkills: []string{"go"}})

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, domain.MatchStatusPending, m.Status)
		assert.Equal(t, 67, m.Score)
		assert.Equal(t, int64(1), m.Version)
		assert.NotEqual(t, uuid.Nil, m.ID)
	})

	t.Run("Should update score in place for a non-terminal match", func(t *testing.T) {
		s := NewMatchStore()
		first, _, err := s.Upsert(ctx, 1, 10, 50, domain.MatchDetails{})
		require.NoError(t, err)

		second, created, err := s.Upsert(ctx, 1, 10, 80, domain.MatchDetails{})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 80, second.Score)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)

		list, err := s.ListByJob(ctx, 10, domain.MatchFilter{}, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Should refuse to rescore a terminal match", func(t *testing.T) {
		s := NewMatchStore()
		m, _, _ := s.Upsert(ctx, 1, 10, 50, domain.MatchDetails{})
		_, err := s.UpdateStatus(ctx, m.ID, m.Version, domain.MatchStatusHired)
		require.NoError(t, err)

		_, _, err = s.Upsert(ctx, 1, 10, 90, domain.MatchDetails{})
		assert.ErrorIs(t, err, domain.ErrMatchTerminal)

		got, _ := s.GetByID(ctx, m.ID)
		assert.Equal(t, 50, got.Score)
	})

	t.Run("Should keep creation times strictly increasing under a frozen clock", func(t *testing.T) {
		s := NewMatchStore(WithClock(fixedClock()))
		a, _, _ := s.Upsert(ctx, 1, 10, 90, domain.MatchDetails{})
		b, _, _ := s.Upsert(ctx, 2, 10, 90, domain.MatchDetails{})
		assert.True(t, b.CreatedAt.After(a.CreatedAt))
	})

	t.Run("Should not leak internal state through returned values", func(t *testing.T) {
		s := NewMatchStore()
		m, _, _ := s.Upsert(ctx, 1, 10, 50, domain.MatchDetails{MatchedSkills: []string{"go"}})
		m.Details.MatchedSkills[0] = "cobol"
		m.Score = 0

		got, _ := s.GetByID(ctx, m.ID)
		assert.Equal(t, 50, got.Score)
		assert.Equal(t, []string{"go"}, got.Details.MatchedSkills)
	})
}

func TestMatchStore_ConcurrentUpsertSamePair(t *testing.T) {
	ctx := context.Background()
	s := NewMatchStore()

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, ok, err := s.Upsert(ctx, 7, 70, score, domain.MatchDetails{})
			assert.NoError(t, err)
			if ok {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	list, err := s.ListByCandidate(ctx, 7, domain.MatchFilter{}, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Empty(t, s.locks)
}

func TestMatchStore_ConcurrentUpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMatchStore()
	m, _, _ := s.Upsert(ctx, 1, 1, 80, domain.MatchDetails{})

	var applied, conflicted atomic.Int32
	var wg sync.WaitGroup
	for _, status := range []domain.MatchStatus{domain.MatchStatusAccepted, domain.MatchStatusRejected, domain.MatchStatusHired} {
		wg.Add(1)
		go func(st domain.MatchStatus) {
			defer wg.Done()
			_, err := s.UpdateStatus(ctx, m.ID, m.Version, st)
			switch {
			case err == nil:
				applied.Add(1)
			case errors.Is(err, domain.ErrVersionConflict):
				conflicted.Add(1)
			}
		}(status)
	}
	wg.Wait()

	assert.Equal(t, int32(1), applied.Load())
	assert.Equal(t, int32(2), conflicted.Load())

	got, _ := s.GetByID(ctx, m.ID)
	assert.Equal(t, int64(2), got.Version)
}

func TestMatchStore_List(t *testing.T) {
	ctx := context.Background()
	s := NewMatchStore(WithClock(fixedClock()))

	first90, _, _ := s.Upsert(ctx, 1, 100, 90, domain.MatchDetails{})
	only75, _, _ := s.Upsert(ctx, 2, 100, 75, domain.MatchDetails{})
	second90, _, _ := s.Upsert(ctx, 3, 100, 90, domain.MatchDetails{})
	_, _, _ = s.Upsert(ctx, 1, 200, 40, domain.MatchDetails{})

	t.Run("Should order by score desc then creation time asc", func(t *testing.T) {
		list, err := s.ListByJob(ctx, 100, domain.MatchFilter{}, 0)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, first90.ID, list[0].ID)
		assert.Equal(t, second90.ID, list[1].ID)
		assert.Equal(t, only75.ID, list[2].ID)
	})

	t.Run("Should page with a cursor", func(t *testing.T) {
		page, err := s.ListByJob(ctx, 100, domain.MatchFilter{}, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)

		cursor := page[1].Cursor()
		rest, err := s.ListByJob(ctx, 100, domain.MatchFilter{After: &cursor}, 2)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, only75.ID, rest[0].ID)
	})

	t.Run("Should filter by status and minimum score", func(t *testing.T) {
		_, err := s.UpdateStatus(ctx, second90.ID, second90.Version, domain.MatchStatusRejected)
		require.NoError(t, err)

		list, err := s.ListByJob(ctx, 100, domain.MatchFilter{Statuses: []domain.MatchStatus{domain.MatchStatusPending}, MinScore: 80}, 0)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, first90.ID, list[0].ID)
	})

	t.Run("Should list by candidate across jobs", func(t *testing.T) {
		list, err := s.ListByCandidate(ctx, 1, domain.MatchFilter{}, 0)
		require.NoError(t, err)
		assert.Len(t, list, 2)
		assert.Equal(t, 90, list[0].Score)
	})
}

func TestMatchStore_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMatchStore()

	t.Run("Should report missing match", func(t *testing.T) {
		_, err := s.UpdateStatus(ctx, uuid.New(), 1, domain.MatchStatusAccepted)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Should reject a stale version", func(t *testing.T) {
		m, _, _ := s.Upsert(ctx, 1, 1, 10, domain.MatchDetails{})
		_, err := s.UpdateStatus(ctx, m.ID, m.Version, domain.MatchStatusInterviewScheduled)
		require.NoError(t, err)

		_, err = s.UpdateStatus(ctx, m.ID, m.Version, domain.MatchStatusAccepted)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	})
}

func TestMatchStore_DeleteAndStats(t *testing.T) {
	ctx := context.Background()
	s := NewMatchStore()
	_, _, _ = s.Upsert(ctx, 1, 1, 100, domain.MatchDetails{})
	_, _, _ = s.Upsert(ctx, 1, 2, 50, domain.MatchDetails{})
	_, _, _ = s.Upsert(ctx, 2, 2, 0, domain.MatchDetails{})

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.InDelta(t, 50.0, stats.AverageScore, 0.001)
	assert.Equal(t, int64(3), stats.ByStatus[domain.MatchStatusPending])

	require.NoError(t, s.DeleteByCandidate(ctx, 1))
	stats, _ = s.Stats(ctx)
	assert.Equal(t, int64(1), stats.Total)

	require.NoError(t, s.DeleteByJob(ctx, 2))
	stats, _ = s.Stats(ctx)
	assert.Equal(t, int64(0), stats.Total)

	m, created, err := s.Upsert(ctx, 1, 1, 30, domain.MatchDetails{})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 30, m.Score)
}
