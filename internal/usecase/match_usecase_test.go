package usecase_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/internal/matching"
	"go-talentmatch-backend/internal/repository/memory"
	"go-talentmatch-backend/internal/usecase"
	"go-talentmatch-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type matchFixture struct {
	uc         domain.MatchUsecase
	store      *memory.MatchStore
	candidates *fakeCandidateRepo
	jobs       *fakeJobRepo
}

// newMatchFixture seeds the repos. Jobs without an owner belong to recruiter-1.
func newMatchFixture(cfg usecase.MatchConfig, candidates []domain.CandidateProfile, jobs []domain.Job) matchFixture {
	for i := range jobs {
		if jobs[i].OwnerID == "" {
			jobs[i].OwnerID = "recruiter-1"
		}
	}
	f := matchFixture{
		store:      memory.NewMatchStore(),
		candidates: newFakeCandidateRepo(candidates...),
		jobs:       newFakeJobRepo(jobs...),
	}
	scorer := matching.NewScorer(matching.NewNormalizer(nil))
	f.uc = usecase.NewMatchUsecase(f.store, f.candidates, f.jobs, scorer, cfg)
	return f
}

// skills returns "skill01".."skillNN".
func skills(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("skill%02d", i+1)
	}
	return out
}

func collect(t *testing.T, uc domain.MatchUsecase, jobID int64, filter domain.MatchFilter) []domain.Match {
	t.Helper()
	seq, err := uc.ListByJob(recruiterCtx(), jobID, filter)
	require.NoError(t, err)
	var out []domain.Match
	for m, err := range seq {
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func TestEvaluatePair(t *testing.T) {
	ctx := recruiterCtx()

	t.Run("Should score the frontend example at 67 and create a pending match", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{{ID: 1, FullName: "Ana", Skills: []string{"JavaScript", "React", "CSS"}}},
			[]domain.Job{{ID: 10, Title: "Frontend", RequiredSkills: []string{"javascript", "react", "typescript"}}},
		)

		m, err := f.uc.EvaluatePair(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 67, m.Score)
		assert.Equal(t, domain.MatchStatusPending, m.Status)
		assert.Equal(t, []string{"javascript", "react"}, m.Details.MatchedSkills)
		assert.Equal(t, []string{"typescript"}, m.Details.MissingSkills)
	})

	t.Run("Should update the same match when evaluated again", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{{ID: 1, Skills: []string{"go"}}},
			[]domain.Job{{ID: 10, RequiredSkills: []string{"go", "kubernetes"}}},
		)

		first, err := f.uc.EvaluatePair(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 50, first.Score)

		f.candidates.byID[1] = domain.CandidateProfile{ID: 1, Skills: []string{"golang", "k8s"}}
		second, err := f.uc.EvaluatePair(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 100, second.Score)
		assert.Len(t, collect(t, f.uc, 10, domain.MatchFilter{}), 1)
	})

	t.Run("Should refuse to rescore a terminal match", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{{ID: 1, Skills: []string{"go"}}},
			[]domain.Job{{ID: 10, RequiredSkills: []string{"go"}}},
		)
		m, err := f.uc.EvaluatePair(ctx, 1, 10)
		require.NoError(t, err)
		_, err = f.uc.Transition(ctx, m.ID, domain.MatchStatusHired)
		require.NoError(t, err)

		_, err = f.uc.EvaluatePair(ctx, 1, 10)
		assert.ErrorIs(t, err, apperror.ErrConflict)

		stored, err := f.uc.GetMatch(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchStatusHired, stored.Status)
	})

	t.Run("Should reject a job without required skills", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{{ID: 1, Skills: []string{"go"}}},
			[]domain.Job{{ID: 10, RequiredSkills: []string{}}},
		)

		_, err := f.uc.EvaluatePair(ctx, 1, 10)
		assert.ErrorIs(t, err, apperror.ErrValidation)
		assert.Contains(t, err.Error(), "Job 10")
	})

	t.Run("Should reject a malformed candidate skill", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{{ID: 1, Skills: []string{"go\x00"}}},
			[]domain.Job{{ID: 10, RequiredSkills: []string{"go"}}},
		)

		_, err := f.uc.EvaluatePair(ctx, 1, 10)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("Should report unknown candidate and job as not found", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{{ID: 1, Skills: []string{"go"}}},
			[]domain.Job{{ID: 10, RequiredSkills: []string{"go"}}},
		)

		_, err := f.uc.EvaluatePair(ctx, 99, 10)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Contains(t, err.Error(), "Candidate 99")

		_, err = f.uc.EvaluatePair(ctx, 1, 99)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Contains(t, err.Error(), "Job 99")
	})
}

func TestTransition(t *testing.T) {
	ctx := recruiterCtx()
	setup := func(t *testing.T) (matchFixture, *domain.Match) {
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{{ID: 1, Skills: []string{"go"}}},
			[]domain.Job{{ID: 10, RequiredSkills: []string{"go"}}},
		)
		m, err := f.uc.EvaluatePair(ctx, 1, 10)
		require.NoError(t, err)
		return f, m
	}

	t.Run("Should follow the lifecycle and bump the version", func(t *testing.T) {
		f, m := setup(t)

		scheduled, err := f.uc.Transition(ctx, m.ID, domain.MatchStatusInterviewScheduled)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchStatusInterviewScheduled, scheduled.Status)
		assert.Greater(t, scheduled.Version, m.Version)

		accepted, err := f.uc.Transition(ctx, m.ID, domain.MatchStatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchStatusAccepted, accepted.Status)
	})

	t.Run("Should keep a terminal status when asked to leave it", func(t *testing.T) {
		f, m := setup(t)
		_, err := f.uc.Transition(ctx, m.ID, domain.MatchStatusAccepted)
		require.NoError(t, err)

		_, err = f.uc.Transition(ctx, m.ID, domain.MatchStatusRejected)
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

		stored, err := f.uc.GetMatch(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchStatusAccepted, stored.Status)
	})

	t.Run("Should not move back to pending", func(t *testing.T) {
		f, m := setup(t)
		_, err := f.uc.Transition(ctx, m.ID, domain.MatchStatusInterviewScheduled)
		require.NoError(t, err)

		_, err = f.uc.Transition(ctx, m.ID, domain.MatchStatusPending)
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})

	t.Run("Should reject an unknown status", func(t *testing.T) {
		f, m := setup(t)
		_, err := f.uc.Transition(ctx, m.ID, domain.MatchStatus("archived"))
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("Should let exactly one concurrent transition win", func(t *testing.T) {
		f, m := setup(t)

		const workers = 16
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = f.uc.Transition(ctx, m.ID, domain.MatchStatusAccepted)
			}()
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			lost := errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrInvalidTransition)
			assert.True(t, lost, "unexpected error: %v", err)
		}
		assert.Equal(t, 1, wins)
	})
}

func TestListByJob(t *testing.T) {
	ctx := recruiterCtx()

	t.Run("Should order equal scores by creation time", func(t *testing.T) {
		// 18/20 = 90, 15/20 = 75
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{
				{ID: 1, Skills: skills(18)},
				{ID: 2, Skills: skills(15)},
				{ID: 3, Skills: skills(18)},
			},
			[]domain.Job{{ID: 10, RequiredSkills: skills(20)}},
		)
		for _, id := range []int64{1, 2, 3} {
			_, err := f.uc.EvaluatePair(ctx, id, 10)
			require.NoError(t, err)
		}

		got := collect(t, f.uc, 10, domain.MatchFilter{})
		require.Len(t, got, 3)
		assert.Equal(t, []int64{1, 3, 2}, []int64{got[0].CandidateID, got[1].CandidateID, got[2].CandidateID})
		assert.Equal(t, []int{90, 90, 75}, []int{got[0].Score, got[1].Score, got[2].Score})
	})

	t.Run("Should restart the sequence on every range", func(t *testing.T) {
		var profiles []domain.CandidateProfile
		for i := 1; i <= 5; i++ {
			profiles = append(profiles, domain.CandidateProfile{ID: int64(i), Skills: skills(i)})
		}
		f := newMatchFixture(usecase.MatchConfig{PageSize: 2}, profiles, []domain.Job{{ID: 10, RequiredSkills: skills(5)}})
		for i := int64(1); i <= 5; i++ {
			_, err := f.uc.EvaluatePair(ctx, i, 10)
			require.NoError(t, err)
		}

		seq, err := f.uc.ListByJob(ctx, 10, domain.MatchFilter{})
		require.NoError(t, err)

		var first, second []int
		for m, err := range seq {
			require.NoError(t, err)
			first = append(first, m.Score)
		}
		for m, err := range seq {
			require.NoError(t, err)
			second = append(second, m.Score)
		}
		assert.Equal(t, []int{100, 80, 60, 40, 20}, first)
		assert.Equal(t, first, second)
	})

	t.Run("Should continue from a cursor", func(t *testing.T) {
		var profiles []domain.CandidateProfile
		for i := 1; i <= 5; i++ {
			profiles = append(profiles, domain.CandidateProfile{ID: int64(i), Skills: skills(i)})
		}
		f := newMatchFixture(usecase.MatchConfig{PageSize: 2}, profiles, []domain.Job{{ID: 10, RequiredSkills: skills(5)}})
		for i := int64(1); i <= 5; i++ {
			_, err := f.uc.EvaluatePair(ctx, i, 10)
			require.NoError(t, err)
		}

		seq, err := f.uc.ListByJob(ctx, 10, domain.MatchFilter{})
		require.NoError(t, err)
		page, next, err := domain.TakeMatches(seq, 3)
		require.NoError(t, err)
		require.Len(t, page, 3)
		require.NotNil(t, next)

		decoded, err := domain.DecodeMatchCursor(next.Encode())
		require.NoError(t, err)
		rest := collect(t, f.uc, 10, domain.MatchFilter{After: decoded})
		require.Len(t, rest, 2)
		assert.Equal(t, 40, rest[0].Score)
		assert.Equal(t, 20, rest[1].Score)
	})

	t.Run("Should filter by status and minimum score", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{{ID: 1, Skills: skills(4)}, {ID: 2, Skills: skills(2)}, {ID: 3, Skills: skills(3)}},
			[]domain.Job{{ID: 10, RequiredSkills: skills(4)}},
		)
		var ids []*domain.Match
		for _, id := range []int64{1, 2, 3} {
			m, err := f.uc.EvaluatePair(ctx, id, 10)
			require.NoError(t, err)
			ids = append(ids, m)
		}
		_, err := f.uc.Transition(ctx, ids[2].ID, domain.MatchStatusRejected)
		require.NoError(t, err)

		got := collect(t, f.uc, 10, domain.MatchFilter{Statuses: []domain.MatchStatus{domain.MatchStatusPending}, MinScore: 60})
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].CandidateID)
	})

	t.Run("Should validate filters and the job", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{}, nil, []domain.Job{{ID: 10, RequiredSkills: []string{"go"}}})

		_, err := f.uc.ListByJob(ctx, 10, domain.MatchFilter{Statuses: []domain.MatchStatus{"archived"}})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = f.uc.ListByJob(ctx, 10, domain.MatchFilter{MinScore: 101})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = f.uc.ListByJob(ctx, 99, domain.MatchFilter{})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Should list a candidate's matches across jobs", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{{ID: 1, UserID: "cand-1", Skills: []string{"go", "sql"}}},
			[]domain.Job{{ID: 10, RequiredSkills: []string{"go"}}, {ID: 11, RequiredSkills: []string{"go", "rust"}}},
		)
		_, err := f.uc.EvaluatePair(ctx, 1, 11)
		require.NoError(t, err)
		_, err = f.uc.EvaluatePair(ctx, 1, 10)
		require.NoError(t, err)

		seq, err := f.uc.ListByCandidate(actorCtx("cand-1", domain.RoleCandidate), 1, domain.MatchFilter{})
		require.NoError(t, err)
		page, next, err := domain.TakeMatches(seq, 10)
		require.NoError(t, err)
		assert.Nil(t, next)
		require.Len(t, page, 2)
		assert.Equal(t, int64(10), page[0].JobID)
		assert.Equal(t, int64(11), page[1].JobID)
	})
}

func TestShortlist(t *testing.T) {
	ctx := recruiterCtx()
	// scores: 100, 75, 50, 100 (rejected)
	f := newMatchFixture(usecase.MatchConfig{ShortlistMinScore: 70},
		[]domain.CandidateProfile{
			{ID: 1, Skills: skills(4)},
			{ID: 2, Skills: skills(3)},
			{ID: 3, Skills: skills(2)},
			{ID: 4, Skills: skills(4)},
		},
		[]domain.Job{{ID: 10, RequiredSkills: skills(4)}},
	)
	for _, id := range []int64{1, 2, 3, 4} {
		m, err := f.uc.EvaluatePair(ctx, id, 10)
		require.NoError(t, err)
		if id == 4 {
			_, err = f.uc.Transition(ctx, m.ID, domain.MatchStatusRejected)
			require.NoError(t, err)
		}
	}

	score := func(v int) *int { return &v }

	t.Run("Should use the configured threshold by default", func(t *testing.T) {
		got, err := f.uc.Shortlist(ctx, 10, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].CandidateID)
		assert.Equal(t, int64(2), got[1].CandidateID)
	})

	t.Run("Should honour an explicit threshold", func(t *testing.T) {
		got, err := f.uc.Shortlist(ctx, 10, score(40))
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("Should treat zero as a real threshold and reject out of range values", func(t *testing.T) {
		got, err := f.uc.Shortlist(ctx, 10, score(0))
		require.NoError(t, err)
		assert.Len(t, got, 3)

		for _, v := range []int{-5, 101} {
			_, err = f.uc.Shortlist(ctx, 10, score(v))
			assert.ErrorIs(t, err, apperror.ErrValidation, v)
		}
	})

	t.Run("Should return an empty list when nothing qualifies", func(t *testing.T) {
		got, err := f.uc.Shortlist(ctx, 10, score(100))
		require.NoError(t, err)
		require.Len(t, got, 1)

		f2 := newMatchFixture(usecase.MatchConfig{}, nil, []domain.Job{{ID: 20, RequiredSkills: []string{"go"}}})
		empty, err := f2.uc.Shortlist(ctx, 20, nil)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})
}

func TestEvaluateJob(t *testing.T) {
	ctx := recruiterCtx()

	t.Run("Should evaluate every candidate and count skips", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{PageSize: 2, EvaluateConcurrency: 3},
			[]domain.CandidateProfile{
				{ID: 1, Skills: []string{"go"}},
				{ID: 2, Skills: []string{"go", "sql"}},
				{ID: 3, Skills: []string{"sql"}},
				{ID: 4, Skills: []string{"bad\x07skill"}},
				{ID: 5, Skills: []string{"rust"}},
			},
			[]domain.Job{{ID: 10, RequiredSkills: []string{"go", "sql"}}},
		)
		_, err := f.uc.EvaluatePair(ctx, 1, 10)
		require.NoError(t, err)
		closed, err := f.uc.EvaluatePair(ctx, 2, 10)
		require.NoError(t, err)
		_, err = f.uc.Transition(ctx, closed.ID, domain.MatchStatusHired)
		require.NoError(t, err)

		summary, err := f.uc.EvaluateJob(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, domain.EvaluationSummary{
			Evaluated:       3,
			Created:         2,
			Updated:         1,
			SkippedTerminal: 1,
			SkippedInvalid:  1,
		}, *summary)
		assert.Len(t, collect(t, f.uc, 10, domain.MatchFilter{}), 4)
	})

	t.Run("Should refuse a job without required skills", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{}, nil, []domain.Job{{ID: 10}})
		_, err := f.uc.EvaluateJob(ctx, 10)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("Should surface a repository failure", func(t *testing.T) {
		f := newMatchFixture(usecase.MatchConfig{}, nil, []domain.Job{{ID: 10, RequiredSkills: []string{"go"}}})
		f.candidates.fetchErr = errors.New("connection reset")

		_, err := f.uc.EvaluateJob(ctx, 10)
		assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	})
}

func TestEvaluateCandidate(t *testing.T) {
	ctx := recruiterCtx()
	f := newMatchFixture(usecase.MatchConfig{EvaluateConcurrency: 2},
		[]domain.CandidateProfile{{ID: 1, Skills: []string{"python", "ml"}}},
		[]domain.Job{
			{ID: 10, RequiredSkills: []string{"py", "machine learning"}},
			{ID: 11, RequiredSkills: []string{}},
			{ID: 12, RequiredSkills: []string{"python", "spark"}},
		},
	)

	summary, err := f.uc.EvaluateCandidate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.SkippedInvalid)

	seq, err := f.uc.ListByCandidate(actorCtx("admin-1", domain.RoleAdmin), 1, domain.MatchFilter{})
	require.NoError(t, err)
	page, _, err := domain.TakeMatches(seq, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 100, page[0].Score)
	assert.Equal(t, 50, page[1].Score)
}

func TestExportByJob(t *testing.T) {
	ctx := recruiterCtx()
	f := newMatchFixture(usecase.MatchConfig{},
		[]domain.CandidateProfile{{ID: 1, Skills: []string{"go"}}, {ID: 2, Skills: []string{"go", "sql"}}},
		[]domain.Job{{ID: 10, RequiredSkills: []string{"go", "sql"}}},
	)
	for _, id := range []int64{1, 2} {
		_, err := f.uc.EvaluatePair(ctx, id, 10)
		require.NoError(t, err)
	}

	t.Run("Should export csv in ranking order", func(t *testing.T) {
		data, name, err := f.uc.ExportByJob(ctx, 10, usecase.ExportFormatCSV)
		require.NoError(t, err)
		assert.Regexp(t, `^job_10_matches_\d{8}_\d{6}\.csv$`, name)

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "SCORE", records[0][3])
		assert.Equal(t, []string{"2", "100"}, []string{records[1][1], records[1][3]})
		assert.Equal(t, []string{"1", "50"}, []string{records[2][1], records[2][3]})
		assert.Equal(t, "sql", records[2][6])
	})

	t.Run("Should export xlsx by default", func(t *testing.T) {
		data, name, err := f.uc.ExportByJob(ctx, 10, "")
		require.NoError(t, err)
		assert.Contains(t, name, ".xlsx")

		book, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer book.Close()
		rows, err := book.GetRows("Matches")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "MATCH ID", rows[0][0])
		assert.Equal(t, "100", rows[1][3])
	})

	t.Run("Should reject an unknown format", func(t *testing.T) {
		_, _, err := f.uc.ExportByJob(ctx, 10, "pdf")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestMatchAuthorization(t *testing.T) {
	owner := recruiterCtx()
	other := actorCtx("recruiter-2", domain.RoleRecruiter)
	admin := actorCtx("admin-1", domain.RoleAdmin)

	setup := func(t *testing.T) (matchFixture, *domain.Match) {
		f := newMatchFixture(usecase.MatchConfig{},
			[]domain.CandidateProfile{
				{ID: 1, UserID: "cand-1", Skills: []string{"go"}},
				{ID: 2, UserID: "cand-2", Skills: []string{"go"}},
			},
			[]domain.Job{
				{ID: 10, OwnerID: "recruiter-1", RequiredSkills: []string{"go"}},
				{ID: 20, OwnerID: "recruiter-2", RequiredSkills: []string{"go"}},
			},
		)
		m, err := f.uc.EvaluatePair(owner, 1, 10)
		require.NoError(t, err)
		return f, m
	}
	forbidden := func(t *testing.T, err error) {
		t.Helper()
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err), "got %v", err)
	}

	t.Run("Should keep another recruiter away from the job's matches", func(t *testing.T) {
		f, m := setup(t)

		_, err := f.uc.Transition(other, m.ID, domain.MatchStatusRejected)
		forbidden(t, err)
		_, err = f.uc.EvaluatePair(other, 1, 10)
		forbidden(t, err)
		_, err = f.uc.EvaluateJob(other, 10)
		forbidden(t, err)
		_, err = f.uc.ListByJob(other, 10, domain.MatchFilter{})
		forbidden(t, err)
		_, err = f.uc.Shortlist(other, 10, nil)
		forbidden(t, err)
		_, _, err = f.uc.ExportByJob(other, 10, usecase.ExportFormatCSV)
		forbidden(t, err)
		_, err = f.uc.RescoreJob(other, 10)
		forbidden(t, err)
		_, err = f.uc.GetMatch(other, m.ID)
		forbidden(t, err)

		stored, err := f.uc.GetMatch(owner, m.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchStatusPending, stored.Status)
		assert.Equal(t, m.Version, stored.Version)
	})

	t.Run("Should let admins act on any job", func(t *testing.T) {
		f, m := setup(t)

		updated, err := f.uc.Transition(admin, m.ID, domain.MatchStatusInterviewScheduled)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchStatusInterviewScheduled, updated.Status)
	})

	t.Run("Should show a match to its candidate only", func(t *testing.T) {
		f, m := setup(t)

		_, err := f.uc.GetMatch(actorCtx("cand-1", domain.RoleCandidate), m.ID)
		require.NoError(t, err)

		_, err = f.uc.GetMatch(actorCtx("cand-2", domain.RoleCandidate), m.ID)
		forbidden(t, err)
		_, err = f.uc.ListByCandidate(actorCtx("cand-2", domain.RoleCandidate), 1, domain.MatchFilter{})
		forbidden(t, err)
		_, err = f.uc.Transition(actorCtx("cand-1", domain.RoleCandidate), m.ID, domain.MatchStatusAccepted)
		forbidden(t, err)
	})

	t.Run("Should require a caller", func(t *testing.T) {
		f, m := setup(t)

		_, err := f.uc.GetMatch(context.Background(), m.ID)
		assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
		_, err = f.uc.Transition(context.Background(), m.ID, domain.MatchStatusHired)
		assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	})

	t.Run("Should score a candidate against the recruiter's own jobs only", func(t *testing.T) {
		f, _ := setup(t)

		summary, err := f.uc.EvaluateCandidate(other, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.EvaluationSummary{Evaluated: 1, Created: 1}, *summary)

		seq, err := f.uc.ListByCandidate(admin, 2, domain.MatchFilter{})
		require.NoError(t, err)
		page, _, err := domain.TakeMatches(seq, 10)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, int64(20), page[0].JobID)

		_, err = f.uc.EvaluateCandidate(actorCtx("cand-2", domain.RoleCandidate), 2)
		forbidden(t, err)
	})
}

func TestRescoreJob(t *testing.T) {
	ctx := recruiterCtx()
	f := newMatchFixture(usecase.MatchConfig{PageSize: 2},
		[]domain.CandidateProfile{
			{ID: 1, Skills: []string{"go", "sql"}},
			{ID: 2, Skills: []string{"go"}},
			{ID: 3, Skills: []string{"go"}},
		},
		[]domain.Job{{ID: 10, RequiredSkills: []string{"go"}}},
	)
	var hired *domain.Match
	for _, id := range []int64{1, 2, 3} {
		m, err := f.uc.EvaluatePair(ctx, id, 10)
		require.NoError(t, err)
		hired = m
	}
	_, err := f.uc.Transition(ctx, hired.ID, domain.MatchStatusHired)
	require.NoError(t, err)

	job := f.jobs.byID[10]
	job.RequiredSkills = []string{"go", "sql"}
	f.jobs.byID[10] = job

	summary, err := f.uc.RescoreJob(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.EvaluationSummary{Evaluated: 2, Updated: 2}, *summary)

	got := collect(t, f.uc, 10, domain.MatchFilter{})
	require.Len(t, got, 3)
	scores := map[int64]int{}
	for _, m := range got {
		scores[m.CandidateID] = m.Score
	}
	assert.Equal(t, map[int64]int{1: 100, 2: 50, 3: 100}, scores)
}
