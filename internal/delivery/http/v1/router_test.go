package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-talentmatch-backend/config"
	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-secret"

type MockMatchUsecase struct {
	mock.Mock
}

func (m *MockMatchUsecase) match(args mock.Arguments) (*domain.Match, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockMatchUsecase) EvaluatePair(ctx context.Context, candidateID, jobID int64) (*domain.Match, error) {
	return m.match(m.Called(ctx, candidateID, jobID))
}

func (m *MockMatchUsecase) EvaluateJob(ctx context.Context, jobID int64) (*domain.EvaluationSummary, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationSummary), args.Error(1)
}

func (m *MockMatchUsecase) EvaluateCandidate(ctx context.Context, candidateID int64) (*domain.EvaluationSummary, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationSummary), args.Error(1)
}

func (m *MockMatchUsecase) GetMatch(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	return m.match(m.Called(ctx, id))
}

func (m *MockMatchUsecase) ListByJob(ctx context.Context, jobID int64, filter domain.MatchFilter) (iter.Seq2[domain.Match, error], error) {
	args := m.Called(ctx, jobID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(iter.Seq2[domain.Match, error]), args.Error(1)
}

func (m *MockMatchUsecase) ListByCandidate(ctx context.Context, candidateID int64, filter domain.MatchFilter) (iter.Seq2[domain.Match, error], error) {
	args := m.Called(ctx, candidateID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(iter.Seq2[domain.Match, error]), args.Error(1)
}

func (m *MockMatchUsecase) Shortlist(ctx context.Context, jobID int64, minScore *int) ([]domain.Match, error) {
	args := m.Called(ctx, jobID, minScore)
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockMatchUsecase) RescoreJob(ctx context.Context, jobID int64) (*domain.EvaluationSummary, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationSummary), args.Error(1)
}

func (m *MockMatchUsecase) Transition(ctx context.Context, id uuid.UUID, status domain.MatchStatus) (*domain.Match, error) {
	return m.match(m.Called(ctx, id, status))
}

func (m *MockMatchUsecase) ExportByJob(ctx context.Context, jobID int64, format string) ([]byte, string, error) {
	args := m.Called(ctx, jobID, format)
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func seqOf(matches ...domain.Match) iter.Seq2[domain.Match, error] {
	return func(yield func(domain.Match, error) bool) {
		for _, m := range matches {
			if !yield(m, nil) {
				return
			}
		}
	}
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                  testSecret,
		FrontendURL:                "https://talentmatch.example.com",
		MatchPageSize:              2,
		RateLimitWindowSeconds:     60,
		RateLimitGlobalThreshold:   10000,
		RateLimitUploadThreshold:   10000,
		RateLimitEvaluateThreshold: 10000,
	}
}

func newTestRouter(matchUC domain.MatchUsecase) *gin.Engine {
	return newTestRouterWith(matchUC, testConfig())
}

func newTestRouterWith(matchUC domain.MatchUsecase, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{MatchUC: matchUC, Config: cfg})
}

func bearer(t *testing.T, sub, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func do(r http.Handler, method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Kind string `json:"kind"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestRouter_PublicAndAuth(t *testing.T) {
	r := newTestRouter(new(MockMatchUsecase))

	t.Run("Should answer health without a token", func(t *testing.T) {
		w := do(r, http.MethodGet, "/v1/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("Should require a token for matches", func(t *testing.T) {
		w := do(r, http.MethodGet, "/v1/jobs/1/matches", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should keep candidates out of recruiter routes", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/matches", bearer(t, "cand-1", domain.RoleCandidate),
			EvaluatePairRequest{CandidateID: 1, JobID: 2})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestMatchHandler(t *testing.T) {
	auth := bearer(t, "recruiter-1", domain.RoleRecruiter)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	m1 := domain.Match{ID: uuid.New(), CandidateID: 1, JobID: 7, Score: 90, Status: domain.MatchStatusPending, CreatedAt: now}
	m2 := domain.Match{ID: uuid.New(), CandidateID: 3, JobID: 7, Score: 90, Status: domain.MatchStatusPending, CreatedAt: now.Add(time.Second)}
	m3 := domain.Match{ID: uuid.New(), CandidateID: 2, JobID: 7, Score: 75, Status: domain.MatchStatusPending, CreatedAt: now}

	t.Run("Should evaluate a pair", func(t *testing.T) {
		uc := new(MockMatchUsecase)
		uc.On("EvaluatePair", mock.Anything, int64(1), int64(7)).Return(&m1, nil).Once()

		w := do(newTestRouter(uc), http.MethodPost, "/v1/matches", auth, EvaluatePairRequest{CandidateID: 1, JobID: 7})
		require.Equal(t, http.StatusOK, w.Code)

		var got domain.Match
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
		assert.Equal(t, m1.ID, got.ID)
		assert.Equal(t, 90, got.Score)
		uc.AssertExpectations(t)
	})

	t.Run("Should pass the caller to the usecase", func(t *testing.T) {
		uc := new(MockMatchUsecase)
		uc.On("GetMatch", mock.MatchedBy(func(ctx context.Context) bool {
			actor, ok := domain.ActorFromContext(ctx)
			return ok && actor.UserID == "recruiter-1"
		}), m1.ID).Return(&m1, nil).Once()

		w := do(newTestRouter(uc), http.MethodGet, "/v1/matches/"+m1.ID.String(), auth, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertExpectations(t)
	})

	t.Run("Should reject a malformed pair body", func(t *testing.T) {
		uc := new(MockMatchUsecase)
		w := do(newTestRouter(uc), http.MethodPost, "/v1/matches", auth, map[string]any{"candidate_id": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decode(t, w).Error.Kind)
		uc.AssertNotCalled(t, "EvaluatePair", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should map usecase errors to status codes", func(t *testing.T) {
		uc := new(MockMatchUsecase)
		uc.On("EvaluatePair", mock.Anything, int64(1), int64(7)).
			Return(nil, apperror.Conflict("Match is hired and cannot be rescored")).Once()
		uc.On("Transition", mock.Anything, m1.ID, domain.MatchStatusPending).
			Return(nil, apperror.InvalidTransition("Cannot move match from accepted to pending")).Once()
		r := newTestRouter(uc)

		w := do(r, http.MethodPost, "/v1/matches", auth, EvaluatePairRequest{CandidateID: 1, JobID: 7})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "conflict", decode(t, w).Error.Kind)

		w = do(r, http.MethodPatch, "/v1/matches/"+m1.ID.String()+"/status", auth, UpdateMatchStatusRequest{Status: domain.MatchStatusPending})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "invalid_transition", decode(t, w).Error.Kind)
	})

	t.Run("Should page ranked matches with a cursor", func(t *testing.T) {
		uc := new(MockMatchUsecase)
		uc.On("ListByJob", mock.Anything, int64(7), domain.MatchFilter{}).Return(seqOf(m1, m2, m3), nil).Once()

		w := do(newTestRouter(uc), http.MethodGet, "/v1/jobs/7/matches", auth, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page MatchPage
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
		require.Len(t, page.Matches, 2)
		assert.Equal(t, m1.ID, page.Matches[0].ID)
		assert.Equal(t, m2.ID, page.Matches[1].ID)
		require.NotEmpty(t, page.NextCursor)

		cursor, err := domain.DecodeMatchCursor(page.NextCursor)
		require.NoError(t, err)
		assert.Equal(t, m2.ID, cursor.ID)
		assert.Equal(t, m2.Score, cursor.Score)
		assert.True(t, m2.CreatedAt.Equal(cursor.CreatedAt))
	})

	t.Run("Should parse list filters", func(t *testing.T) {
		uc := new(MockMatchUsecase)
		uc.On("ListByJob", mock.Anything, int64(7), mock.MatchedBy(func(f domain.MatchFilter) bool {
			return len(f.Statuses) == 2 && f.Statuses[1] == domain.MatchStatusInterviewScheduled && f.MinScore == 80
		})).Return(seqOf(m1), nil).Once()

		w := do(newTestRouter(uc), http.MethodGet, "/v1/jobs/7/matches?status=pending,%20interview_scheduled&min_score=80&limit=5", auth, nil)
		require.Equal(t, http.StatusOK, w.Code)
		uc.AssertExpectations(t)
	})

	t.Run("Should reject bad query values", func(t *testing.T) {
		r := newTestRouter(new(MockMatchUsecase))
		for _, q := range []string{"cursor=not-a-cursor", "limit=0", "min_score=high"} {
			w := do(r, http.MethodGet, "/v1/jobs/7/matches?"+q, auth, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
		}
		w := do(r, http.MethodGet, "/v1/jobs/abc/matches", auth, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should stream an export as an attachment", func(t *testing.T) {
		uc := new(MockMatchUsecase)
		uc.On("ExportByJob", mock.Anything, int64(7), "csv").
			Return([]byte("candidate_id,score\n1,90\n"), "job_7_matches.csv", nil).Once()

		w := do(newTestRouter(uc), http.MethodGet, "/v1/jobs/7/matches/export?format=csv", auth, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=job_7_matches.csv", w.Header().Get("Content-Disposition"))
		assert.Equal(t, "candidate_id,score\n1,90\n", w.Body.String())
	})

	t.Run("Should forward the shortlist threshold", func(t *testing.T) {
		scoreIs := func(want int) any {
			return mock.MatchedBy(func(v *int) bool { return v != nil && *v == want })
		}
		uc := new(MockMatchUsecase)
		uc.On("Shortlist", mock.Anything, int64(7), scoreIs(85)).Return([]domain.Match{m1}, nil).Once()
		uc.On("Shortlist", mock.Anything, int64(7), scoreIs(0)).Return([]domain.Match{m1, m3}, nil).Once()
		uc.On("Shortlist", mock.Anything, int64(7), (*int)(nil)).Return([]domain.Match{m1}, nil).Once()
		r := newTestRouter(uc)

		for _, path := range []string{"/v1/jobs/7/shortlist?min_score=85", "/v1/jobs/7/shortlist?min_score=0", "/v1/jobs/7/shortlist"} {
			w := do(r, http.MethodGet, path, auth, nil)
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
		uc.AssertExpectations(t)
	})
}

func TestRouter_EvaluateRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEvaluateThreshold = 1

	uc := new(MockMatchUsecase)
	uc.On("EvaluateJob", mock.Anything, int64(7)).Return(&domain.EvaluationSummary{Evaluated: 3, Created: 3}, nil).Once()
	r := newTestRouterWith(uc, cfg)
	auth := bearer(t, "recruiter-batch", domain.RoleRecruiter)

	t.Run("Should throttle batch evaluation on its own threshold", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/jobs/7/matches/evaluate", auth, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

		w = do(r, http.MethodPost, "/v1/jobs/7/matches/evaluate", auth, nil)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		uc.AssertExpectations(t)
	})
}
