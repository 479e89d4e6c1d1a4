package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JustJay7/courtdle-api/internal/cache"
	"github.com/JustJay7/courtdle-api/internal/database"
	"github.com/JustJay7/courtdle-api/internal/models"
	"github.com/JustJay7/courtdle-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeQuiz struct {
	summaries []models.CaseSummary
	listErr   error
	result    models.AnswerResult
	checkErr  error

	checkedID     models.CaseID
	checkedChoice string
	checkCalls    int
}

func (q *fakeQuiz) ListCases(ctx context.Context) ([]models.CaseSummary, error) {
	return q.summaries, q.listErr
}

func (q *fakeQuiz) CheckAnswer(ctx context.Context, id models.CaseID, userChoice string) (models.AnswerResult, error) {
	q.checkCalls++
	q.checkedID = id
	q.checkedChoice = userChoice
	return q.result, q.checkErr
}

func newAnswerRepo(t *testing.T) *database.AnswerLogRepository {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return database.NewAnswerLogRepository(db)
}

func setupRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	SetupRoutes(router, h)
	return router
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListCases(t *testing.T) {
	quiz := &fakeQuiz{summaries: []models.CaseSummary{
		{CaseID: "1968.492", Theme: "Free Speech", Judges: []string{}, CaseName: "Brandenburg v. Ohio",
			Parties: []string{"Clarence Brandenburg", "Ohio"}, Summary: "A Klan rally."},
	}}
	router := setupRouter(NewHandlers(quiz, nil, nil, logger.NewNop()))

	w := doRequest(router, http.MethodGet, "/cases_info", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.CaseSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, quiz.summaries, got)
}

func TestListCasesFailure(t *testing.T) {
	quiz := &fakeQuiz{listErr: errors.New("oyez unreachable")}
	router := setupRouter(NewHandlers(quiz, nil, nil, logger.NewNop()))

	w := doRequest(router, http.MethodGet, "/cases_info", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "oyez unreachable")
}

func TestCheckAnswer(t *testing.T) {
	quiz := &fakeQuiz{result: models.AnswerResult{
		Correct: true,
		Verdict: models.VerdictCorrect,
		Decisions: []models.JudgeDecision{
			{Judge: "Oliver Wendell Holmes, Jr.", Vote: "majority", OpinionType: "majority"},
		},
		Conclusion: "The conviction was upheld.",
	}}
	answers := newAnswerRepo(t)
	router := setupRouter(NewHandlers(quiz, answers, nil, logger.NewNop()))

	w := doRequest(router, http.MethodPost, "/check_answer", `{"case_id":"1900-1940.249us47","user_choice":"United States"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.AnswerResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, quiz.result, got)
	assert.Equal(t, models.CaseID{Term: "1900-1940", Docket: "249us47"}, quiz.checkedID)
	assert.Equal(t, "United States", quiz.checkedChoice)

	logs, total, err := answers.List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "1900-1940.249us47", logs[0].CaseID)
	assert.Equal(t, "United States", logs[0].UserChoice)
	assert.Equal(t, "correct", logs[0].Verdict)
	assert.True(t, logs[0].Success)
}

func TestCheckAnswerBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "invalid json", body: `{"case_id":`},
		{name: "missing case id", body: `{"user_choice":"Ohio"}`},
		{name: "missing choice", body: `{"case_id":"1968.492"}`},
		{name: "malformed case id", body: `{"case_id":"1968","user_choice":"Ohio"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz := &fakeQuiz{}
			router := setupRouter(NewHandlers(quiz, nil, nil, logger.NewNop()))

			w := doRequest(router, http.MethodPost, "/check_answer", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			assert.Zero(t, quiz.checkCalls)
		})
	}
}

func TestCheckAnswerFailureIsLogged(t *testing.T) {
	quiz := &fakeQuiz{checkErr: errors.New("quota exceeded")}
	answers := newAnswerRepo(t)
	router := setupRouter(NewHandlers(quiz, answers, nil, logger.NewNop()))

	w := doRequest(router, http.MethodPost, "/check_answer", `{"case_id":"1968.492","user_choice":"Ohio"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	logs, _, err := answers.List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	assert.Equal(t, "quota exceeded", logs[0].ErrorMessage)
}

func TestListAnswersAPI(t *testing.T) {
	quiz := &fakeQuiz{result: models.AnswerResult{Verdict: models.VerdictIncorrect, Decisions: []models.JudgeDecision{}}}
	answers := newAnswerRepo(t)
	router := setupRouter(NewHandlers(quiz, answers, nil, logger.NewNop()))

	for _, choice := range []string{"Ohio", "Clarence Brandenburg", "Ohio"} {
		payload, err := json.Marshal(map[string]string{"case_id": "1968.492", "user_choice": choice})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/check_answer", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(router, http.MethodGet, "/api/answers?page=1&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 2)
	assert.Equal(t, map[string]any{"page": float64(1), "limit": float64(2), "total": float64(3)}, body["pagination"])
}

func TestListAnswersAPIWithoutDatabase(t *testing.T) {
	router := setupRouter(NewHandlers(&fakeQuiz{}, nil, nil, logger.NewNop()))

	w := doRequest(router, http.MethodGet, "/api/answers", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthCheck(t *testing.T) {
	stats := cache.NewMemoryCache(4, 0)
	router := setupRouter(NewHandlers(&fakeQuiz{}, newAnswerRepo(t), stats, logger.NewNop()))

	w := doRequest(router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["database"])
	assert.NotNil(t, body["cache"])
}

func TestCacheStats(t *testing.T) {
	stats := cache.NewMemoryCache(4, 0)
	_, err := stats.Get(context.Background(), "2023-01-02")
	require.NoError(t, err)

	router := setupRouter(NewHandlers(&fakeQuiz{}, nil, stats, logger.NewNop()))

	w := doRequest(router, http.MethodGet, "/api/cache/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool             `json:"success"`
		Stats   cache.CacheStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.EqualValues(t, 1, body.Stats.Misses)
}
