package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JustJay7/courtdle-api/internal/cache"
	"github.com/JustJay7/courtdle-api/internal/completion"
	"github.com/JustJay7/courtdle-api/internal/models"
	"github.com/JustJay7/courtdle-api/internal/oyez"
	"github.com/JustJay7/courtdle-api/internal/quiz"
	"github.com/JustJay7/courtdle-api/internal/storage"
	"github.com/JustJay7/courtdle-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOyezServer serves a generated document for every /cases/{term}/{docket}.
func newOyezServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)

		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/cases/"), "/")
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		docket := parts[1]

		doc := map[string]any{
			"name":              "Case " + docket,
			"first_party":       "Petitioner " + docket,
			"second_party":      "Respondent " + docket,
			"facts_of_the_case": "<p>Facts of " + docket + ".</p>",
			"question":          "<p>Question of " + docket + "?</p>",
			"conclusion":        "<p>Respondent " + docket + " prevailed.</p>",
			"heard_by": []any{
				map[string]any{"members": []any{map[string]any{"name": "Justice " + docket}}},
			},
			"decisions": []any{
				map[string]any{
					"decision_type": "majority opinion",
					"majority_vote": 7,
					"minority_vote": 2,
					"winning_party": "Respondent " + docket,
					"votes": []any{
						map[string]any{"member": map[string]any{"name": "Justice " + docket}, "vote": "majority"},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newCompletionServer answers chat completions. Summary prompts are echoed
// back by their first line; verdict prompts are judged by comparing the
// user's choice with the answer line.
func newCompletionServer(t *testing.T, hits *int32, onHit func()) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if onHit != nil {
			onHit()
		}

		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		prompt := req.Messages[0].Content

		var reply string
		switch {
		case strings.HasPrefix(prompt, "Respond"):
			reply = "Incorrect"
			var answer, choice string
			for _, line := range strings.Split(prompt, "\n") {
				if _, v, ok := strings.Cut(line, "about the case): "); ok {
					answer = v
				}
				if v, ok := strings.CutPrefix(line, "User choice: "); ok {
					choice = v
				}
			}
			if answer != "" && answer == choice {
				reply = "Correct"
			}
		default:
			first, _, _ := strings.Cut(prompt, "\n")
			reply = "Summary of " + first
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testApp struct {
	router         *gin.Engine
	cacheDir       string
	oyezHits       *int32
	completionHits *int32
}

const testToday = "2023-01-02"

func testClock() time.Time {
	return time.Date(2023, time.January, 2, 23, 59, 59, 0, time.Local)
}

// newTestApp wires the real clients against local fakes. onCompletion, when
// set, runs on every completion request.
func newTestApp(t *testing.T, onCompletion func()) *testApp {
	t.Helper()
	app := &testApp{oyezHits: new(int32), completionHits: new(int32)}

	oyezSrv := newOyezServer(t, app.oyezHits)
	completionSrv := newCompletionServer(t, app.completionHits, onCompletion)

	log := logger.NewNop()
	client := oyez.NewClient(oyez.Config{BaseURL: oyezSrv.URL, Timeout: 5 * time.Second}, log)
	completer, err := completion.NewOpenAI(completion.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: completionSrv.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	app.cacheDir = t.TempDir()
	store, err := storage.NewLocalStorage(app.cacheDir)
	require.NoError(t, err)

	source := quiz.SourceFunc(func(id models.CaseID) quiz.CaseRecord { return client.Case(id) })
	agg := quiz.NewAggregator(source, completer, cache.NewFileCache(store, ""),
		quiz.WithLogger(log),
		quiz.WithClock(testClock),
	)

	app.router = setupRouter(NewHandlers(agg, newAnswerRepo(t), nil, log))
	return app
}

func TestCasesInfoEndToEnd(t *testing.T) {
	app := newTestApp(t, nil)

	w := doRequest(app.router, http.MethodGet, "/cases_info", "")
	require.Equal(t, http.StatusOK, w.Code)

	var first []models.CaseSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.Len(t, first, 5)
	for i, id := range quiz.DefaultCases {
		assert.Equal(t, id.String(), first[i].CaseID)
		assert.Equal(t, quiz.DefaultTheme, first[i].Theme)
		assert.Equal(t, "Case "+id.Docket, first[i].CaseName)
		assert.Equal(t, []string{"Petitioner " + id.Docket, "Respondent " + id.Docket}, first[i].Parties)
		assert.Equal(t, []string{"Justice " + id.Docket}, first[i].Judges)
		assert.Equal(t, "Question of "+id.Docket+"?", first[i].Question)
		assert.Contains(t, first[i].Summary, "Petitioner "+id.Docket)
	}

	data, err := os.ReadFile(filepath.Join(app.cacheDir, "cases_cache.json"))
	require.NoError(t, err)
	var stored models.Batch
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, testToday, stored.Date)
	assert.Equal(t, first, stored.CasesInfo)

	oyezHits, completionHits := atomic.LoadInt32(app.oyezHits), atomic.LoadInt32(app.completionHits)
	assert.EqualValues(t, 5, oyezHits)
	assert.EqualValues(t, 5, completionHits)

	w = doRequest(app.router, http.MethodGet, "/cases_info", "")
	require.Equal(t, http.StatusOK, w.Code)

	var second []models.CaseSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first, second)
	assert.Equal(t, oyezHits, atomic.LoadInt32(app.oyezHits), "second request must be served from cache")
	assert.Equal(t, completionHits, atomic.LoadInt32(app.completionHits), "second request must be served from cache")
}

func TestCasesInfoSurvivesClientCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client goes away as soon as the first summary is requested.
	var once sync.Once
	app := newTestApp(t, func() { once.Do(cancel) })

	req := httptest.NewRequest(http.MethodGet, "/cases_info", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Error(t, ctx.Err())

	data, err := os.ReadFile(filepath.Join(app.cacheDir, "cases_cache.json"))
	require.NoError(t, err)
	var stored models.Batch
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, testToday, stored.Date)
	assert.Len(t, stored.CasesInfo, 5)
	assert.EqualValues(t, 5, atomic.LoadInt32(app.completionHits))
}

func TestCheckAnswerEndToEnd(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		choice  string
		verdict models.Verdict
	}{
		{choice: "Respondent 492", verdict: models.VerdictCorrect},
		{choice: "Petitioner 492", verdict: models.VerdictIncorrect},
	}

	for _, tt := range tests {
		t.Run(tt.choice, func(t *testing.T) {
			body := fmt.Sprintf(`{"case_id":"1968.492","user_choice":%q}`, tt.choice)
			w := doRequest(app.router, http.MethodPost, "/check_answer", body)
			require.Equal(t, http.StatusOK, w.Code)

			var got models.AnswerResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.verdict, got.Verdict)
			assert.Equal(t, tt.verdict == models.VerdictCorrect, got.Correct)
			assert.Equal(t, []models.JudgeDecision{{Judge: "Justice 492", Vote: "majority"}}, got.Decisions)
			assert.Equal(t, "Summary of Conclusion: Respondent 492 prevailed.", got.Conclusion)
		})
	}
}
