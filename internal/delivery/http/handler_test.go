package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/ledger"
	"github.com/prepwise/interview-api/internal/pool"
	"github.com/prepwise/interview-api/internal/repository"
	"github.com/prepwise/interview-api/internal/repository/memory"
	mockrepo "github.com/prepwise/interview-api/internal/repository/mock"
	"github.com/prepwise/interview-api/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	repo   *mockrepo.InterviewRepository
	gen    *mockrepo.TextGenerator
	pool   *pool.WorkerPool
	pollUC *usecase.PollGenerationUsecase
}

func setupTestRouter(t *testing.T, mode domain.ExecutionMode, poolSize, queueDepth int) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	repo := mockrepo.NewInterviewRepository()
	gen := &mockrepo.TextGenerator{}
	l := ledger.New(memory.NewJobStore(time.Hour), logger)
	wp := pool.NewWorkerPool(poolSize, queueDepth, logger)
	wp.Start(context.Background())
	t.Cleanup(wp.Stop)

	worker := usecase.NewGenerateInterviewUsecase(repo, gen, nil, logger)
	submitUC := usecase.NewSubmitGenerationUsecase(mode, l, wp, worker, logger)
	pollUC := usecase.NewPollGenerationUsecase(l, logger)
	interviewUC := usecase.NewGetInterviewUsecase(repo, logger)

	router := NewRouter(RouterDeps{
		SubmitUC:    submitUC,
		PollUC:      pollUC,
		InterviewUC: interviewUC,
		HealthChecks: map[string]repository.HealthChecker{
			"postgres": &mockrepo.HealthChecker{},
		},
		Logger:          logger,
		RateLimitPerMin: 1000,
		BodyLimit:       1 << 20,
		CORSOrigins:     []string{"*"},
	})

	return &testEnv{router: router, repo: repo, gen: gen, pool: wp, pollUC: pollUC}
}

func (e *testEnv) do(method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return out
}

const validBody = `{"type":"technical","role":"Backend Engineer","level":"Senior","techstack":"Go, Postgres","amount":5,"userid":"u1"}`

// Test: submit -> 202 accepted, poll -> 202 processing, poll -> 200, poll -> 404.
func TestGenerate_AsyncEndToEnd(t *testing.T) {
	env := setupTestRouter(t, domain.ModeAsync, 0, 0)

	release := make(chan struct{})
	env.gen.GenerateFn = func(ctx context.Context, prompt string) (string, error) {
		<-release
		return `["Q1","Q2","Q3","Q4","Q5"]`, nil
	}

	w := env.do(http.MethodPost, "/api/vapi/generate", []byte(validBody))
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	accepted := decode(t, w)
	jobID, _ := accepted["interviewId"].(string)
	if accepted["success"] != true || accepted["status"] != "accepted" || jobID == "" {
		t.Fatalf("unexpected accepted body: %v", accepted)
	}

	w = env.do(http.MethodGet, "/api/vapi/generate?id="+jobID, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 processing, got %d: %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["status"] != "processing" || body["message"] != processingMessage {
		t.Errorf("unexpected processing body: %v", body)
	}

	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for {
		w = env.do(http.MethodGet, "/api/vapi/generate?id="+jobID, nil)
		if w.Code != http.StatusAccepted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job did not complete in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	result := decode(t, w)
	if result["success"] != true || result["documentId"] == "" || result["documentId"] == nil {
		t.Errorf("unexpected result body: %v", result)
	}

	w = env.do(http.MethodGet, "/api/vapi/generate?id="+jobID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on third poll, got %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "Interview not found" {
		t.Errorf("unexpected not-found body: %v", body)
	}

	if env.repo.Count() != 1 {
		t.Errorf("expected 1 stored interview, got %d", env.repo.Count())
	}
}

func TestGenerate_MissingAmount(t *testing.T) {
	env := setupTestRouter(t, domain.ModeAsync, 0, 0)

	w := env.do(http.MethodPost, "/api/vapi/generate",
		[]byte(`{"type":"technical","role":"Backend Engineer","level":"Senior","techstack":"Go","userid":"u1"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decode(t, w)
	msg, _ := body["error"].(string)
	if body["success"] != false || !strings.Contains(msg, "amount") {
		t.Errorf("expected error naming amount, got %v", body)
	}
	if env.gen.Calls() != 0 {
		t.Error("generator must not be called")
	}
}

func TestGenerate_MissingFieldsListed(t *testing.T) {
	env := setupTestRouter(t, domain.ModeAsync, 0, 0)

	w := env.do(http.MethodPost, "/api/vapi/generate", []byte(`{"role":"SRE","techstack":[]}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	want := "Missing required fields: type, level, techstack, amount, userid"
	if body := decode(t, w); body["error"] != want {
		t.Errorf("error = %v, want %q", body["error"], want)
	}
}

func TestGenerate_MalformedJSON(t *testing.T) {
	env := setupTestRouter(t, domain.ModeAsync, 0, 0)

	for _, body := range []string{`{not json`, ``, `{"amount": true}`} {
		w := env.do(http.MethodPost, "/api/vapi/generate", []byte(body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, w.Code)
			continue
		}
		if got := decode(t, w); got["error"] != "invalid JSON input" {
			t.Errorf("body %q: unexpected error %v", body, got["error"])
		}
	}
}

func TestGenerate_AmountAsStringAndStackAsList(t *testing.T) {
	env := setupTestRouter(t, domain.ModeSync, 0, 0)

	w := env.do(http.MethodPost, "/api/vapi/generate",
		[]byte(`{"type":"mixed","role":"Frontend","level":"Junior","techstack":[" React ","Next.js"],"amount":"3","userid":"u9"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	doc := env.repo.Created[0]
	if len(doc.TechStack) != 2 || doc.TechStack[0] != "React" || doc.TechStack[1] != "Next.js" {
		t.Errorf("unexpected techstack %v", doc.TechStack)
	}
}

func TestGenerate_SyncSuccess(t *testing.T) {
	env := setupTestRouter(t, domain.ModeSync, 0, 0)

	w := env.do(http.MethodPost, "/api/vapi/generate", []byte(validBody))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["success"] != true || body["status"] != "completed" || body["documentId"] != "doc-1" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestGenerate_SyncFailure(t *testing.T) {
	env := setupTestRouter(t, domain.ModeSync, 0, 0)
	env.gen.GenerateFn = func(ctx context.Context, prompt string) (string, error) {
		return "I cannot help with that.", nil
	}

	w := env.do(http.MethodPost, "/api/vapi/generate", []byte(validBody))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decode(t, w)
	msg, _ := body["error"].(string)
	if body["success"] != false || body["status"] != "failed" || !strings.HasPrefix(msg, "Internal server error: ") {
		t.Errorf("unexpected body: %v", body)
	}
	if env.repo.Count() != 0 {
		t.Error("no document should be stored")
	}
}

func TestGenerate_AsyncFailureDeliveredByPoll(t *testing.T) {
	env := setupTestRouter(t, domain.ModeAsync, 1, 4)
	env.gen.GenerateFn = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("model unavailable")
	}

	w := env.do(http.MethodPost, "/api/vapi/generate", []byte(validBody))
	jobID, _ := decode(t, w)["interviewId"].(string)

	deadline := time.Now().Add(2 * time.Second)
	for {
		w = env.do(http.MethodGet, "/api/vapi/generate?id="+jobID, nil)
		if w.Code != http.StatusAccepted || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with failure payload, got %d", w.Code)
	}
	body := decode(t, w)
	msg, _ := body["error"].(string)
	if body["success"] != false || !strings.Contains(msg, "model unavailable") {
		t.Errorf("unexpected failure body: %v", body)
	}
}

func TestGenerate_QueueFull(t *testing.T) {
	env := setupTestRouter(t, domain.ModeAsync, 1, 1)

	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{}, 1)
	env.gen.GenerateFn = func(ctx context.Context, prompt string) (string, error) {
		started <- struct{}{}
		<-release
		return `["Q1"]`, nil
	}

	w := env.do(http.MethodPost, "/api/vapi/generate", []byte(validBody))
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	<-started

	// The worker is busy; this one waits in the queue.
	w = env.do(http.MethodPost, "/api/vapi/generate", []byte(validBody))
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected queued 202, got %d", w.Code)
	}

	w = env.do(http.MethodPost, "/api/vapi/generate", []byte(validBody))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPoll_MissingAndUnknownID(t *testing.T) {
	env := setupTestRouter(t, domain.ModeAsync, 0, 0)

	w := env.do(http.MethodGet, "/api/vapi/generate", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "No interview ID provided" {
		t.Errorf("unexpected body: %v", body)
	}

	w = env.do(http.MethodGet, "/api/vapi/generate?id=interview_1_never", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestStream_DeliversTerminalResult(t *testing.T) {
	env := setupTestRouter(t, domain.ModeAsync, 0, 0)

	release := make(chan struct{})
	env.gen.GenerateFn = func(ctx context.Context, prompt string) (string, error) {
		<-release
		return `["Q1"]`, nil
	}

	w := env.do(http.MethodPost, "/api/vapi/generate", []byte(validBody))
	jobID, _ := decode(t, w)["interviewId"].(string)

	wsHandler := NewWebSocketHandler(env.pollUC, zap.NewNop())
	wsHandler.interval = 10 * time.Millisecond
	r := gin.New()
	r.GET("/stream", wsHandler.Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/stream?id="+jobID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var first map[string]any
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first message: %v", err)
	}
	if first["status"] != "processing" {
		t.Errorf("expected processing, got %v", first)
	}

	close(release)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("stream closed before terminal result: %v", err)
		}
		if msg["status"] == "processing" {
			continue
		}
		if msg["success"] != true || msg["documentId"] == nil {
			t.Errorf("unexpected terminal message: %v", msg)
		}
		break
	}

	// The stream consumed the job.
	if w := env.do(http.MethodGet, "/api/vapi/generate?id="+jobID, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after stream, got %d", w.Code)
	}
}

func TestInterviews_GetAndList(t *testing.T) {
	env := setupTestRouter(t, domain.ModeSync, 0, 0)

	w := env.do(http.MethodPost, "/api/vapi/generate", []byte(validBody))
	docID, _ := decode(t, w)["documentId"].(string)

	w = env.do(http.MethodGet, "/api/v1/interviews/"+docID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var interview domain.Interview
	if err := json.Unmarshal(w.Body.Bytes(), &interview); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if interview.UserID != "u1" || !interview.Finalized {
		t.Errorf("unexpected interview: %+v", interview)
	}

	if w := env.do(http.MethodGet, "/api/v1/interviews/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/v1/users/u1/interviews?limit=5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	list, _ := decode(t, w)["interviews"].([]any)
	if len(list) != 1 {
		t.Errorf("expected 1 interview, got %d", len(list))
	}

	if w := env.do(http.MethodGet, "/api/v1/users/u1/interviews?limit=abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/v1/interviews/latest?exclude=u2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if list, _ := decode(t, w)["interviews"].([]any); len(list) != 1 {
		t.Errorf("expected 1 latest interview, got %d", len(list))
	}

	w = env.do(http.MethodGet, "/api/v1/interviews/latest?exclude=u1", nil)
	if list, _ := decode(t, w)["interviews"].([]any); len(list) != 0 {
		t.Errorf("expected own interviews excluded, got %d", len(list))
	}

	if w := env.do(http.MethodGet, "/api/v1/interviews/latest?limit=-1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	logger := zap.NewNop()
	failing := &mockrepo.HealthChecker{CheckFn: func(ctx context.Context) error { return errors.New("down") }}

	r := gin.New()
	r.GET("/health", NewHealthHandler(map[string]repository.HealthChecker{
		"postgres": &mockrepo.HealthChecker{},
		"redis":    failing,
	}, logger).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	body := decode(t, w)
	services, _ := body["services"].(map[string]any)
	if body["status"] != "degraded" || services["postgres"] != "ok" || services["redis"] != "unavailable" {
		t.Errorf("unexpected body: %v", body)
	}
}
