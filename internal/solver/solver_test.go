package solver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docket-watch/acquire/internal/errdefs"
)

func newTestTask() *Task {
	return &Task{
		SiteURL: "https://edocket.example.gov/docket/1",
		SiteKey: "0xTESTKEY",
		Kind:    KindTurnstile,
		State:   StateCreated,
	}
}

// solverStub emulates the createTask/getTaskResult provider protocol.
type solverStub struct {
	createResp  map[string]interface{}
	resultAfter int32 // polls before status flips to ready
	resultResp  map[string]interface{}
	polls       int32
}

func (s *solverStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/createTask":
			json.NewEncoder(w).Encode(s.createResp)
		case "/getTaskResult":
			n := atomic.AddInt32(&s.polls, 1)
			if s.resultAfter > 0 && n < s.resultAfter {
				json.NewEncoder(w).Encode(map[string]interface{}{"errorId": 0, "status": "processing"})
				return
			}
			json.NewEncoder(w).Encode(s.resultResp)
		default:
			http.NotFound(w, r)
		}
	})
}

func TestSolveReadyAfterPolling(t *testing.T) {
	stub := &solverStub{
		createResp:  map[string]interface{}{"errorId": 0, "taskId": "task-1"},
		resultAfter: 5,
		resultResp: map[string]interface{}{
			"errorId": 0,
			"status":  "ready",
			"solution": map[string]string{
				"token": "turnstile-token-xyz",
			},
		},
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	c := NewClient(server.URL, "key", time.Millisecond, 40)
	task := newTestTask()
	token, err := c.Solve(context.Background(), task)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if token != "turnstile-token-xyz" {
		t.Errorf("token = %q", token)
	}
	if task.State != StateSolved {
		t.Errorf("State = %s, want Solved", task.State)
	}
	if got := atomic.LoadInt32(&stub.polls); got != 5 {
		t.Errorf("Expected exactly 5 polls, got %d", got)
	}
}

func TestSolveRecaptchaTokenField(t *testing.T) {
	stub := &solverStub{
		createResp: map[string]interface{}{"errorId": 0, "taskId": "task-2"},
		resultResp: map[string]interface{}{
			"errorId": 0,
			"status":  "ready",
			"solution": map[string]string{
				"gRecaptchaResponse": "recaptcha-token-abc",
			},
		},
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	c := NewClient(server.URL, "key", time.Millisecond, 40)
	task := newTestTask()
	task.Kind = KindRecaptchaV2
	token, err := c.Solve(context.Background(), task)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if token != "recaptcha-token-abc" {
		t.Errorf("token = %q", token)
	}
}

func TestSolvePollCeilingIsTimeout(t *testing.T) {
	stub := &solverStub{
		createResp: map[string]interface{}{"errorId": 0, "taskId": "task-3"},
		resultResp: map[string]interface{}{"errorId": 0, "status": "processing"},
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	c := NewClient(server.URL, "key", time.Millisecond, 4)
	task := newTestTask()
	_, err := c.Solve(context.Background(), task)
	if !errdefs.IsKind(err, errdefs.KindTimeout) {
		t.Fatalf("Expected Timeout at poll ceiling, got %v", err)
	}
	if task.State != StateTimedOut {
		t.Errorf("State = %s, want TimedOut", task.State)
	}
	if got := atomic.LoadInt32(&stub.polls); got != 4 {
		t.Errorf("Expected exactly 4 polls, got %d", got)
	}
}

func TestSolveProviderFailureIsChallengeUnsolved(t *testing.T) {
	stub := &solverStub{
		createResp: map[string]interface{}{"errorId": 0, "taskId": "task-4"},
		resultResp: map[string]interface{}{"errorId": 1, "errorCode": "ERROR_CAPTCHA_UNSOLVABLE"},
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	c := NewClient(server.URL, "key", time.Millisecond, 40)
	task := newTestTask()
	_, err := c.Solve(context.Background(), task)
	if !errdefs.IsKind(err, errdefs.KindChallengeUnsolved) {
		t.Fatalf("Expected ChallengeUnsolved, got %v", err)
	}
	if task.State != StateFailed {
		t.Errorf("State = %s, want Failed", task.State)
	}
}

func TestSolveCreateRejection(t *testing.T) {
	stub := &solverStub{
		createResp: map[string]interface{}{"errorId": 1, "errorCode": "ERROR_KEY_DENIED_ACCESS"},
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	c := NewClient(server.URL, "key", time.Millisecond, 40)
	_, err := c.Solve(context.Background(), newTestTask())
	if !errdefs.IsKind(err, errdefs.KindUpstream) {
		t.Fatalf("Expected Upstream for create rejection, got %v", err)
	}
}

func TestSolveMissingTaskID(t *testing.T) {
	stub := &solverStub{
		createResp: map[string]interface{}{"errorId": 0},
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	c := NewClient(server.URL, "key", time.Millisecond, 40)
	_, err := c.Solve(context.Background(), newTestTask())
	if !errdefs.IsKind(err, errdefs.KindUpstream) {
		t.Fatalf("Expected Upstream for missing task id, got %v", err)
	}
}

func TestSolveCancelledDuringPolling(t *testing.T) {
	stub := &solverStub{
		createResp: map[string]interface{}{"errorId": 0, "taskId": "task-5"},
		resultResp: map[string]interface{}{"errorId": 0, "status": "processing"},
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	c := NewClient(server.URL, "key", 10*time.Second, 40)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	task := newTestTask()
	_, err := c.Solve(ctx, task)
	if !errdefs.IsKind(err, errdefs.KindTimeout) {
		t.Fatalf("Expected Timeout on cancellation, got %v", err)
	}
	if task.State != StateTimedOut {
		t.Errorf("State = %s, want TimedOut", task.State)
	}
}

func TestSolveWithoutKeyFailsFast(t *testing.T) {
	c := NewClient("https://solver.example", "", time.Millisecond, 4)
	_, err := c.Solve(context.Background(), newTestTask())
	if !errdefs.IsKind(err, errdefs.KindConfigurationMissing) {
		t.Fatalf("Expected ConfigurationMissing, got %v", err)
	}
}

func TestTaskTypeMapping(t *testing.T) {
	if got := taskType(KindTurnstile); got != "AntiTurnstileTaskProxyLess" {
		t.Errorf("taskType(Turnstile) = %q", got)
	}
	if got := taskType(KindRecaptchaV2); got != "ReCaptchaV2TaskProxyLess" {
		t.Errorf("taskType(RecaptchaV2) = %q", got)
	}
}
