// Package solver is the client for a remote CAPTCHA-solving provider
// speaking the two-phase createTask/getTaskResult protocol.
//
// A solve is a small state machine: Created -> Polling -> one of Solved,
// Failed, TimedOut. The solver knows nothing about jurisdiction page
// structure; it receives a site URL, a site key, and a challenge kind, and
// returns a token. Injecting that token into the page is the engine's job.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docket-watch/acquire/internal/errdefs"
	"github.com/rs/zerolog/log"
)

// Kind is the challenge widget family.
type Kind string

const (
	KindTurnstile   Kind = "Turnstile"
	KindRecaptchaV2 Kind = "RecaptchaV2"
)

// State tracks where a task is in its lifecycle.
type State string

const (
	StateCreated  State = "Created"
	StatePolling  State = "Polling"
	StateSolved   State = "Solved"
	StateFailed   State = "Failed"
	StateTimedOut State = "TimedOut"
)

// Task is one challenge-solving attempt. It is created on first challenge
// detection and discarded after the token is consumed or the task fails.
type Task struct {
	TaskID  string
	SiteURL string
	SiteKey string
	Kind    Kind
	State   State
	Token   string
}

// Client talks to the solving provider.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	interval time.Duration
	maxPolls int
}

// NewClient creates a solver client. interval and maxPolls bound the polling
// loop; with the defaults (3s, 40) a solve is abandoned after two minutes.
func NewClient(endpoint, apiKey string, interval time.Duration, maxPolls int) *Client {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if maxPolls <= 0 {
		maxPolls = 40
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
		interval: interval,
		maxPolls: maxPolls,
	}
}

type createTaskRequest struct {
	ClientKey string   `json:"clientKey"`
	Task      taskSpec `json:"task"`
}

type taskSpec struct {
	Type       string `json:"type"`
	WebsiteURL string `json:"websiteURL"`
	WebsiteKey string `json:"websiteKey"`
}

type createTaskResponse struct {
	ErrorID          int    `json:"errorId"`
	ErrorCode        string `json:"errorCode,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
	TaskID           string `json:"taskId,omitempty"`
}

type taskResultRequest struct {
	ClientKey string `json:"clientKey"`
	TaskID    string `json:"taskId"`
}

type taskResultResponse struct {
	ErrorID          int    `json:"errorId"`
	ErrorCode        string `json:"errorCode,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
	Status           string `json:"status,omitempty"`
	Solution         *struct {
		Token              string `json:"token,omitempty"`
		GRecaptchaResponse string `json:"gRecaptchaResponse,omitempty"`
	} `json:"solution,omitempty"`
}

func taskType(kind Kind) string {
	if kind == KindRecaptchaV2 {
		return "ReCaptchaV2TaskProxyLess"
	}
	return "AntiTurnstileTaskProxyLess"
}

// Solve runs the full protocol and returns the challenge token. The context
// deadline aborts both the create call and the polling loop; cancellation
// surfaces as a Timeout classification.
func (c *Client) Solve(ctx context.Context, task *Task) (string, error) {
	if c.apiKey == "" {
		return "", errdefs.ConfigurationMissing("solver API key is not configured")
	}

	if err := c.createTask(ctx, task); err != nil {
		task.State = StateFailed
		return "", err
	}

	token, err := c.poll(ctx, task)
	if err != nil {
		return "", err
	}

	task.State = StateSolved
	task.Token = token
	return token, nil
}

func (c *Client) createTask(ctx context.Context, task *Task) error {
	req := createTaskRequest{
		ClientKey: c.apiKey,
		Task: taskSpec{
			Type:       taskType(task.Kind),
			WebsiteURL: task.SiteURL,
			WebsiteKey: task.SiteKey,
		},
	}

	var resp createTaskResponse
	if err := c.post(ctx, "/createTask", req, &resp); err != nil {
		return err
	}

	if resp.ErrorID != 0 {
		return errdefs.Upstream(0, fmt.Sprintf("solver rejected task: %s (%s)", resp.ErrorCode, resp.ErrorDescription), nil)
	}
	if resp.TaskID == "" {
		return errdefs.Upstream(0, "solver returned no task id", nil)
	}

	task.TaskID = resp.TaskID
	task.State = StatePolling

	log.Debug().
		Str("task_id", task.TaskID).
		Str("kind", string(task.Kind)).
		Str("site_url", task.SiteURL).
		Msg("Solver task created")

	return nil
}

// poll checks the task result at a fixed interval until the provider reports
// ready or failed, or the poll ceiling is reached. The wait is a cancellable
// timer, never a bare sleep, so an overall request deadline aborts promptly.
func (c *Client) poll(ctx context.Context, task *Task) (string, error) {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= c.maxPolls; attempt++ {
		select {
		case <-timer.C:
		case <-ctx.Done():
			task.State = StateTimedOut
			return "", errdefs.Timeout("challenge solve cancelled", ctx.Err())
		}

		var resp taskResultResponse
		if err := c.post(ctx, "/getTaskResult", taskResultRequest{ClientKey: c.apiKey, TaskID: task.TaskID}, &resp); err != nil {
			task.State = StateFailed
			return "", err
		}

		switch {
		case resp.ErrorID != 0 || resp.Status == "failed":
			task.State = StateFailed
			log.Debug().
				Str("task_id", task.TaskID).
				Str("error_code", resp.ErrorCode).
				Msg("Solver reported failure")
			return "", errdefs.ChallengeUnsolved(fmt.Sprintf("solver failed: %s", resp.ErrorCode))

		case resp.Status == "ready":
			if resp.Solution == nil {
				task.State = StateFailed
				return "", errdefs.Upstream(0, "solver reported ready without a solution", nil)
			}
			token := resp.Solution.Token
			if token == "" {
				token = resp.Solution.GRecaptchaResponse
			}
			if token == "" {
				task.State = StateFailed
				return "", errdefs.Upstream(0, "solver solution contained no token", nil)
			}
			log.Debug().
				Str("task_id", task.TaskID).
				Int("polls", attempt).
				Msg("Challenge solved")
			return token, nil
		}

		// still processing
		timer.Reset(c.interval)
	}

	task.State = StateTimedOut
	return "", errdefs.Timeout(fmt.Sprintf("challenge not solved after %d polls", c.maxPolls), nil)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errdefs.Upstream(0, "encode solver request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return errdefs.Upstream(0, "build solver request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errdefs.Classify(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errdefs.Classify(err)
	}

	// Providers return JSON bodies even on 5xx; try to decode before
	// falling back to a status-based error.
	if err := json.Unmarshal(data, out); err != nil {
		return errdefs.Upstream(resp.StatusCode, "unparseable solver response", err)
	}
	return nil
}
