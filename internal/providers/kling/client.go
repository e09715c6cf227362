package kling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shotmaster/internal/providers"
)

const (
	// ProviderName is what tasks record in their sidecar provenance.
	ProviderName = "kling"

	defaultBaseURL        = "https://api-singapore.klingai.com"
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second

	// credential key names expected from the Credentials source.
	KeyAccess = "access_key"
	KeySecret = "secret_key"
)

// Workflows accepted by Submit and PollStatus.
const (
	WorkflowText2Video    = "text2video"
	WorkflowImage2Video   = "image2video"
	WorkflowMotionControl = "motion-control"
)

// VideoModels lists the model names the API currently accepts.
var VideoModels = []string{
	"kling-v1",
	"kling-v1-5",
	"kling-v1-6",
	"kling-v2-master",
	"kling-v2-1",
	"kling-v2-1-master",
	"kling-v2-5-turbo",
	"kling-v2-6",
}

// Config captures the runtime settings required to talk to Kling.
type Config struct {
	BaseURL string
	// ProxyURL, when set, routes every call through a local forwarding
	// proxy as <proxy>/proxy/<escaped target>.
	ProxyURL       string
	TimeoutSeconds int
}

// Client implements providers.Provider against the Kling HTTP API.
type Client struct {
	cfg        Config
	creds      providers.Credentials
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
	now              func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry overrides the transient-failure retry budget and backoff.
func WithRetry(attempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithClock overrides the time source used for token minting.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a Kling client with the injected credential source.
func NewClient(cfg Config, creds providers.Credentials, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			ProxyURL:       strings.TrimRight(strings.TrimSpace(cfg.ProxyURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		creds:            creds,
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		sleeper:          time.Sleep,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	return client
}

func (c *Client) Name() string { return ProviderName }

// Submit starts a generation job for the request's workflow.
func (c *Client) Submit(ctx context.Context, req providers.Request) (providers.Submission, error) {
	var empty providers.Submission
	payload, endpoint, err := buildPayload(req)
	if err != nil {
		return empty, err
	}
	var parsed apiResponse
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &parsed); err != nil {
		return empty, err
	}
	if parsed.Data.TaskID == "" {
		return empty, providers.Wrap(providers.ErrProvider, ProviderName, "submit", "response carried no task id", nil)
	}
	return providers.Submission{TaskID: parsed.Data.TaskID, Workflow: req.Workflow}, nil
}

// PollStatus fetches the current state of a task.
func (c *Client) PollStatus(ctx context.Context, taskID, workflow string) (providers.Status, error) {
	var empty providers.Status
	if taskID == "" {
		return empty, providers.Wrap(providers.ErrNotFound, ProviderName, "poll", "task id required", nil)
	}
	if workflow == "" {
		workflow = WorkflowText2Video
	}
	endpoint := fmt.Sprintf("/v1/videos/%s/%s", workflow, taskID)
	var parsed apiResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &parsed); err != nil {
		return empty, err
	}

	status := providers.Status{
		State:   providers.ParseState(parsed.Data.TaskStatus),
		Message: parsed.Data.TaskStatusMsg,
	}
	if len(parsed.Data.TaskResult.Videos) > 0 {
		status.ResultURL = parsed.Data.TaskResult.Videos[0].URL
	}
	return status, nil
}

func buildPayload(req providers.Request) (map[string]any, string, error) {
	model := req.Model
	if model == "" {
		model = "kling-v2-6"
	}
	duration := req.Duration
	if duration == "" {
		duration = "5"
	}
	mode := req.Mode
	if mode == "" {
		mode = "std"
	}
	cfgScale := req.CFGScale
	if cfgScale == 0 {
		cfgScale = 0.5
	}

	payload := map[string]any{}
	var endpoint string
	switch req.Workflow {
	case WorkflowText2Video:
		if req.Prompt == "" {
			return nil, "", providers.Wrap(providers.ErrProvider, ProviderName, "submit", "text2video requires a prompt", nil)
		}
		endpoint = "/v1/videos/text2video"
		payload["model_name"] = model
		payload["mode"] = mode
		payload["duration"] = duration
		payload["prompt"] = req.Prompt
		payload["cfg_scale"] = cfgScale
	case WorkflowImage2Video:
		if req.Image == "" {
			return nil, "", providers.Wrap(providers.ErrProvider, ProviderName, "submit", "image2video requires an image", nil)
		}
		endpoint = "/v1/videos/image2video"
		payload["model_name"] = model
		payload["mode"] = mode
		payload["duration"] = duration
		payload["image"] = req.Image
		payload["cfg_scale"] = cfgScale
		if req.Prompt != "" {
			payload["prompt"] = req.Prompt
		}
		if req.ImageTail != "" {
			payload["image_tail"] = req.ImageTail
		}
		if req.NegativePrompt != "" {
			payload["negative_prompt"] = req.NegativePrompt
		}
	case WorkflowMotionControl:
		if req.Image == "" || req.VideoURL == "" {
			return nil, "", providers.Wrap(providers.ErrProvider, ProviderName, "submit", "motion-control requires an image and a video url", nil)
		}
		endpoint = "/v1/videos/motion-control"
		payload["image_url"] = req.Image
		payload["video_url"] = req.VideoURL
		payload["mode"] = mode
		if req.Prompt != "" {
			payload["prompt"] = req.Prompt
		}
	default:
		return nil, "", providers.Wrap(providers.ErrProvider, ProviderName, "submit", fmt.Sprintf("unsupported workflow %q", req.Workflow), nil)
	}
	for k, v := range req.Extra {
		payload[k] = v
	}
	return payload, endpoint, nil
}

type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TaskID        string `json:"task_id"`
		TaskStatus    string `json:"task_status"`
		TaskStatusMsg string `json:"task_status_msg"`
		TaskResult    struct {
			Videos []struct {
				URL string `json:"url"`
			} `json:"videos"`
		} `json:"task_result"`
	} `json:"data"`
}

func (c *Client) token() (string, error) {
	if c.creds == nil {
		return "", providers.Wrap(providers.ErrMissingCredential, ProviderName, "token", "no credential source", nil)
	}
	keys, err := c.creds.ProviderKeys(ProviderName)
	if err != nil {
		return "", err
	}
	access := strings.TrimSpace(keys[KeyAccess])
	secret := strings.TrimSpace(keys[KeySecret])
	if access == "" || secret == "" {
		return "", providers.Wrap(providers.ErrMissingCredential, ProviderName, "token", "access or secret key not set", nil)
	}
	return mintToken(access, secret, c.now())
}

// requestURL builds the final URL, routing through the forwarding proxy
// when one is configured.
func (c *Client) requestURL(endpoint string) string {
	target := c.cfg.BaseURL + endpoint
	if c.cfg.ProxyURL == "" {
		return target
	}
	return c.cfg.ProxyURL + "/proxy/" + url.QueryEscape(target)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload map[string]any, out *apiResponse) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	var lastErr error
	delay := c.retryBaseDelay
	for attempt := 0; attempt <= c.retryMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return providers.Wrap(providers.ErrProvider, ProviderName, "request", "context cancelled", ctx.Err())
			default:
			}
			c.sleeper(delay)
			delay *= 2
			if delay > c.retryMaxDelay {
				delay = c.retryMaxDelay
			}
		}

		lastErr = c.doOnce(ctx, method, endpoint, token, payload, out)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, endpoint, token string, payload map[string]any, out *apiResponse) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return providers.Wrap(providers.ErrProvider, ProviderName, "request", "encode payload", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.requestURL(endpoint), body)
	if err != nil {
		return providers.Wrap(providers.ErrProvider, ProviderName, "request", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return providers.Wrap(providers.ErrTransient, ProviderName, "request", "http call", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.Wrap(providers.ErrTransient, ProviderName, "request", "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return providers.Wrap(providers.ErrMissingCredential, ProviderName, "request",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(data))), nil)
	case resp.StatusCode == http.StatusNotFound:
		return providers.Wrap(providers.ErrNotFound, ProviderName, "request",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return providers.Wrap(providers.ErrTransient, ProviderName, "request",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(data))), nil)
	case resp.StatusCode != http.StatusOK:
		return providers.Wrap(providers.ErrProvider, ProviderName, "request",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(data))), nil)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return providers.Wrap(providers.ErrProvider, ProviderName, "request", "decode response", err)
	}
	if out.Code != 0 {
		return providers.Wrap(providers.ErrProvider, ProviderName, "request",
			fmt.Sprintf("api code %d: %s", out.Code, out.Message), nil)
	}
	return nil
}

func retryable(err error) bool {
	return errors.Is(err, providers.ErrTransient)
}
