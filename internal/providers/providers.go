package providers

import (
	"context"
)

// State is a generation task's lifecycle position as reported by a vendor.
type State string

const (
	StateSubmitted  State = "submitted"
	StateProcessing State = "processing"
	StateSucceed    State = "succeed"
	StateFailed     State = "failed"
)

// Terminal reports whether the state stops polling.
func (s State) Terminal() bool {
	return s == StateSucceed || s == StateFailed
}

// ParseState normalizes a vendor status string, defaulting to processing
// for anything unknown so polling continues rather than wedging.
func ParseState(raw string) State {
	switch State(raw) {
	case StateSubmitted, StateProcessing, StateSucceed, StateFailed:
		return State(raw)
	default:
		return StateProcessing
	}
}

// Request describes one generation submission. Fields a workflow does not
// use stay empty; Extra carries vendor-specific knobs untouched.
type Request struct {
	Workflow       string
	Prompt         string
	NegativePrompt string
	Model          string
	Image          string // base64 payload or URL, workflow dependent
	ImageTail      string
	VideoURL       string
	Duration       string
	Mode           string
	CFGScale       float64
	Extra          map[string]any
}

// Submission identifies an accepted generation request.
type Submission struct {
	TaskID   string
	Workflow string
}

// Status is one poll result. Progress carries free-form vendor fields that
// should remain visible between polls.
type Status struct {
	State     State
	Message   string
	ResultURL string
	Progress  map[string]any
}

// Fields renders the status as sidecar-mergeable fields.
func (s Status) Fields() map[string]any {
	fields := map[string]any{
		"status":     string(s.State),
		"status_msg": s.Message,
	}
	if s.ResultURL != "" {
		fields["url"] = s.ResultURL
	}
	for k, v := range s.Progress {
		fields[k] = v
	}
	return fields
}

// Provider is the capability surface the task state machine depends on.
type Provider interface {
	Name() string
	Submit(ctx context.Context, req Request) (Submission, error)
	PollStatus(ctx context.Context, taskID, workflow string) (Status, error)
}

// Credentials resolves key material for a provider. Implementations are
// injected at project-load time; nothing in the core reads global state.
type Credentials interface {
	ProviderKeys(provider string) (map[string]string, error)
}

// StaticCredentials is a fixed in-memory credential source, used by tests
// and one-off CLI invocations.
type StaticCredentials map[string]map[string]string

func (c StaticCredentials) ProviderKeys(provider string) (map[string]string, error) {
	keys, ok := c[provider]
	if !ok {
		return nil, Wrap(ErrMissingCredential, provider, "keys", "no credentials configured", nil)
	}
	return keys, nil
}
