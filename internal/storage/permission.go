package storage

import (
	"fmt"
	"sync"
)

// Guard gates write access, standing in for the browser permission prompt.
// EnsureWritable is consulted before every mutating primitive.
type Guard interface {
	EnsureWritable(path string) error
}

// AllowAll grants every write. The CLI uses it because opening a folder
// from the command line is itself the grant.
type AllowAll struct{}

func (AllowAll) EnsureWritable(string) error { return nil }

// PromptFunc asks the user for write access to path and reports the answer.
type PromptFunc func(path string) bool

// PromptGuard prompts once per path and caches the outcome, so repeated
// sidecar saves do not re-ask.
type PromptGuard struct {
	prompt PromptFunc

	mu      sync.Mutex
	granted map[string]bool
}

func NewPromptGuard(prompt PromptFunc) *PromptGuard {
	return &PromptGuard{prompt: prompt, granted: make(map[string]bool)}
}

func (g *PromptGuard) EnsureWritable(path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if allowed, ok := g.granted[path]; ok {
		if allowed {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrPermission, path)
	}
	allowed := g.prompt != nil && g.prompt(path)
	g.granted[path] = allowed
	if !allowed {
		return fmt.Errorf("%w: %s", ErrPermission, path)
	}
	return nil
}
