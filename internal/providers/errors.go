package providers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProvider marks a network or service failure from a generation call.
	ErrProvider = errors.New("provider error")
	// ErrMissingCredential marks failures caused by absent or rejected keys.
	ErrMissingCredential = errors.New("missing credential")
	// ErrNotFound marks an unknown task id.
	ErrNotFound = errors.New("task not found")
	// ErrTransient marks failures worth retrying.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes provider context while tagging
// it with the provided marker for later classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, provider, operation, message string, err error) error {
	detail := buildDetail(provider, operation, message)
	if marker == nil {
		marker = ErrProvider
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

var credentialHints = []string{
	"api key",
	"apikey",
	"credential",
	"unauthorized",
	"invalid token",
	"authentication",
}

// IsMissingCredential reports whether err looks like a key problem, either
// by sentinel or by the key-related substrings vendors put in their error
// messages.
func IsMissingCredential(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingCredential) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range credentialHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

func buildDetail(provider, operation, message string) string {
	parts := make([]string, 0, 3)
	if provider = strings.TrimSpace(provider); provider != "" {
		parts = append(parts, provider)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "provider failure"
	}
	return strings.Join(parts, ": ")
}
