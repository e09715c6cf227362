package media

import (
	"sync"

	"github.com/google/uuid"
)

// displayRegistry holds the process-local byte handles backing display
// URLs. Handles live until explicitly revoked; leaking them leaks memory,
// which mirrors the object-URL contract the UI is written against.
type displayRegistry struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

var display = &displayRegistry{blobs: make(map[string][]byte)}

func (r *displayRegistry) register(data []byte) string {
	url := "blob:shotmaster/" + uuid.NewString()
	r.mu.Lock()
	r.blobs[url] = data
	r.mu.Unlock()
	return url
}

func (r *displayRegistry) revoke(url string) {
	r.mu.Lock()
	delete(r.blobs, url)
	r.mu.Unlock()
}

// ResolveDisplayURL returns the bytes behind a display URL, for renderers.
func ResolveDisplayURL(url string) ([]byte, bool) {
	display.mu.Lock()
	defer display.mu.Unlock()
	data, ok := display.blobs[url]
	return data, ok
}
