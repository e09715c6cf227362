package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Attachment is anything addressable that can ride along with a
// notification, typically a media item.
type Attachment interface {
	Path() string
}

// Notification is one entry in the session log.
type Notification struct {
	ID       string
	Message  string
	Severity Severity
	Media    Attachment
	OnClick  func()
	OnClose  func()
}

// Option customizes a notification before it is appended.
type Option func(*Notification)

// WithMedia attaches a media item to the notification.
func WithMedia(media Attachment) Option {
	return func(n *Notification) { n.Media = media }
}

// WithOnClick sets the click callback.
func WithOnClick(fn func()) Option {
	return func(n *Notification) { n.OnClick = fn }
}

// WithOnClose sets the close callback, invoked on Remove and Clear.
func WithOnClose(fn func()) Option {
	return func(n *Notification) { n.OnClose = fn }
}

// Center is the process-wide notification list.
type Center struct {
	mu          sync.Mutex
	entries     []Notification
	subscribers []func()
}

func NewCenter() *Center {
	return &Center{}
}

// Subscribe registers fn to run after every mutation. Subscribers fire
// once the in-memory change has been applied, never before.
func (c *Center) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// Add appends a notification and returns its generated id.
func (c *Center) Add(message string, severity Severity, opts ...Option) string {
	if severity == "" {
		severity = SeverityInfo
	}
	entry := Notification{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
	}
	for _, opt := range opts {
		opt(&entry)
	}
	c.mu.Lock()
	c.entries = append(c.entries, entry)
	subs := append([]func(){}, c.subscribers...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
	return entry.ID
}

// Remove drops the entry with id. Its OnClose callback runs before the
// entry leaves the list, so the callback still sees it in List. Unknown
// ids are ignored.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	var onClose func()
	found := false
	for _, entry := range c.entries {
		if entry.ID == id {
			onClose = entry.OnClose
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	if onClose != nil {
		onClose()
	}

	c.mu.Lock()
	kept := c.entries[:0]
	for _, entry := range c.entries {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	c.entries = kept
	subs := append([]func(){}, c.subscribers...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Clear invokes every OnClose callback, then empties the list.
func (c *Center) Clear() {
	c.mu.Lock()
	closed := make([]func(), 0, len(c.entries))
	for _, entry := range c.entries {
		if entry.OnClose != nil {
			closed = append(closed, entry.OnClose)
		}
	}
	c.mu.Unlock()
	for _, fn := range closed {
		fn()
	}

	c.mu.Lock()
	c.entries = nil
	subs := append([]func(){}, c.subscribers...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// List returns a copy of the current entries in insertion order.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of live entries.
func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
