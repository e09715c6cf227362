package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shotmaster/internal/logging"
	"shotmaster/internal/notify"
)

// ClipboardEntry is one payload read from the system clipboard.
type ClipboardEntry struct {
	MIME string
	// Name is the original filename when the clipboard preserved one.
	Name string
	Data []byte
}

// Clipboard abstracts the platform clipboard at the interface boundary;
// the core only filters and imports what it is handed.
type Clipboard interface {
	Read(ctx context.Context) ([]ClipboardEntry, error)
}

// ImportClipboard reads the clipboard and imports image and video entries,
// skipping every other MIME type. When nothing importable is present the
// user gets a warning and no files change.
func (f *Folder) ImportClipboard(ctx context.Context, clipboard Clipboard) ([]*Item, error) {
	entries, err := clipboard.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read clipboard: %w", err)
	}

	files := make([]ImportFile, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasPrefix(entry.MIME, "image/") && !strings.HasPrefix(entry.MIME, "video/") {
			continue
		}
		name := entry.Name
		if name == "" {
			ext, ok := ExtForMIME(entry.MIME)
			if !ok {
				continue
			}
			name = "clipboard-" + uuid.NewString() + ext
		}
		files = append(files, ImportFile{Name: name, Data: entry.Data})
	}

	if len(files) == 0 {
		f.log.Warn("clipboard held no importable media")
		if f.notifier != nil {
			f.notifier.Add("Clipboard does not contain images or videos", notify.SeverityWarning)
		}
		return nil, nil
	}

	imported := f.SaveFiles(files)
	f.log.Info("clipboard import finished", logging.Int("count", len(imported)))
	return imported, nil
}

func base64Decode(payload string) ([]byte, error) {
	// Providers sometimes hand back data URLs; strip the prefix.
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}
