package media

import (
	"path"
	"strings"
)

// Kind is the closed set of media types the tree recognizes.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

var extKinds = map[string]Kind{
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".webp": KindImage,
	".gif":  KindImage,
	".mp4":  KindVideo,
	".mov":  KindVideo,
	".webm": KindVideo,
	".avi":  KindVideo,
	".mp3":  KindAudio,
	".wav":  KindAudio,
	".m4a":  KindAudio,
}

var extMIMEs = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
}

var mimeExts = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
	"video/x-msvideo": ".avi",
	"audio/mpeg":      ".mp3",
	"audio/wav":       ".wav",
	"audio/mp4":       ".m4a",
}

// ClassifyName maps a filename to its media kind by extension.
func ClassifyName(name string) (Kind, bool) {
	kind, ok := extKinds[strings.ToLower(path.Ext(name))]
	return kind, ok
}

// MIMEForName returns the MIME type for a media filename, defaulting to a
// generic byte stream for unknown extensions.
func MIMEForName(name string) string {
	if mime, ok := extMIMEs[strings.ToLower(path.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// ExtForMIME returns the canonical extension for a media MIME type.
func ExtForMIME(mime string) (string, bool) {
	ext, ok := mimeExts[strings.ToLower(strings.TrimSpace(mime))]
	return ext, ok
}
