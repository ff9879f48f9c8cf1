// Package transcribe turns uploaded audio into transcript text.
package transcribe

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thinkscotty/minutes/internal/failure"
)

// Audio is one uploaded recording.
type Audio struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader
}

// SupportedFormats lists the file extensions accepted without an audio MIME type.
var SupportedFormats = []string{"mp3", "wav", "webm", "ogg", "flac", "m4a", "mp4", "aac"}

var allowedTypes = []string{
	"audio/mpeg",
	"audio/mp3",
	"audio/wav",
	"audio/webm",
	"audio/ogg",
	"audio/flac",
	"audio/m4a",
	"audio/mp4",
	"audio/x-m4a",
	"audio/aac",
}

// IsAudio accepts an audio MIME type or, when the browser sent a generic
// type, a recognized file extension.
func IsAudio(name, contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if strings.HasPrefix(ct, "audio/") || slices.Contains(allowedTypes, ct) {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return ext != "" && slices.Contains(SupportedFormats, ext)
}

// Validate checks size and type before any downstream stage runs.
func Validate(a Audio, maxBytes int64) error {
	if a.Data == nil || a.Size == 0 {
		return invalid("Audio file is required")
	}
	if maxBytes > 0 && a.Size > maxBytes {
		return invalid(fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes/1024/1024))
	}
	if !IsAudio(a.Name, a.ContentType) {
		return invalid(fmt.Sprintf("Invalid file type. Received: %s. Please upload an audio file.", a.ContentType))
	}
	return nil
}

func invalid(msg string) error {
	return failure.WithMessage(failure.Wrap(failure.ErrValidation, "transcription", "validate", msg, nil), msg)
}
