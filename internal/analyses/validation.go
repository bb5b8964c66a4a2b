package analyses

import (
	"mime"
	"strings"
)

const (
	ContentTypePDF = "application/pdf"

	// MaxUploadBytes is the largest accepted resume (10 MiB).
	MaxUploadBytes int64 = 10 << 20
)

// ValidateUpload gates an upload before any provider or store call. The type
// check runs first, so an oversized PNG reports the type error.
func ValidateUpload(contentType string, size int64) error {
	if normalizeContentType(contentType) != ContentTypePDF {
		return ErrUnsupportedFileType
	}
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	return nil
}

func normalizeContentType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
	}
	return strings.ToLower(mediaType)
}
