package content

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound covers an absent product, a wrong-type product and a
	// missing file alike, so a denial is indistinguishable from absence.
	ErrNotFound = errors.New("content not found")

	// ErrNotEntitled is returned when the user does not own the product.
	ErrNotEntitled = errors.New("not entitled to content")

	// ErrPathEscapesRoot is returned when a file reference resolves
	// outside the content root.
	ErrPathEscapesRoot = errors.New("file reference escapes content root")

	// ErrRangeNotSatisfiable is returned for malformed or out-of-bounds
	// Range headers.
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".epub": "application/epub+zip",
	".mp3":  "audio/mpeg",
	".mpeg": "audio/mpeg",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4", // common for audiobooks in an mp4 container
	".m4v":  "video/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".html": "text/html",
}

// MimeTypeFor maps a file reference's extension to its content type.
// Unknown extensions fall back to a generic binary type.
func MimeTypeFor(ref string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(ref))]; ok {
		return mt
	}
	return "application/octet-stream"
}
