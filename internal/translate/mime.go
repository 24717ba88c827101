package translate

import (
	"mime"
	"path/filepath"
	"strings"
)

// GuessMIMEType guesses the MIME type from a file extension, falling back to
// image/jpeg for unknown or non-image types
func GuessMIMEType(filename string) string {
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if mt == "" || !strings.HasPrefix(mt, "image/") {
		return "image/jpeg"
	}
	return mt
}

// ExtFromMIME returns the file extension for an image MIME type
func ExtFromMIME(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/heic":
		return ".heic"
	default:
		return ".png"
	}
}
