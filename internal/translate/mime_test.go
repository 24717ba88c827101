package translate

import "testing"

func TestGuessMIMEType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"poster.png", "image/png"},
		{"poster.jpg", "image/jpeg"},
		{"poster.jpeg", "image/jpeg"},
		{"POSTER.PNG", "image/png"},
		{"poster.webp", "image/webp"},
		{"poster.txt", "image/jpeg"},
		{"poster", "image/jpeg"},
		{"poster.xyz", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := GuessMIMEType(tt.filename); got != tt.want {
				t.Errorf("GuessMIMEType(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestExtFromMIME(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{"image/jpeg", ".jpg"},
		{"image/jpg", ".jpg"},
		{"image/png", ".png"},
		{"image/webp", ".webp"},
		{"image/gif", ".gif"},
		{"image/heic", ".heic"},
		{"IMAGE/PNG", ".png"},
		{"application/octet-stream", ".png"},
		{"", ".png"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := ExtFromMIME(tt.mimeType); got != tt.want {
				t.Errorf("ExtFromMIME(%q) = %q, want %q", tt.mimeType, got, tt.want)
			}
		})
	}
}
