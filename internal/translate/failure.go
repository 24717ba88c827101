package translate

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"codeberg.org/snonux/batchlingo/internal/domain"
)

// Failure is a classified translation error
type Failure struct {
	Kind    domain.ErrorKind
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// NewFailure creates a classified failure
func NewFailure(kind domain.ErrorKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind from a classified error.
// Unclassified errors are treated as transient so they flow through the
// normal retry path.
func KindOf(err error) domain.ErrorKind {
	if err == nil {
		return domain.ErrorKindNone
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return domain.ErrorKindTransient
}

// classifyErr maps a raw provider error to a *Failure.
// HTTP 401/403 means the credential was rejected (auth, batch-fatal);
// 4xx input errors are permanent; everything network-ish is transient.
func classifyErr(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) {
		return classifyStatus(openaiErr.HTTPStatusCode, err)
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return classifyStatus(genaiErr.Code, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewFailure(domain.ErrorKindTransient, "request timed out: %v", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewFailure(domain.ErrorKindTransient, "network error: %v", err)
	}

	return NewFailure(domain.ErrorKindTransient, "%v", err)
}

func classifyStatus(status int, err error) *Failure {
	switch {
	case status == 401 || status == 403:
		return NewFailure(domain.ErrorKindAuth, "credential rejected (HTTP %d): %v", status, err)
	case status == 408 || status == 429:
		return NewFailure(domain.ErrorKindTransient, "service busy (HTTP %d): %v", status, err)
	case status >= 400 && status < 500:
		return NewFailure(domain.ErrorKindPermanent, "input rejected (HTTP %d): %v", status, err)
	default:
		return NewFailure(domain.ErrorKindTransient, "service error (HTTP %d): %v", status, err)
	}
}
