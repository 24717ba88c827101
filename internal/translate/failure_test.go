package translate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/batchlingo/internal/domain"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{
			name: "nil error",
			err:  nil,
			want: domain.ErrorKindNone,
		},
		{
			name: "classified transient",
			err:  NewFailure(domain.ErrorKindTransient, "timeout"),
			want: domain.ErrorKindTransient,
		},
		{
			name: "classified permanent",
			err:  NewFailure(domain.ErrorKindPermanent, "bad input"),
			want: domain.ErrorKindPermanent,
		},
		{
			name: "classified auth",
			err:  NewFailure(domain.ErrorKindAuth, "key rejected"),
			want: domain.ErrorKindAuth,
		},
		{
			name: "wrapped failure",
			err:  fmt.Errorf("translating: %w", NewFailure(domain.ErrorKindAuth, "key rejected")),
			want: domain.ErrorKindAuth,
		},
		{
			name: "unclassified error treated as transient",
			err:  errors.New("something broke"),
			want: domain.ErrorKindTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyErr_HTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   domain.ErrorKind
	}{
		{401, domain.ErrorKindAuth},
		{403, domain.ErrorKindAuth},
		{400, domain.ErrorKindPermanent},
		{404, domain.ErrorKindPermanent},
		{413, domain.ErrorKindPermanent},
		{415, domain.ErrorKindPermanent},
		{422, domain.ErrorKindPermanent},
		{408, domain.ErrorKindTransient},
		{429, domain.ErrorKindTransient},
		{500, domain.ErrorKindTransient},
		{502, domain.ErrorKindTransient},
		{503, domain.ErrorKindTransient},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := &openai.APIError{HTTPStatusCode: tt.status, Message: "test"}
			f := classifyErr(err)
			if f.Kind != tt.want {
				t.Errorf("classifyErr(HTTP %d).Kind = %v, want %v", tt.status, f.Kind, tt.want)
			}
		})
	}
}

func TestClassifyErr_ContextDeadline(t *testing.T) {
	f := classifyErr(context.DeadlineExceeded)
	if f.Kind != domain.ErrorKindTransient {
		t.Errorf("Deadline exceeded classified as %v, want transient", f.Kind)
	}
}

func TestClassifyErr_AlreadyClassified(t *testing.T) {
	orig := NewFailure(domain.ErrorKindPermanent, "unsupported format")
	f := classifyErr(orig)
	if f != orig {
		t.Error("classifyErr should return the original *Failure unchanged")
	}
}
