package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "[invalid_input] unknown target", New(ErrKindInvalidInput, "unknown target").Error())

	err := Wrap(ErrKindTimeout, "collect metadata", context.DeadlineExceeded)
	assert.Equal(t, "[timeout] collect metadata: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"not found", New(ErrKindNotFound, "x"), IsNotFound},
		{"timeout", New(ErrKindTimeout, "x"), IsTimeout},
		{"connection", New(ErrKindConnectionFailed, "x"), IsConnectionFailed},
		{"query", New(ErrKindQueryFailed, "x"), IsQueryFailed},
		{"input", New(ErrKindInvalidInput, "x"), IsInvalidInput},
		{"permission", New(ErrKindPermissionDenied, "x"), IsPermissionDenied},
		{"cycle", Newf(ErrKindCircularDependency, "type %q", "a"), IsCircularDependency},
		{"generation", New(ErrKindGenerationFailed, "x"), IsGenerationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.pred(tt.err))
			assert.True(t, tt.pred(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestKindOf_Foreign(t *testing.T) {
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, ErrKindUnknown, KindOf(nil))
	assert.Equal(t, "circular_dependency", ErrKindCircularDependency.String())
}
