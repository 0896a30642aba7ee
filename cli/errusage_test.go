package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageError_Is(t *testing.T) {
	errTesting := errors.New("test")
	err := NewUsageError("%w", errTesting)
	assert.ErrorIs(t, err, &UsageError{})
	assert.ErrorIs(t, err, errTesting)
	assert.True(t, IsUsageError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsUsageError(errTesting))
	assert.False(t, IsUsageError(nil))
}

func TestUsageError_Error(t *testing.T) {
	assert.Equal(t, "usage error", (&UsageError{}).Error(), "Default output is used without a wrapped error")
	assert.Equal(t, "usage error: test", NewUsageError("test").Error())
}
