package program

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesCode(t *testing.T) {
	err := ErrTopicTooLong.With("topic has %d characters", 51)

	assert.ErrorIs(t, err, ErrTopicTooLong)
	assert.NotErrorIs(t, err, ErrContentTooLong)
	assert.Contains(t, err.Error(), "51")
	assert.Empty(t, ErrTopicTooLong.Detail, "With must not mutate the sentinel")

	wrapped := fmt.Errorf("update post: %w", err)
	assert.ErrorIs(t, wrapped, ErrTopicTooLong)

	pe, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeTopicTooLong, pe.Code)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, 6000, ErrTopicTooLong.Code)
	assert.Equal(t, 6001, ErrContentTooLong.Code)
	assert.Equal(t, 6002, ErrForbidden.Code)
	assert.Equal(t, "Forbidden", ErrForbidden.Message)

	assert.Same(t, ErrNotFound, ErrorForCode(CodeNotFound))
	assert.Nil(t, ErrorForCode(1))
}
