package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("advance: %w", Clone(ErrIllegalTransition, "cannot skip stages"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrIllegalTransition.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "cannot skip stages", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.EqualError(t, appErr, "internal server error: boom")
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrNotFound, "inspection not found")
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.Equal(t, "inspection not found", clone.Message)
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesClonesByCode(t *testing.T) {
	clone := Clone(ErrFeedbackExists, "already rated")
	assert.ErrorIs(t, fmt.Errorf("rate: %w", clone), ErrFeedbackExists)
	assert.NotErrorIs(t, clone, ErrFeedbackNotAllowed)
}
