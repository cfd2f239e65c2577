package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrSlotOccupied, "chair 03 turn 2 is taken by MARIA")
	assert.True(t, errors.Is(clone, ErrSlotOccupied))
	assert.False(t, errors.Is(clone, ErrChairFull))
	assert.Equal(t, http.StatusConflict, clone.Status)
	assert.Equal(t, "slot already occupied", ErrSlotOccupied.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("disk on fire"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)

	wrapped := fmt.Errorf("save: %w", ErrDataProtected)
	assert.Equal(t, ErrDataProtected.Code, FromError(wrapped).Code)
	assert.Nil(t, FromError(nil))
}
