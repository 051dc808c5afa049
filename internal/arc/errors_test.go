package arc_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bridge/internal/arc"

	"github.com/stretchr/testify/assert"
)

func TestUnavailableError(t *testing.T) {
	err := arc.Unavailable("fetch", "ARC.csv", context.DeadlineExceeded)
	assert.ErrorIs(t, err, arc.ErrCatalogueUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "ARC.csv")

	wrapped := fmt.Errorf("load: %w", err)
	var ue *arc.UnavailableError
	assert.True(t, errors.As(wrapped, &ue))
	assert.Equal(t, wrapped, arc.Unavailable("other", "x", wrapped), "already classified errors pass through")
}

func TestUnavailable_Nil(t *testing.T) {
	assert.NoError(t, arc.Unavailable("fetch", "x", nil))
}

func TestInvariantError(t *testing.T) {
	err := fmt.Errorf("resolve: %w", &arc.InvariantError{Stage: "selection", Variable: "demog_height_cm", Detail: "orphan"})
	assert.ErrorIs(t, err, arc.ErrInvariantViolated)
	assert.True(t, arc.IsFatal(err))
	assert.False(t, arc.IsFatal(arc.ErrCatalogueUnavailable))
}
