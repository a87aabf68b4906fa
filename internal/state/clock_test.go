package state

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShapeID(t *testing.T) {
	a, b := NewShapeID(), NewShapeID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}

func TestNextSeqIncreases(t *testing.T) {
	first := nextSeq()
	second := nextSeq()
	assert.Greater(t, second, first)
}
