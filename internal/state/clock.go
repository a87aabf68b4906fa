package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

var actionSeq uint64

// NewShapeID returns a stable opaque identifier for a new shape.
func NewShapeID() string {
	return uuid.NewString()
}

// nextSeq numbers actions in record order across all histories.
func nextSeq() uint64 {
	return atomic.AddUint64(&actionSeq, 1)
}
