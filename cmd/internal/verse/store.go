package verse

import (
	"context"
	"errors"
)

// ErrOutOfRange is returned by ByOffset when the offset does not address a
// stored verse.
var ErrOutOfRange = errors.New("verse offset out of range")

// Store is the read-only verse source. Offsets address verses in
// ascending id order.
type Store interface {
	Count(ctx context.Context) (int64, error)
	ByOffset(ctx context.Context, offset int64) (Verse, error)
}
