package tree

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// Every error below wraps one of the errdefs base kinds, so callers can match
// either the concrete sentinel or the kind with errors.Is. All of them signal
// caller programming mistakes: they are synchronous, non-retryable, and the
// failing operation leaves the structure unchanged.

// Missing-argument errors
var (
	// ErrNilArgument indicates that a required reference argument is nil.
	ErrNilArgument = fmt.Errorf("required argument is nil: %w", errdefs.ErrInvalidArgument)
)

// Invalid-state errors
var (
	// ErrRecycled indicates a mutation on a node that has been recycled or
	// torn down and not reissued by its factory.
	ErrRecycled = fmt.Errorf("node has been recycled: %w", errdefs.ErrFailedPrecondition)

	// ErrAlreadyChild indicates an attempt to add a node that is already a
	// child of this exact parent.
	ErrAlreadyChild = fmt.Errorf("node is already a child of this parent: %w", errdefs.ErrFailedPrecondition)

	// ErrDifferentParent indicates an attempt to add a node that belongs to a
	// different parent.
	ErrDifferentParent = fmt.Errorf("node belongs to a different parent: %w", errdefs.ErrFailedPrecondition)

	// ErrNotAChild indicates that the target node is not a direct child of
	// the receiver.
	ErrNotAChild = fmt.Errorf("node is not a child of this parent: %w", errdefs.ErrFailedPrecondition)

	// ErrNotDetached indicates that a node required to be parentless still
	// has a parent.
	ErrNotDetached = fmt.Errorf("node already has a parent: %w", errdefs.ErrFailedPrecondition)

	// ErrForeignNode indicates a cross-factory operation on a node issued by
	// a different factory.
	ErrForeignNode = fmt.Errorf("node belongs to a different factory: %w", errdefs.ErrFailedPrecondition)

	// ErrFactoryClosed indicates an operation on a factory that has been closed.
	ErrFactoryClosed = fmt.Errorf("factory has been closed: %w", errdefs.ErrFailedPrecondition)
)
