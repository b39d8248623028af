package myheap

import (
	"fmt"

	"github.com/pkg/errors"
)

// Recoverable failures. The allocator state is unchanged when one of these is
// returned and the caller may retry with different parameters.
var (
	ErrCapacityExceeded = errors.New("myheap: chunk table is full")
	ErrNoSuitableChunk  = errors.New("myheap: no suitable free chunk found")
	ErrHeapExhausted    = errors.New("myheap: no free address range large enough")
	ErrInvalidSize      = errors.New("myheap: allocation size must not be negative")
	ErrUnknownHandle    = errors.New("myheap: handle does not refer to an allocated chunk")
)

// ErrInvalidFree is matched by every *InvalidFreeError. It is fatal: the
// allocator refuses further mutation until Reset.
var ErrInvalidFree = errors.New("myheap: invalid free")

// InvalidFreeError reports a Free of a handle that is not currently allocated,
// including a second Free of the same handle.
type InvalidFreeError struct {
	Handle Handle
}

func (e *InvalidFreeError) Error() string {
	return fmt.Sprintf("myheap: invalid free of handle %d", e.Handle)
}

// Is makes errors.Is(err, ErrInvalidFree) hold.
func (e *InvalidFreeError) Is(target error) bool {
	return target == ErrInvalidFree
}

// IsFatal reports whether err came from an invalid free. Callers must stop
// using the allocator (or Reset it) when this returns true.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidFree)
}
