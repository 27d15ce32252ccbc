package edit

import (
	"iter"
	"sync"

	apperrors "github.com/Skryldev/snapweave/errors"
)

// Stack is an ordered sequence of edits, applied in insertion order.  An
// empty stack is valid and leaves an image unchanged.
//
// Stack is safe for concurrent use; readers get a snapshot, so a traversal
// never observes a half-applied mutation.
type Stack struct {
	mu    sync.RWMutex
	edits []Edit
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

// Add appends e.  Pointer variants are stored by value; a nil edit or nil
// pointer variant is ignored.
func (s *Stack) Add(e Edit) {
	if e = Deref(e); e == nil {
		return
	}
	s.mu.Lock()
	s.edits = append(s.edits, e)
	s.mu.Unlock()
}

// Pop removes and returns the last edit.
func (s *Stack) Pop() (Edit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.edits)
	if n == 0 {
		return nil, &apperrors.EmptyStackError{}
	}
	e := s.edits[n-1]
	s.edits[n-1] = nil
	s.edits = s.edits[:n-1]
	return e, nil
}

// Clear removes every edit.
func (s *Stack) Clear() {
	s.mu.Lock()
	clear(s.edits)
	s.edits = s.edits[:0]
	s.mu.Unlock()
}

func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edits)
}

// Edits returns a copy of the edits in insertion order.
func (s *Stack) Edits() []Edit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Edit, len(s.edits))
	copy(out, s.edits)
	return out
}

// All iterates over a snapshot of the stack taken when iteration starts.
// Each call starts again from the first edit.
func (s *Stack) All() iter.Seq[Edit] {
	return func(yield func(Edit) bool) {
		for _, e := range s.Edits() {
			if !yield(e) {
				return
			}
		}
	}
}
