package filter

import (
	"errors"
	"sync"

	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/layer"
)

// ErrNotFound is returned by Remove/IndexOf when a filter is not present
// in the stack.
var ErrNotFound = errors.New("filter: filter not present in stack")

// Stack is an ordered sequence of filters, bottom-to-top; render order is
// iteration order. Per spec §3 it does not own filter lifetimes — callers
// (Session) are free to hold their own references to the same Filter
// values appended here.
type Stack struct {
	mu      sync.Mutex
	filters []Filter
}

// NewStack creates an empty filter stack.
func NewStack() *Stack { return &Stack{} }

// Append adds f to the top of the stack.
func (s *Stack) Append(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, f)
}

// Remove drops the first occurrence of f from the stack.
func (s *Stack) Remove(f Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, candidate := range s.filters {
		if candidate == f {
			s.filters = append(s.filters[:i], s.filters[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Filters returns a snapshot of the stack's current order.
func (s *Stack) Filters() []Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Filter, len(s.filters))
	copy(out, s.filters)
	return out
}

// Len reports the number of filters currently in the stack.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.filters)
}

// Render executes the ping-pong render protocol from spec §4.6 over
// renderable (an already-order-preserving, enabled-or-mandatory subset of
// the stack, computed by the caller — Session owns the enabled/mandatory
// bookkeeping, not Stack itself):
//
//  1. If renderable is empty, blit src -> dst and return.
//  2. Run the first filter directly into dst.
//  3. If there is only one renderable filter, return.
//  4. Allocate a temporary layer matching dst; ping-pong the remaining
//     filters between dst and the temporary.
//  5. If the final result landed in the temporary (an odd remaining
//     count), blit it back into dst.
func Render(device backend.Device, dst, src *layer.ImageLayer, renderable []Filter) error {
	if len(renderable) == 0 {
		return blit(device, dst, src)
	}

	if _, err := renderable[0].Process(device, dst, src); err != nil {
		return err
	}
	if len(renderable) == 1 {
		return nil
	}

	tmp, err := layer.New("render-tmp", device, dst.Format(), dst.Width(), dst.Height(), nil)
	if err != nil {
		return err
	}

	front, back := dst, tmp
	for _, f := range renderable[1:] {
		if _, err := f.Process(device, back, front); err != nil {
			return err
		}
		front, back = back, front
	}

	// front now holds the latest result. If it is tmp rather than dst
	// (an odd number of filters beyond the first), copy it back.
	if front != dst {
		return blit(device, dst, front)
	}
	return nil
}

// blit copies the full plane of src into dst.
func blit(device backend.Device, dst, src *layer.ImageLayer) error {
	return dst.Copy(src, fullRect(src.Width(), src.Height()), 0, 0)
}
