package handle

import (
	"errors"
	"sync"
)

// Handle identifies one slot in a Table. The high byte carries the type
// tag, the next byte the slot generation and the low 16 bits the slot
// index. The zero value is never a valid handle.
type Handle int32

// Invalid is the zero handle, returned when allocation fails.
const Invalid Handle = 0

// Kind tags the resource type a table manages. A lookup with a handle of
// the wrong kind always misses.
type Kind uint8

// KindNotifier tags alarm notifier handles.
const KindNotifier Kind = 1

// maxSlots bounds the index space encodable in a handle.
const maxSlots = 1 << 16

// ErrExhausted is returned by Allocate when every slot is in use.
var ErrExhausted = errors.New("handle table exhausted")

// Index returns the slot index encoded in the handle. It is meaningful
// only for handles that resolve successfully.
func (h Handle) Index() int {
	return int(h & 0xffff)
}

func (h Handle) kind() Kind {
	return Kind(h >> 24 & 0xff)
}

func (h Handle) generation() uint8 {
	return uint8(h >> 16 & 0xff)
}

func compose(kind Kind, generation uint8, index int) Handle {
	return Handle(int32(kind)<<24 | int32(generation)<<16 | int32(index))
}

// slot is one allocation cell. The generation advances on every free so
// stale handles to the slot stop resolving.
type slot[T any] struct {
	value      *T
	generation uint8
	used       bool
}

// Table is a bounded arena of shared objects addressed by opaque handles.
// Lookups hand out the shared pointer itself: after Free unlinks a slot,
// concurrently held pointers stay alive until their holders drop them.
type Table[T any] struct {
	// mu protects the slots.
	mu sync.Mutex
	// kind is stamped into every handle the table issues.
	kind Kind
	// slots holds the allocation cells, addressed by handle index.
	slots []slot[T]
}

// NewTable creates a table for the given kind with a fixed capacity.
// Capacities outside [1, 65536] are clamped.
func NewTable[T any](kind Kind, capacity int) *Table[T] {
	if capacity < 1 {
		capacity = 1
	}

	if capacity > maxSlots {
		capacity = maxSlots
	}

	return &Table[T]{
		kind:  kind,
		slots: make([]slot[T], capacity),
	}
}

// Capacity returns the number of slots in the table.
func (t *Table[T]) Capacity() int {
	return len(t.slots)
}

// Allocate stores v in a free slot and returns its handle, or ErrExhausted
// when no slot is available.
func (t *Table[T]) Allocate(v *T) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if t.slots[i].used {
			continue
		}

		t.slots[i].value = v
		t.slots[i].used = true

		return compose(t.kind, t.slots[i].generation, i), nil
	}

	return Invalid, ErrExhausted
}

// Get resolves a handle to its object. It returns nil for handles of the
// wrong kind, out-of-range indices, freed slots and stale generations.
func (t *Table[T]) Get(h Handle) *T {
	if h.kind() != t.kind {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	i := h.Index()
	if i >= len(t.slots) {
		return nil
	}

	s := &t.slots[i]
	if !s.used || s.generation != h.generation() {
		return nil
	}

	return s.value
}

// Free unlinks the handle's slot and returns the removed object so the
// caller can finish teardown on it. The slot's generation advances, making
// the slot reusable while the old handle stops resolving. Unknown handles
// return nil.
func (t *Table[T]) Free(h Handle) *T {
	if h.kind() != t.kind {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	i := h.Index()
	if i >= len(t.slots) {
		return nil
	}

	s := &t.slots[i]
	if !s.used || s.generation != h.generation() {
		return nil
	}

	v := s.value
	s.value = nil
	s.used = false
	s.generation++

	return v
}

// ForEach calls fn for every live entry in index order. The table lock is
// held for the duration, so fn must not call back into the table.
func (t *Table[T]) ForEach(fn func(Handle, *T)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if t.slots[i].used {
			fn(compose(t.kind, t.slots[i].generation, i), t.slots[i].value)
		}
	}
}

// Len returns the number of live entries.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0

	for i := range t.slots {
		if t.slots[i].used {
			n++
		}
	}

	return n
}
