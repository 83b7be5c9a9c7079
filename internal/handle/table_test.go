package handle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAllocateGetFree covers the basic slot lifecycle.
func TestAllocateGetFree(t *testing.T) {
	t.Parallel()

	table := NewTable[int](KindNotifier, 4)

	v := 42

	h, err := table.Allocate(&v)
	require.NoError(t, err)
	require.NotEqual(t, Invalid, h)
	require.Same(t, &v, table.Get(h))
	require.Equal(t, 1, table.Len())

	require.Same(t, &v, table.Free(h))
	require.Nil(t, table.Get(h))
	require.Equal(t, 0, table.Len())

	// Double free misses.
	require.Nil(t, table.Free(h))
}

// TestExhaustion verifies allocation fails at capacity and that freeing a
// slot makes a subsequent allocation succeed.
func TestExhaustion(t *testing.T) {
	t.Parallel()

	const capacity = 8

	table := NewTable[int](KindNotifier, capacity)

	handles := make([]Handle, 0, capacity)

	for i := 0; i < capacity; i++ {
		v := i

		h, err := table.Allocate(&v)
		require.NoError(t, err)

		handles = append(handles, h)
	}

	extra := -1

	_, err := table.Allocate(&extra)
	require.ErrorIs(t, err, ErrExhausted)

	require.NotNil(t, table.Free(handles[3]))

	h, err := table.Allocate(&extra)
	require.NoError(t, err)
	require.Same(t, &extra, table.Get(h))
}

// TestStaleGeneration verifies a handle no longer resolves after its slot
// is freed and reallocated.
func TestStaleGeneration(t *testing.T) {
	t.Parallel()

	table := NewTable[int](KindNotifier, 1)

	a, b := 1, 2

	old, err := table.Allocate(&a)
	require.NoError(t, err)
	require.NotNil(t, table.Free(old))

	fresh, err := table.Allocate(&b)
	require.NoError(t, err)

	// Same slot, different generation.
	require.Equal(t, old.Index(), fresh.Index())
	require.Nil(t, table.Get(old))
	require.Same(t, &b, table.Get(fresh))
}

// TestWrongKind verifies lookups with a foreign or zero handle miss.
func TestWrongKind(t *testing.T) {
	t.Parallel()

	table := NewTable[int](KindNotifier, 2)

	v := 7

	h, err := table.Allocate(&v)
	require.NoError(t, err)

	require.Nil(t, table.Get(Invalid))
	require.Nil(t, table.Get(compose(Kind(2), h.generation(), h.Index())))
}

// TestForEach verifies iteration visits exactly the live entries.
func TestForEach(t *testing.T) {
	t.Parallel()

	table := NewTable[int](KindNotifier, 8)

	a, b, c := 1, 2, 3

	ha, err := table.Allocate(&a)
	require.NoError(t, err)

	_, err = table.Allocate(&b)
	require.NoError(t, err)

	_, err = table.Allocate(&c)
	require.NoError(t, err)

	require.NotNil(t, table.Free(ha))

	seen := make(map[int]Handle)
	table.ForEach(func(h Handle, v *int) {
		seen[*v] = h
	})

	require.Len(t, seen, 2)
	require.Contains(t, seen, b)
	require.Contains(t, seen, c)
}
