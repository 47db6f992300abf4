package hashtable

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func hashInt(k int) uint32 { return uint32(k) }
func eqInt(a, b int) bool  { return a == b }

func TestInsertGetDelete(t *testing.T) {
	tbl := New[int, string](hashInt, eqInt)
	_, had := tbl.Insert(1, "a")
	require.False(t, had)
	_, had = tbl.Insert(1, "b")
	require.True(t, had)
	v, ok := tbl.Get(1)
	require.True(t, ok)
	require.Equal(t, "b", v)
	require.Equal(t, 1, tbl.Len())

	v, ok = tbl.Delete(1)
	require.True(t, ok)
	require.Equal(t, "b", v)
	require.Equal(t, 0, tbl.Len())
	_, ok = tbl.Get(1)
	require.False(t, ok)
}

// TestDictInvariants exercises spec.md §8 invariant 3: after any sequence of
// inserts/deletes, size == count(Some entries), capacity is 0 or a power of
// two >= 8, and every Some entry is reachable by its own probe sequence.
func TestDictInvariants(t *testing.T) {
	tbl := New[int, int](hashInt, eqInt)
	rng := rand.New(rand.NewSource(1))
	present := map[int]bool{}

	for i := 0; i < 5000; i++ {
		k := rng.Intn(200)
		if rng.Intn(2) == 0 {
			tbl.Insert(k, k)
			present[k] = true
		} else {
			tbl.Delete(k)
			delete(present, k)
		}

		require.Equal(t, len(present), tbl.Len())
		if tbl.Cap() != 0 {
			require.GreaterOrEqual(t, tbl.Cap(), minCapacity)
			require.True(t, isPowerOfTwo(tbl.Cap()))
		}
		for k := range present {
			_, ok := tbl.Get(k)
			require.True(t, ok, "key %d must be reachable by its probe sequence", k)
		}
	}
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// TestProbeCompleteness exercises spec.md §8 invariant 4: the perturbed
// probe sequence visits every bucket of a power-of-two table before
// repeating, for a variety of starting hashes.
func TestProbeCompleteness(t *testing.T) {
	for _, capacity := range []int{8, 16, 32, 64} {
		for _, h := range []uint32{0, 1, 7, 12345, 0xFFFFFFFF, uint32(capacity)} {
			visited := map[uint64]bool{}
			n := uint64(capacity)
			b := uint64(h) % n
			perturb := uint64(h)
			for i := 0; i < capacity; i++ {
				require.False(t, visited[b], "bucket %d revisited before completeness at cap=%d hash=%d", b, capacity, h)
				visited[b] = true
				b = (5*b + 1 + perturb) % n
				perturb >>= 5
			}
			require.Len(t, visited, capacity)
		}
	}
}

func TestIterationOrderStableWhileUnmodified(t *testing.T) {
	tbl := New[int, int](hashInt, eqInt)
	for i := 0; i < 50; i++ {
		tbl.Insert(i, i*i)
	}
	var first []int
	it := tbl.Iter()
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		first = append(first, k)
	}
	var second []int
	it2 := tbl.Iter()
	for {
		k, _, ok := it2.Next()
		if !ok {
			break
		}
		second = append(second, k)
	}
	require.Equal(t, first, second)
	require.Len(t, first, 50)
}

func TestResizeDropsTombstonesAndNeverShrinks(t *testing.T) {
	tbl := New[int, int](hashInt, eqInt)
	for i := 0; i < 100; i++ {
		tbl.Insert(i, i)
	}
	capAfterFill := tbl.Cap()
	for i := 0; i < 90; i++ {
		tbl.Delete(i)
	}
	require.Equal(t, capAfterFill, tbl.Cap(), "deletes must never shrink capacity")
	require.Equal(t, 10, tbl.Len())
	tbl.grow(tbl.Cap() * 2)
	require.Equal(t, tbl.Len(), tbl.sizeWithDeleted, "resize must drop tombstones")
}
