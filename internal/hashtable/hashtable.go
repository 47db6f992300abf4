// Package hashtable implements the open-addressed hash table backing the
// value model's dict and set containers (spec.md §3.6, §4.4). It is generic
// over the key/value types and a pair of caller-supplied hash/equality
// functions so internal/value can instantiate Table[Value, Value] without
// an import cycle.
package hashtable

// slotState distinguishes the three states a bucket can be in.
type slotState uint8

const (
	stateNone slotState = iota
	stateSome
	stateRemoved
)

type slot[K any, V any] struct {
	state slotState
	hash  uint32
	key   K
	value V
}

// Table is an open-addressed hash table with perturbed-quadratic probing,
// exactly as specified in spec.md §3.6: capacity is 0 or a power of two >= 8
// once non-empty; load factor (including tombstones) is kept at or below
// 0.75; resize doubles capacity and drops tombstones.
type Table[K any, V any] struct {
	buckets        []slot[K, V]
	size           int // count of live (Some) entries
	sizeWithDeleted int // live + tombstones
	hashFn         func(K) uint32
	eqFn           func(a, b K) bool
}

// New builds an empty table. hashFn and eqFn must be stable and consistent
// with each other (equal keys must hash equal) or the invariants of
// spec.md §8 do not hold.
func New[K any, V any](hashFn func(K) uint32, eqFn func(a, b K) bool) *Table[K, V] {
	return &Table[K, V]{hashFn: hashFn, eqFn: eqFn}
}

// Len returns the number of live entries.
func (t *Table[K, V]) Len() int { return t.size }

// Cap returns the current bucket-array capacity (0 when empty).
func (t *Table[K, V]) Cap() int { return len(t.buckets) }

const minCapacity = 8
const maxLoadNumerator = 3
const maxLoadDenominator = 4

// probe walks the perturbed-quadratic sequence b' = 5b+1+perturb (mod len),
// perturb >>= 5, starting at the key's hash. It returns the index of the
// first matching Some slot, or -1 if none, and separately the first
// Removed/None slot usable for insertion (insertIdx == -1 if the table is
// full, which cannot happen given the 0.75 load-factor cap).
func (t *Table[K, V]) probe(hash uint32, key K) (foundIdx int, insertIdx int) {
	n := uint64(len(t.buckets))
	if n == 0 {
		return -1, -1
	}
	b := uint64(hash) % n
	perturb := uint64(hash)
	insertIdx = -1
	for {
		s := &t.buckets[b]
		switch s.state {
		case stateNone:
			if insertIdx == -1 {
				insertIdx = int(b)
			}
			return -1, insertIdx
		case stateRemoved:
			if insertIdx == -1 {
				insertIdx = int(b)
			}
		case stateSome:
			if s.hash == hash && t.eqFn(s.key, key) {
				return int(b), int(b)
			}
		}
		b = (5*b + 1 + perturb) % n
		perturb >>= 5
	}
}

// Get looks up key, returning its value and true on hit.
func (t *Table[K, V]) Get(key K) (V, bool) {
	var zero V
	if len(t.buckets) == 0 {
		return zero, false
	}
	h := t.hashFn(key)
	idx, _ := t.probe(h, key)
	if idx < 0 {
		return zero, false
	}
	return t.buckets[idx].value, true
}

func (t *Table[K, V]) Contains(key K) bool {
	_, ok := t.Get(key)
	return ok
}

// Insert inserts or replaces key -> value, returning the previous value (if
// any) exactly as spec.md §4.4 describes.
func (t *Table[K, V]) Insert(key K, value V) (prev V, hadPrev bool) {
	if len(t.buckets) == 0 {
		t.grow(minCapacity)
	}
	h := t.hashFn(key)
	foundIdx, insertIdx := t.probe(h, key)
	if foundIdx >= 0 {
		s := &t.buckets[foundIdx]
		prev, hadPrev = s.value, true
		s.value = value
		return prev, hadPrev
	}
	s := &t.buckets[insertIdx]
	s.state = stateSome
	s.hash = h
	s.key = key
	s.value = value
	t.size++
	t.sizeWithDeleted++
	if t.sizeWithDeleted*maxLoadDenominator > len(t.buckets)*maxLoadNumerator {
		t.grow(len(t.buckets) * 2)
	}
	var zero V
	return zero, false
}

// Delete marks key's slot Removed, returning the removed value if present.
func (t *Table[K, V]) Delete(key K) (V, bool) {
	var zero V
	if len(t.buckets) == 0 {
		return zero, false
	}
	h := t.hashFn(key)
	idx, _ := t.probe(h, key)
	if idx < 0 {
		return zero, false
	}
	s := &t.buckets[idx]
	v := s.value
	s.state = stateRemoved
	var zk K
	var zv V
	s.key, s.value = zk, zv
	t.size--
	return v, true
}

// grow rehashes all Some entries into a new bucket array of the given
// capacity (rounded up to a power of two >= minCapacity). Tombstones are
// dropped, matching spec.md §4.4's resize rule.
func (t *Table[K, V]) grow(want int) {
	cap := minCapacity
	for cap < want {
		cap *= 2
	}
	old := t.buckets
	t.buckets = make([]slot[K, V], cap)
	t.sizeWithDeleted = 0
	t.size = 0
	for _, s := range old {
		if s.state != stateSome {
			continue
		}
		_, insertIdx := t.probe(s.hash, s.key)
		ns := &t.buckets[insertIdx]
		ns.state = stateSome
		ns.hash = s.hash
		ns.key = s.key
		ns.value = s.value
		t.size++
		t.sizeWithDeleted++
	}
}

// Iterator walks live entries in bucket order. It is only safe to use while
// the table is unmodified — spec.md §4.4 leaves concurrent-mutation
// behavior undefined, and this iterator does not attempt to detect it.
type Iterator[K any, V any] struct {
	t   *Table[K, V]
	pos int
}

func (t *Table[K, V]) Iter() *Iterator[K, V] {
	return &Iterator[K, V]{t: t}
}

// Next advances the iterator, returning (key, value, true) or
// (zero, zero, false) once exhausted.
func (it *Iterator[K, V]) Next() (K, V, bool) {
	for it.pos < len(it.t.buckets) {
		s := &it.t.buckets[it.pos]
		it.pos++
		if s.state == stateSome {
			return s.key, s.value, true
		}
	}
	var zk K
	var zv V
	return zk, zv, false
}
