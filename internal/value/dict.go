package value

import "github.com/coreware/vmcore/internal/hashtable"

// Dict wraps the generic open-addressed table (internal/hashtable,
// spec.md §4.4) with Value keys/values, dispatching hash and equality
// through the value protocol so user-defined `equals`/`hash` operators
// participate in dict behavior.
type Dict struct {
	t *hashtable.Table[Value, Value]
}

func NewDict() *Dict {
	return &Dict{t: hashtable.New[Value, Value](tableHash, tableEq)}
}

func tableHash(v Value) uint32 {
	h, _ := HashOf(v)
	return h
}

func tableEq(a, b Value) bool {
	eq, _ := Equal(a, b)
	return eq
}

func (d *Dict) Len() int { return d.t.Len() }

func (d *Dict) Get(key Value) (Value, bool, error) {
	if _, err := HashOf(key); err != nil {
		return Value{}, false, err
	}
	v, ok := d.t.Get(key)
	return v, ok, nil
}

func (d *Dict) Contains(key Value) (bool, error) {
	_, ok, err := d.Get(key)
	return ok, err
}

// Insert returns the previous value, if any, as spec.md §4.4 describes.
func (d *Dict) Insert(key, value Value) (Value, bool, error) {
	if _, err := HashOf(key); err != nil {
		return Value{}, false, err
	}
	prev, had := d.t.Insert(key, value)
	return prev, had, nil
}

func (d *Dict) Delete(key Value) (Value, bool, error) {
	if _, err := HashOf(key); err != nil {
		return Value{}, false, err
	}
	v, ok := d.t.Delete(key)
	return v, ok, nil
}

// DictIterator walks (key, value) pairs in bucket order (spec.md §4.4's
// iteration contract: safe only while the table is unmodified).
type DictIterator struct{ it *hashtable.Iterator[Value, Value] }

func (d *Dict) Iter() *DictIterator { return &DictIterator{it: d.t.Iter()} }

func (it *DictIterator) Next() (Value, Value, bool) { return it.it.Next() }
