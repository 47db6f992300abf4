package value

import "github.com/coreware/vmcore/internal/hashtable"

// Set wraps the same generic table as Dict, with struct{} values (spec.md
// §4.4 describes one container family shared by dict/set).
type Set struct {
	t *hashtable.Table[Value, struct{}]
}

func NewSet() *Set {
	return &Set{t: hashtable.New[Value, struct{}](tableHash, tableEq)}
}

func (s *Set) Len() int { return s.t.Len() }

func (s *Set) Contains(v Value) (bool, error) {
	if _, err := HashOf(v); err != nil {
		return false, err
	}
	return s.t.Contains(v), nil
}

// Add returns true if v was newly added (false if it was already present).
func (s *Set) Add(v Value) (bool, error) {
	if _, err := HashOf(v); err != nil {
		return false, err
	}
	_, had := s.t.Insert(v, struct{}{})
	return !had, nil
}

func (s *Set) Delete(v Value) (bool, error) {
	if _, err := HashOf(v); err != nil {
		return false, err
	}
	_, ok := s.t.Delete(v)
	return ok, nil
}

type SetIterator struct{ it *hashtable.Iterator[Value, struct{}] }

func (s *Set) Iter() *SetIterator { return &SetIterator{it: s.t.Iter()} }

func (it *SetIterator) Next() (Value, bool) {
	k, _, ok := it.it.Next()
	return k, ok
}
