package value

import "github.com/coreware/vmcore/internal/bignum"

// Range is a (start, stop, step) bigint triple (spec.md §4.5). Iteration
// yields current, advances by step, and terminates when current == stop.
type Range struct {
	Start bignum.Int
	Stop  bignum.Int
	Step  bignum.Int
}

// NewRange constructs a Range, applying the direction rule supplemented
// from original_source/src/custom_types/range.rs (SPEC_FULL.md §9):
// step == 0 always throws; any other step is accepted, including one whose
// direction does not lead from start to stop. IsEmpty reports such a range
// as empty; RangeCursor does not check direction.
func NewRange(start, stop, step bignum.Int) (*Range, error) {
	if step.Sign() == 0 {
		return nil, &DispatchError{Kind: "value_error", Message: "range step must not be zero"}
	}
	return &Range{Start: start, Stop: stop, Step: step}, nil
}

// IsEmpty reports whether iterating this range would yield no values: a
// positive step with start already past stop, or a negative step with
// start already before stop.
func (r *Range) IsEmpty() bool {
	if r.Step.Sign() > 0 {
		return r.Start.Cmp(r.Stop) > 0
	}
	return r.Start.Cmp(r.Stop) < 0
}

// RangeCursor walks a Range's values without mutating the Range itself,
// matching spec.md §4.8's iterator protocol (next() -> Option<Value>).
type RangeCursor struct {
	current bignum.Int
	r       *Range
	done    bool
}

func (r *Range) Cursor() *RangeCursor {
	return &RangeCursor{current: r.Start, r: r}
}

// Next advances the cursor, returning (value, true) or (zero, false) once
// current reaches stop. Per spec.md §4.5 there is no wraparound or sign
// check here: on a misdirected range (one IsEmpty reports as empty) current
// never reaches stop, so the cursor keeps yielding values.
func (c *RangeCursor) Next() (bignum.Int, bool) {
	if c.done || c.current.Equal(c.r.Stop) {
		c.done = true
		return bignum.Int{}, false
	}
	v := c.current
	c.current = c.current.Add(c.r.Step)
	return v, true
}
