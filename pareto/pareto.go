// Package pareto implements an incremental Pareto front builder over a
// pair of dimensions (progress, quality). Every solver oracle in this
// module folds child-state fronts up into parent fronts through exactly
// this structure, so its merge semantics are the single source of truth
// for what "optimal" means across the DP layer.
//
// A front is stored descending by First and ascending by Second: the
// entry with the most progress has the least quality and vice versa,
// since each entry represents a distinct way of trading one for the
// other. Every operation below preserves this shape: first strictly
// decreasing, second strictly increasing along the slice.
package pareto

// Value is one point on a front.
type Value struct {
	First  uint32
	Second uint32
}

// Builder maintains a stack of Pareto fronts (segments) over a single
// growable backing slice, which gives the arena's amortized-doubling
// growth without hand-managed memory.
type Builder struct {
	buf       []Value
	segments  []segment
	maxFirst  uint32
	maxSecond uint32
}

type segment struct {
	offset int
	length int
}

// NewBuilder returns an empty Builder that truncates merged fronts to
// the given maximum first/second values (the recipe's max progress and
// max quality).
func NewBuilder(maxFirst, maxSecond uint32) *Builder {
	return &Builder{
		buf:       make([]Value, 0, 1024),
		maxFirst:  maxFirst,
		maxSecond: maxSecond,
	}
}

// Clear empties the builder without releasing its backing storage.
func (b *Builder) Clear() {
	b.buf = b.buf[:0]
	b.segments = b.segments[:0]
}

// PushEmpty pushes a new, empty segment onto the stack.
func (b *Builder) PushEmpty() {
	b.segments = append(b.segments, segment{offset: len(b.buf), length: 0})
}

// Push appends values as a new top segment.
func (b *Builder) Push(values ...Value) {
	offset := len(b.buf)
	b.buf = append(b.buf, values...)
	b.segments = append(b.segments, segment{offset: offset, length: len(values)})
}

// Add shifts every value in the top segment by (first, second) in
// place, used to fold a child state's absolute front back into the
// parent's coordinate space after an action's own progress/quality
// delta.
func (b *Builder) Add(first, second uint32) {
	top := b.segments[len(b.segments)-1]
	for i := top.offset; i < top.offset+top.length; i++ {
		b.buf[i].First += first
		b.buf[i].Second += second
	}
}

// Merge pops the top two segments (A, the older; B, the newer), merges
// them into one Pareto-optimal front, truncates it to (maxFirst,
// maxSecond), and pushes the result as the new top segment.
func (b *Builder) Merge() {
	n := len(b.segments)
	segB := b.segments[n-1]
	segA := b.segments[n-2]
	b.segments = b.segments[:n-2]

	sliceA := append([]Value(nil), b.buf[segA.offset:segA.offset+segA.length]...)
	sliceB := append([]Value(nil), b.buf[segB.offset:segB.offset+segB.length]...)

	merged := mergeFronts(sliceA, sliceB)
	merged = truncate(merged, b.maxFirst, b.maxSecond)

	offset := segA.offset
	b.buf = b.buf[:offset]
	b.buf = append(b.buf, merged...)
	b.segments = append(b.segments, segment{offset: offset, length: len(merged)})
}

// PushSlice appends values as a new top segment; an alias of Push kept
// for call sites that already hold a slice rather than varargs.
func (b *Builder) PushSlice(values []Value) {
	b.Push(values...)
}

// Peek returns the current top segment without popping it.
func (b *Builder) Peek() []Value {
	if len(b.segments) == 0 {
		return nil
	}
	top := b.segments[len(b.segments)-1]
	return b.buf[top.offset : top.offset+top.length]
}

// mergeFronts merges two fronts, each sorted descending by First /
// ascending by Second, into one Pareto-optimal front of the same shape,
// via a two-pointer sweep (both pointers starting at the highest-First
// end) tracking a rolling maximum of Second.
func mergeFronts(a, b []Value) []Value {
	ai, bi := 0, 0
	out := make([]Value, 0, len(a)+len(b))
	var rollingMax uint32
	haveMax := false

	tryInsert := func(v Value) {
		if !haveMax || v.Second > rollingMax {
			out = append(out, v)
			rollingMax = v.Second
			haveMax = true
		}
	}

	for ai < len(a) && bi < len(b) {
		switch {
		case a[ai].First < b[bi].First:
			tryInsert(b[bi])
			bi++
		case a[ai].First > b[bi].First:
			tryInsert(a[ai])
			ai++
		default:
			first := a[ai].First
			second := a[ai].Second
			if b[bi].Second > second {
				second = b[bi].Second
			}
			tryInsert(Value{First: first, Second: second})
			ai++
			bi++
		}
	}
	for ai < len(a) {
		tryInsert(a[ai])
		ai++
	}
	for bi < len(b) {
		tryInsert(b[bi])
		bi++
	}
	return out
}

// truncate drops the leading run of entries whose First has reached or
// exceeded maxFirst, keeping only the last (smallest-First, and
// therefore highest-Second) entry among them, then drops the trailing
// run of entries whose Second has reached or exceeded maxSecond the
// same way.
func truncate(values []Value, maxFirst, maxSecond uint32) []Value {
	head, tail := 0, len(values)
	for head+1 < tail && values[head+1].First >= maxFirst {
		head++
	}
	for head+1 < tail && values[tail-2].Second >= maxSecond {
		tail--
	}
	return values[head:tail]
}
