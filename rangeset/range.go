// Package rangeset implements sorted, disjoint integer interval sets used to
// represent resource indices throughout the simulator (the CPUs/slots a job
// occupies, the free capacity of a profile entry, and so on).
package rangeset

import "fmt"

// Range is a closed integer interval [Begin, End]; Begin <= End. It is
// conceptually immutable — every operation returns a new value rather than
// mutating the receiver.
type Range struct {
	Begin, End int
}

// NewRange builds a Range, panicking if begin > end: an inverted range is a
// programmer error, never a runtime condition callers should recover from.
func NewRange(begin, end int) Range {
	if begin > end {
		panic(fmt.Sprintf("rangeset: invalid range [%d..%d]", begin, end))
	}
	return Range{Begin: begin, End: end}
}

// Len reports the number of indices the range covers.
func (r Range) Len() int {
	return r.End - r.Begin + 1
}

// Overlaps reports whether r and other share at least one index.
func (r Range) Overlaps(other Range) bool {
	return r.Begin <= other.End && other.Begin <= r.End
}

// Adjacent reports whether r and other are disjoint but separated by no gap
// (e.g. [0..9] and [10..19]) — the condition RangeList uses to merge.
func (r Range) Adjacent(other Range) bool {
	return r.End+1 == other.Begin || other.End+1 == r.Begin
}

// Intersection returns the overlap [max(begins), min(ends)] and true, or the
// zero Range and false if the two ranges do not overlap.
func (r Range) Intersection(other Range) (Range, bool) {
	begin := max(r.Begin, other.Begin)
	end := min(r.End, other.End)
	if begin > end {
		return Range{}, false
	}
	return Range{Begin: begin, End: end}, true
}

// Difference returns r minus other as zero, one, or two sub-ranges.
func (r Range) Difference(other Range) []Range {
	if !r.Overlaps(other) {
		return []Range{r}
	}
	var out []Range
	if other.Begin > r.Begin {
		out = append(out, Range{Begin: r.Begin, End: min(r.End, other.Begin-1)})
	}
	if other.End < r.End {
		out = append(out, Range{Begin: max(r.Begin, other.End+1), End: r.End})
	}
	return out
}

// Contains reports whether idx lies within the range.
func (r Range) Contains(idx int) bool {
	return idx >= r.Begin && idx <= r.End
}

func (r Range) String() string {
	if r.Begin == r.End {
		return fmt.Sprintf("[%d]", r.Begin)
	}
	return fmt.Sprintf("[%d..%d]", r.Begin, r.End)
}
