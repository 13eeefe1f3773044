package rangeset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// RangeList is an ordered sequence of non-overlapping Ranges, canonicalised
// (sorted by Begin, merged where adjacent or overlapping) after every public
// observation. Every mutating method re-canonicalises before returning, so a
// *RangeList is always safe to inspect directly after any call.
type RangeList struct {
	ranges []Range
}

// New builds a canonical RangeList from the given ranges, merging and
// sorting them regardless of input order.
func New(rs ...Range) *RangeList {
	l := &RangeList{ranges: append([]Range(nil), rs...)}
	l.canonicalize()
	return l
}

func (l *RangeList) canonicalize() {
	if len(l.ranges) == 0 {
		return
	}
	sort.Slice(l.ranges, func(i, j int) bool { return l.ranges[i].Begin < l.ranges[j].Begin })
	merged := l.ranges[:1]
	for _, r := range l.ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Begin <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	l.ranges = merged
}

// Len returns the number of canonical ranges (getNumItems).
func (l *RangeList) Len() int {
	return len(l.ranges)
}

// Count returns the total number of indices covered.
func (l *RangeList) Count() int {
	total := 0
	for _, r := range l.ranges {
		total += r.Len()
	}
	return total
}

// IsEmpty reports whether the list covers no indices.
func (l *RangeList) IsEmpty() bool {
	return len(l.ranges) == 0
}

// Ranges returns a defensive copy of the canonical ranges.
func (l *RangeList) Ranges() []Range {
	return append([]Range(nil), l.ranges...)
}

// Clone returns a deep, independent copy.
func (l *RangeList) Clone() *RangeList {
	return &RangeList{ranges: append([]Range(nil), l.ranges...)}
}

// Add inserts r, merging with any overlapping or adjacent neighbours.
func (l *RangeList) Add(r Range) {
	l.ranges = append(l.ranges, r)
	l.canonicalize()
}

// AddAll unions other into l (in place).
func (l *RangeList) AddAll(other *RangeList) {
	if other == nil {
		return
	}
	l.ranges = append(l.ranges, other.ranges...)
	l.canonicalize()
}

// Union returns a new RangeList holding l ∪ other, leaving both unmodified.
func Union(a, b *RangeList) *RangeList {
	out := a.Clone()
	out.AddAll(b)
	return out
}

// Remove subtracts other from l in place (set difference).
func (l *RangeList) Remove(other *RangeList) {
	if other == nil || len(other.ranges) == 0 {
		return
	}
	result := make([]Range, 0, len(l.ranges))
	for _, r := range l.ranges {
		remaining := []Range{r}
		for _, o := range other.ranges {
			var next []Range
			for _, rem := range remaining {
				next = append(next, rem.Difference(o)...)
			}
			remaining = next
		}
		result = append(result, remaining...)
	}
	l.ranges = result
	l.canonicalize()
}

// Difference returns l \ other as a new RangeList.
func Difference(a, b *RangeList) *RangeList {
	out := a.Clone()
	out.Remove(b)
	return out
}

// Intersection returns l ∩ other as a new RangeList via a two-pointer sweep
// over both canonical (sorted, merged) lists.
func (l *RangeList) Intersection(other *RangeList) *RangeList {
	out := &RangeList{}
	if other == nil {
		return out
	}
	i, j := 0, 0
	for i < len(l.ranges) && j < len(other.ranges) {
		left, right := l.ranges[i], other.ranges[j]
		if left.End < right.Begin {
			i++
			continue
		}
		if right.End < left.Begin {
			j++
			continue
		}
		if overlap, ok := left.Intersection(right); ok {
			out.ranges = append(out.ranges, overlap)
		}
		if left.End < right.End {
			i++
		} else {
			j++
		}
	}
	out.canonicalize()
	return out
}

// SelectResources greedily picks the first k indices in ascending order
// across the list's ranges, returning a new canonical RangeList. It returns
// (nil, false) if fewer than k indices are available.
func (l *RangeList) SelectResources(k int) (*RangeList, bool) {
	if k <= 0 {
		return New(), true
	}
	if l.Count() < k {
		return nil, false
	}
	var picked []Range
	remaining := k
	for _, r := range l.ranges {
		if remaining <= 0 {
			break
		}
		take := min(r.Len(), remaining)
		picked = append(picked, Range{Begin: r.Begin, End: r.Begin + take - 1})
		remaining -= take
	}
	return New(picked...), true
}

// Equals reports content equality (same indices after canonicalisation).
func (l *RangeList) Equals(other *RangeList) bool {
	if other == nil {
		return len(l.ranges) == 0
	}
	if len(l.ranges) != len(other.ranges) {
		return false
	}
	for i, r := range l.ranges {
		if r != other.ranges[i] {
			return false
		}
	}
	return true
}

// Compare orders two lists lexicographically by (lowest index, highest
// index, total count), returning -1, 0, or 1.
func (l *RangeList) Compare(other *RangeList) int {
	lo, lHas := l.lowest()
	ro, rHas := other.lowest()
	switch {
	case !lHas && !rHas:
		return 0
	case !lHas:
		return -1
	case !rHas:
		return 1
	}
	if lo != ro {
		return cmpInt(lo, ro)
	}
	lh, _ := l.highest()
	rh, _ := other.highest()
	if lh != rh {
		return cmpInt(lh, rh)
	}
	return cmpInt(l.Count(), other.Count())
}

func (l *RangeList) lowest() (int, bool) {
	if len(l.ranges) == 0 {
		return 0, false
	}
	return l.ranges[0].Begin, true
}

func (l *RangeList) highest() (int, bool) {
	if len(l.ranges) == 0 {
		return 0, false
	}
	return l.ranges[len(l.ranges)-1].End, true
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (l *RangeList) String() string {
	parts := lo.Map(l.ranges, func(r Range, _ int) string { return r.String() })
	return "{" + strings.Join(parts, ",") + "}"
}

// Parse reads the "{[a..b],[c..d],...}" form. Single-index ranges may be
// written as "[a]" or "[a..a]". Input need not be pre-sorted.
func Parse(s string) (*RangeList, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	s = strings.TrimSpace(s)
	if s == "" {
		return New(), nil
	}
	var ranges []Range
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		tok = strings.TrimPrefix(tok, "[")
		tok = strings.TrimSuffix(tok, "]")
		parts := strings.SplitN(tok, "..", 2)
		begin, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("rangeset: invalid range token %q: %w", tok, err)
		}
		end := begin
		if len(parts) == 2 {
			end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, fmt.Errorf("rangeset: invalid range token %q: %w", tok, err)
			}
		}
		if begin > end {
			return nil, fmt.Errorf("rangeset: invalid range token %q: begin > end", tok)
		}
		ranges = append(ranges, Range{Begin: begin, End: end})
	}
	return New(ranges...), nil
}
