// Package profile implements the time-indexed availability profile: an
// ordered mapping from simulation instants to the set of free resource
// indices valid from that instant until the next entry, with feasibility
// queries and allocate/release mutation.
package profile

import (
	"fmt"
	"sort"

	"github.com/kernelsched/servsim/rangeset"
)

// Profile is an ordered time→free-ranges map satisfying:
//   - times strictly increasing, at most one entry per time;
//   - free resources constant between consecutive entries;
//   - an entry at time 0 always exists;
//   - no entry outlives its reference count reaching zero, except time 0.
type Profile struct {
	capacity int
	entries  []*Entry
}

// New builds a Profile with the full capacity range free from time 0.
func New(capacity int) *Profile {
	if capacity < 1 {
		panic(fmt.Sprintf("profile: illegal capacity %d", capacity))
	}
	return &Profile{
		capacity: capacity,
		entries:  []*Entry{{Time: 0, Free: rangeset.New(rangeset.Range{Begin: 0, End: capacity - 1})}},
	}
}

// NewFullyReserved builds a Profile whose capacity starts entirely
// committed (nothing free at time 0). This is the initial state of a
// reservation-scheduler's parallel profile: accepting a reservation
// releases its window into this profile while allocating the same window
// from the main one.
func NewFullyReserved(capacity int) *Profile {
	if capacity < 1 {
		panic(fmt.Sprintf("profile: illegal capacity %d", capacity))
	}
	return &Profile{
		capacity: capacity,
		entries:  []*Entry{{Time: 0, Free: rangeset.New()}},
	}
}

// Capacity returns the total resource count this profile was built with.
func (p *Profile) Capacity() int {
	return p.capacity
}

// indexAtOrBefore returns the index of the last entry whose Time <= t.
func (p *Profile) indexAtOrBefore(t int64) int {
	i := sort.Search(len(p.entries), func(i int) bool { return p.entries[i].Time > t })
	return i - 1
}

// CheckAvailability returns the entry at or immediately before time, cloned.
func (p *Profile) CheckAvailability(time int64) *Entry {
	idx := p.indexAtOrBefore(time)
	if idx < 0 {
		return nil
	}
	return p.entries[idx].clone()
}

// CheckAvailabilityWindow reports whether at least n resources (or,
// if allowLess, the best achievable count) are free continuously over
// [start, start+duration). It never mutates the profile.
func (p *Profile) CheckAvailabilityWindow(n int, start, duration int64, allowLess bool) (*rangeset.RangeList, bool) {
	idx := p.indexAtOrBefore(start)
	if idx < 0 {
		return nil, false
	}
	intersect := p.entries[idx].Free.Clone()
	end := start + duration
	for i := idx + 1; i < len(p.entries) && p.entries[i].Time < end; i++ {
		intersect = intersect.Intersection(p.entries[i].Free)
		if !allowLess && intersect.Count() < n {
			return nil, false
		}
	}
	if intersect.Count() < n {
		if allowLess {
			return intersect, true
		}
		return nil, false
	}
	return intersect, true
}

// FindStartTime returns the earliest time t >= readyTime at which n
// resources are available continuously for duration, or false if no such
// time exists among the currently recorded entries.
func (p *Profile) FindStartTime(n int, readyTime, duration int64) (int64, bool) {
	idx := p.indexAtOrBefore(readyTime)
	if idx < 0 {
		return 0, false
	}
	for i := idx; i < len(p.entries); i++ {
		if p.entries[i].Free.Count() < n {
			continue
		}
		t := p.entries[i].Time
		if t < readyTime {
			t = readyTime
		}
		if _, ok := p.CheckAvailabilityWindow(n, t, duration, false); ok {
			return t, true
		}
	}
	return 0, false
}

// ensureEntryAt returns the index of an entry with Time == t, cloning the
// preceding entry's Free set into a freshly inserted entry if none exists.
func (p *Profile) ensureEntryAt(t int64) int {
	idx := p.indexAtOrBefore(t)
	if idx >= 0 && p.entries[idx].Time == t {
		return idx
	}
	var free *rangeset.RangeList
	if idx < 0 {
		free = rangeset.New()
	} else {
		free = p.entries[idx].Free.Clone()
	}
	insertAt := idx + 1
	entry := &Entry{Time: t, Free: free}
	p.entries = append(p.entries, nil)
	copy(p.entries[insertAt+1:], p.entries[insertAt:])
	p.entries[insertAt] = entry
	return insertAt
}

// AllocateResourceRanges deducts ranges over [start, finish). ranges must be
// a subset of the free set at start; violating this precondition is a
// programmer error caught by CheckAvailabilityWindow before calling this.
func (p *Profile) AllocateResourceRanges(ranges *rangeset.RangeList, start, finish int64) {
	anchorIdx := p.ensureEntryAt(start)

	capIdx := p.indexAtOrBefore(finish)
	if capIdx < 0 || p.entries[capIdx].Time != finish {
		predFree := p.entries[capIdx].Free.Clone()
		insertAt := capIdx + 1
		entry := &Entry{Time: finish, Free: predFree}
		p.entries = append(p.entries, nil)
		copy(p.entries[insertAt+1:], p.entries[insertAt:])
		p.entries[insertAt] = entry
		capIdx = insertAt
	}

	for i := anchorIdx; i < capIdx; i++ {
		p.entries[i].Free.Remove(ranges)
	}

	p.entries[anchorIdx].refCount++
	p.entries[capIdx].refCount++
}

// AddTimeSlot is the dual of AllocateResourceRanges (release): it adds
// ranges back to every entry in [start, finish), decrements the anchor/cap
// reference counts, and drops any entry that becomes redundant (equal to
// its predecessor's free set) once its reference count reaches zero. start
// and finish need not land on existing entry boundaries — a release ahead
// of a job's originally planned finish (an early cancellation) is just as
// valid as one that lines up exactly, so both boundaries are created via
// ensureEntryAt if they are not already present.
func (p *Profile) AddTimeSlot(start, finish int64, ranges *rangeset.RangeList) {
	anchorIdx := p.ensureEntryAt(start)
	capIdx := p.ensureEntryAt(finish)

	for i := anchorIdx; i < capIdx; i++ {
		p.entries[i].Free.AddAll(ranges)
	}
	p.entries[anchorIdx].refCount--
	p.entries[capIdx].refCount--

	p.compact()
}

// compact removes entries (other than time 0) whose reference count has
// reached zero and whose free set equals their predecessor's.
func (p *Profile) compact() {
	for i := len(p.entries) - 1; i >= 1; i-- {
		e := p.entries[i]
		if e.refCount <= 0 && e.Free.Equals(p.entries[i-1].Free) {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
		}
	}
}

// TimeSlot is a maximal window of constant free-resource state.
type TimeSlot struct {
	Start, End int64
	Free       *rangeset.RangeList
}

// GetTimeSlots returns the non-overlapping windows of availability between
// start and finish, one per constant-state segment of the profile.
func (p *Profile) GetTimeSlots(start, finish int64) []TimeSlot {
	idx := p.indexAtOrBefore(start)
	if idx < 0 {
		return nil
	}
	var slots []TimeSlot
	t := start
	for i := idx; i < len(p.entries) && t < finish; i++ {
		segEnd := finish
		if i+1 < len(p.entries) && p.entries[i+1].Time < finish {
			segEnd = p.entries[i+1].Time
		}
		slots = append(slots, TimeSlot{Start: t, End: segEnd, Free: p.entries[i].Free.Clone()})
		t = segEnd
	}
	return slots
}

// Option is a candidate scheduling window: at least minN resources free
// continuously for at least minDur, starting at Start.
type Option struct {
	Start, End int64
	Free       *rangeset.RangeList
}

// GetSchedulingOptions returns potentially overlapping candidate windows
// within [start, finish) long enough (>= minDur) to hold minN resources.
func (p *Profile) GetSchedulingOptions(start, finish, minDur int64, minN int) []Option {
	idx := p.indexAtOrBefore(start)
	if idx < 0 {
		return nil
	}
	var opts []Option
	for i := idx; i < len(p.entries) && p.entries[i].Time < finish; i++ {
		if p.entries[i].Free.Count() < minN {
			continue
		}
		t := p.entries[i].Time
		if t < start {
			t = start
		}
		intersect := p.entries[i].Free.Clone()
		end := finish
		for j := i + 1; j < len(p.entries) && p.entries[j].Time < finish; j++ {
			trial := intersect.Intersection(p.entries[j].Free)
			if trial.Count() < minN {
				end = p.entries[j].Time
				break
			}
			intersect = trial
		}
		if end-t < minDur {
			continue
		}
		if sel, ok := intersect.SelectResources(minN); ok {
			opts = append(opts, Option{Start: t, End: end, Free: sel})
		}
	}
	return opts
}

// Snapshot returns a deep copy of the profile suitable for round-trip
// equality comparisons in tests.
func (p *Profile) Snapshot() []Entry {
	out := make([]Entry, len(p.entries))
	for i, e := range p.entries {
		out[i] = *e.clone()
	}
	return out
}
