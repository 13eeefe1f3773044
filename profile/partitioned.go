package profile

import (
	"fmt"
	"sort"

	"github.com/kernelsched/servsim/rangeset"
)

// PartitionedProfile extends the single-partition Profile with a
// per-partition free-range set per entry: one ordered time line shared by
// every partition, where each entry carries the free set of each partition
// at that instant. Partitions carve the global index space into contiguous
// blocks; a work unit allocates within exactly one partition.
type PartitionedProfile struct {
	partitions []rangeset.Range
	entries    []*partEntry
}

type partEntry struct {
	Time     int64
	Free     []*rangeset.RangeList // one per partition, same order as partitions
	refCount int
}

func (e *partEntry) clone() *partEntry {
	free := make([]*rangeset.RangeList, len(e.Free))
	for i, f := range e.Free {
		free[i] = f.Clone()
	}
	return &partEntry{Time: e.Time, Free: free, refCount: e.refCount}
}

// NewPartitioned builds a PartitionedProfile whose partitions hold the given
// sizes, carved contiguously from index 0 upward. Every partition starts
// fully free at time 0.
func NewPartitioned(sizes ...int) *PartitionedProfile {
	if len(sizes) == 0 {
		panic("profile: partitioned profile needs at least one partition")
	}
	partitions := make([]rangeset.Range, len(sizes))
	free := make([]*rangeset.RangeList, len(sizes))
	next := 0
	for i, size := range sizes {
		if size < 1 {
			panic(fmt.Sprintf("profile: illegal partition size %d", size))
		}
		partitions[i] = rangeset.Range{Begin: next, End: next + size - 1}
		free[i] = rangeset.New(partitions[i])
		next += size
	}
	return &PartitionedProfile{
		partitions: partitions,
		entries:    []*partEntry{{Time: 0, Free: free}},
	}
}

// NumPartitions returns the number of partitions.
func (p *PartitionedProfile) NumPartitions() int {
	return len(p.partitions)
}

// Partition returns the index range owned by partition id.
func (p *PartitionedProfile) Partition(id int) rangeset.Range {
	p.checkPartition(id)
	return p.partitions[id]
}

// Capacity returns the total resource count across all partitions.
func (p *PartitionedProfile) Capacity() int {
	total := 0
	for _, r := range p.partitions {
		total += r.Len()
	}
	return total
}

func (p *PartitionedProfile) checkPartition(id int) {
	if id < 0 || id >= len(p.partitions) {
		panic(fmt.Sprintf("profile: unknown partition %d", id))
	}
}

func (p *PartitionedProfile) indexAtOrBefore(t int64) int {
	i := sort.Search(len(p.entries), func(i int) bool { return p.entries[i].Time > t })
	return i - 1
}

// CheckAvailability returns the entry at or immediately before time as a
// single-partition Entry holding partition id's free set at that instant.
func (p *PartitionedProfile) CheckAvailability(id int, time int64) *Entry {
	p.checkPartition(id)
	idx := p.indexAtOrBefore(time)
	if idx < 0 {
		return nil
	}
	e := p.entries[idx]
	return &Entry{Time: e.Time, Free: e.Free[id].Clone(), refCount: e.refCount}
}

// CheckAvailabilityWindow reports whether at least n resources of partition
// id (or, if allowLess, the best achievable count) are free continuously
// over [start, start+duration). It never mutates the profile.
func (p *PartitionedProfile) CheckAvailabilityWindow(id, n int, start, duration int64, allowLess bool) (*rangeset.RangeList, bool) {
	p.checkPartition(id)
	idx := p.indexAtOrBefore(start)
	if idx < 0 {
		return nil, false
	}
	intersect := p.entries[idx].Free[id].Clone()
	end := start + duration
	for i := idx + 1; i < len(p.entries) && p.entries[i].Time < end; i++ {
		intersect = intersect.Intersection(p.entries[i].Free[id])
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
// resources of partition id are free continuously for duration.
func (p *PartitionedProfile) FindStartTime(id, n int, readyTime, duration int64) (int64, bool) {
	p.checkPartition(id)
	idx := p.indexAtOrBefore(readyTime)
	if idx < 0 {
		return 0, false
	}
	for i := idx; i < len(p.entries); i++ {
		if p.entries[i].Free[id].Count() < n {
			continue
		}
		t := p.entries[i].Time
		if t < readyTime {
			t = readyTime
		}
		if _, ok := p.CheckAvailabilityWindow(id, n, t, duration, false); ok {
			return t, true
		}
	}
	return 0, false
}

// FindStartTimeAcross returns the earliest (partition, start) pair at which
// n resources are free continuously for duration in any single partition.
// Ties between partitions at the same start go to the lowest partition id.
func (p *PartitionedProfile) FindStartTimeAcross(n int, readyTime, duration int64) (int, int64, bool) {
	bestID, bestStart, found := -1, int64(0), false
	for id := range p.partitions {
		start, ok := p.FindStartTime(id, n, readyTime, duration)
		if !ok {
			continue
		}
		if !found || start < bestStart {
			bestID, bestStart, found = id, start, true
		}
	}
	return bestID, bestStart, found
}

// ensureEntryAt returns the index of an entry with Time == t, cloning the
// preceding entry's per-partition free sets into a fresh entry if none
// exists.
func (p *PartitionedProfile) ensureEntryAt(t int64) int {
	idx := p.indexAtOrBefore(t)
	if idx >= 0 && p.entries[idx].Time == t {
		return idx
	}
	free := make([]*rangeset.RangeList, len(p.partitions))
	for i := range free {
		if idx < 0 {
			free[i] = rangeset.New()
		} else {
			free[i] = p.entries[idx].Free[i].Clone()
		}
	}
	insertAt := idx + 1
	entry := &partEntry{Time: t, Free: free}
	p.entries = append(p.entries, nil)
	copy(p.entries[insertAt+1:], p.entries[insertAt:])
	p.entries[insertAt] = entry
	return insertAt
}

// AllocateResourceRanges deducts ranges from partition id over
// [start, finish). ranges must be a subset of the partition's free set at
// start, guaranteed by a preceding CheckAvailabilityWindow.
func (p *PartitionedProfile) AllocateResourceRanges(id int, ranges *rangeset.RangeList, start, finish int64) {
	p.checkPartition(id)
	anchorIdx := p.ensureEntryAt(start)
	capIdx := p.ensureEntryAt(finish)

	for i := anchorIdx; i < capIdx; i++ {
		p.entries[i].Free[id].Remove(ranges)
	}
	p.entries[anchorIdx].refCount++
	p.entries[capIdx].refCount++
}

// AddTimeSlot releases ranges back to partition id over [start, finish),
// decrementing the anchor/cap reference counts and dropping entries that
// become redundant.
func (p *PartitionedProfile) AddTimeSlot(id int, start, finish int64, ranges *rangeset.RangeList) {
	p.checkPartition(id)
	anchorIdx := p.ensureEntryAt(start)
	capIdx := p.ensureEntryAt(finish)

	for i := anchorIdx; i < capIdx; i++ {
		p.entries[i].Free[id].AddAll(ranges)
	}
	p.entries[anchorIdx].refCount--
	p.entries[capIdx].refCount--

	p.compact()
}

func (p *PartitionedProfile) compact() {
	for i := len(p.entries) - 1; i >= 1; i-- {
		e := p.entries[i]
		if e.refCount > 0 {
			continue
		}
		equal := true
		for j, f := range e.Free {
			if !f.Equals(p.entries[i-1].Free[j]) {
				equal = false
				break
			}
		}
		if equal {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
		}
	}
}

// GetTimeSlots returns the non-overlapping windows of availability for
// partition id between start and finish, one per constant-state segment.
func (p *PartitionedProfile) GetTimeSlots(id int, start, finish int64) []TimeSlot {
	p.checkPartition(id)
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
		slots = append(slots, TimeSlot{Start: t, End: segEnd, Free: p.entries[i].Free[id].Clone()})
		t = segEnd
	}
	return slots
}

// Snapshot returns a deep copy of partition id's view of the profile as
// single-partition entries, suitable for round-trip comparisons.
func (p *PartitionedProfile) Snapshot(id int) []Entry {
	p.checkPartition(id)
	out := make([]Entry, len(p.entries))
	for i, e := range p.entries {
		out[i] = Entry{Time: e.Time, Free: e.Free[id].Clone(), refCount: e.refCount}
	}
	return out
}
