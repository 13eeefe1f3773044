package profile

import "github.com/kernelsched/servsim/rangeset"

// Entry is a record at a specific simulation instant carrying the free
// resource set valid from Time until the next entry, plus a reference count
// of pending allocations that pin it as an anchor or cap.
type Entry struct {
	Time     int64
	Free     *rangeset.RangeList
	refCount int
}

// RefCount reports how many allocations currently pin this entry.
func (e *Entry) RefCount() int {
	return e.refCount
}

func (e *Entry) clone() *Entry {
	return &Entry{Time: e.Time, Free: e.Free.Clone(), refCount: e.refCount}
}
