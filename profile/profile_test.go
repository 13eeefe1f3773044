package profile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kernelsched/servsim/rangeset"
)

func TestProfileRoundTrip(t *testing.T) {
	p := New(100)

	first, _ := p.CheckAvailabilityWindow(50, 0, 50, false)
	if first == nil || first.Count() != 100 {
		t.Fatalf("expected 100 free at t=0 before allocation")
	}

	p.AllocateResourceRanges(rangeset.New(rangeset.Range{Begin: 0, End: 49}), 0, 50)
	p.AllocateResourceRanges(rangeset.New(rangeset.Range{Begin: 50, End: 99}), 0, 50)

	entry := p.CheckAvailability(0)
	if entry.Free.Count() != 0 {
		t.Errorf("checkAvailability(0).Free.Count() = %d, want 0", entry.Free.Count())
	}

	if start, ok := p.FindStartTime(50, 0, 50); !ok || start != 50 {
		t.Errorf("FindStartTime(50, 0, 50) = (%d, %v), want (50, true)", start, ok)
	}

	p.AllocateResourceRanges(rangeset.New(rangeset.Range{Begin: 0, End: 99}), 60, 70)

	if start, ok := p.FindStartTime(100, 0, 10); !ok || start != 50 {
		t.Errorf("FindStartTime(100, 0, 10) = (%d, %v), want (50, true)", start, ok)
	}
	if start, ok := p.FindStartTime(100, 0, 50); !ok || start != 70 {
		t.Errorf("FindStartTime(100, 0, 50) = (%d, %v), want (70, true)", start, ok)
	}
}

func TestProfileAllocateReleaseRoundTrip(t *testing.T) {
	p := New(20)
	before := p.Snapshot()

	ranges := rangeset.New(rangeset.Range{Begin: 0, End: 9})
	p.AllocateResourceRanges(ranges, 10, 30)
	p.AddTimeSlot(10, 30, ranges)

	if diff := cmp.Diff(before, p.Snapshot(), cmp.AllowUnexported(Entry{}), cmp.Comparer(rangeListEqual)); diff != "" {
		t.Errorf("profile changed across allocate+release (-before +after):\n%s", diff)
	}
}

func TestProfileCapacityConservation(t *testing.T) {
	p := New(16)
	ranges := rangeset.New(rangeset.Range{Begin: 0, End: 3})
	p.AllocateResourceRanges(ranges, 0, 5)

	for _, e := range p.Snapshot() {
		allocated := p.Capacity() - e.Free.Count()
		if e.Free.Count()+allocated != p.Capacity() {
			t.Errorf("entry at %d: free + allocated != capacity", e.Time)
		}
	}
}

func TestProfileFullyReservedStartsEmpty(t *testing.T) {
	p := NewFullyReserved(8)
	entry := p.CheckAvailability(0)
	if entry.Free.Count() != 0 {
		t.Errorf("NewFullyReserved should start with 0 free, got %d", entry.Free.Count())
	}
}

func TestProfileGetTimeSlots(t *testing.T) {
	p := New(10)
	p.AllocateResourceRanges(rangeset.New(rangeset.Range{Begin: 0, End: 4}), 0, 10)

	slots := p.GetTimeSlots(0, 10)
	if len(slots) != 1 {
		t.Fatalf("expected 1 constant segment, got %d", len(slots))
	}
	if slots[0].Free.Count() != 5 {
		t.Errorf("slot free count = %d, want 5", slots[0].Free.Count())
	}
}
