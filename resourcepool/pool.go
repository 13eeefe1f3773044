// Package resourcepool is a thin façade binding a profile to utilisation
// queries; it owns no scheduling logic of its own.
package resourcepool

import "github.com/kernelsched/servsim/profile"

// ResourcePool wraps an availability profile with the handful of queries a
// server needs beyond raw profile access.
type ResourcePool struct {
	prof *profile.Profile
}

// New builds a ResourcePool over a freshly allocated profile of the given
// capacity.
func New(capacity int) *ResourcePool {
	return &ResourcePool{prof: profile.New(capacity)}
}

// NewReservationPool builds a ResourcePool whose profile starts fully
// reserved, for use as a reservation scheduler's parallel profile.
func NewReservationPool(capacity int) *ResourcePool {
	return &ResourcePool{prof: profile.NewFullyReserved(capacity)}
}

// Profile returns the underlying availability profile.
func (p *ResourcePool) Profile() *profile.Profile {
	return p.prof
}

// Capacity returns the pool's total resource count.
func (p *ResourcePool) Capacity() int {
	return p.prof.Capacity()
}

// Utilization returns the fraction of capacity in use at time now, in
// [0, 1].
func (p *ResourcePool) Utilization(now int64) float64 {
	entry := p.prof.CheckAvailability(now)
	if entry == nil {
		return 0
	}
	used := p.prof.Capacity() - entry.Free.Count()
	return float64(used) / float64(p.prof.Capacity())
}

// PartitionedPool is the multi-partition counterpart of ResourcePool: one
// shared time line, one free set per partition.
type PartitionedPool struct {
	prof *profile.PartitionedProfile
}

// NewPartitioned builds a PartitionedPool whose partitions hold the given
// sizes, carved contiguously from index 0 upward.
func NewPartitioned(sizes ...int) *PartitionedPool {
	return &PartitionedPool{prof: profile.NewPartitioned(sizes...)}
}

// Profile returns the underlying partitioned profile.
func (p *PartitionedPool) Profile() *profile.PartitionedProfile {
	return p.prof
}

// Capacity returns the pool's total resource count across all partitions.
func (p *PartitionedPool) Capacity() int {
	return p.prof.Capacity()
}

// Utilization returns the fraction of partition id's capacity in use at
// time now, in [0, 1].
func (p *PartitionedPool) Utilization(id int, now int64) float64 {
	entry := p.prof.CheckAvailability(id, now)
	if entry == nil {
		return 0
	}
	size := p.prof.Partition(id).Len()
	used := size - entry.Free.Count()
	return float64(used) / float64(size)
}
