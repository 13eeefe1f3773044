package scheduler

import (
	"github.com/kernelsched/servsim/jobs"
	"github.com/kernelsched/servsim/kernel"
	"github.com/kernelsched/servsim/rangeset"
	"github.com/kernelsched/servsim/resourcepool"
)

// ConservativeReservationScheduler wraps conservative backfilling with an
// immovable reservation class. Reservations draw from their own parallel
// profile, initially "fully allocated"; accepting one releases its window
// into that profile (making it available to jobs tagged with the
// reservation) while allocating the identical window in the main profile
// (keeping it unavailable to ordinary jobs).
type ConservativeReservationScheduler struct {
	ConservativeScheduler
	ReservePool  *resourcepool.ResourcePool
	reservations map[int]*jobs.Reservation
}

// NewConservativeReservationScheduler builds a reservation-aware
// conservative backfiller. reserveCapacity must match the main pool's
// capacity: the reservation profile uses the same index space, starts with
// nothing free, and only gains free ranges where an accepted reservation's
// window is released into it.
func NewConservativeReservationScheduler(cmp Comparator, reserveCapacity int) *ConservativeReservationScheduler {
	if cmp == nil {
		cmp = DefaultComparator
	}
	return &ConservativeReservationScheduler{
		ConservativeScheduler: ConservativeScheduler{Comparator: cmp},
		ReservePool:           resourcepool.NewReservationPool(reserveCapacity),
		reservations:          make(map[int]*jobs.Reservation),
	}
}

// JobArrive overrides the conservative base: a reservation-tagged job
// draws resources from the reservation profile, not the main one, and
// never starts before its reservation's own requested start — an arrival
// ahead of that time is reserved for the later of the two, exactly like an
// ordinary job's tentative slot, and promoted to IN_EXECUTION through the
// same self-directed TASK_START path (see onJobStarted, inherited from
// ConservativeScheduler). The reservation profile starts fully committed
// and only an accepted reservation's window is ever released into it (see
// NewConservativeReservationScheduler and ReservationRequest), so a
// feasibility check against it is automatically confined to the
// reservation's time window without any extra bounds checking; the
// intersection with res.Ranges further confines a job to its own
// reservation's indices when multiple reservations are live at once. The
// main profile's own block for the full reservation footprint (laid down
// at accept time) is left untouched per job — the reservation holds that
// capacity regardless of whether any of its jobs are currently running.
func (s *ConservativeReservationScheduler) JobArrive(job *jobs.Job) {
	if !job.IsReservationBound() {
		s.ConservativeScheduler.JobArrive(job)
		return
	}
	res, ok := s.reservations[*job.ReservationID]
	if !ok || !res.Accepted {
		s.failJob(job)
		return
	}
	start := res.RequestedStart
	if now := s.Sim.Now(); now > start {
		start = now
	}
	free, ok := s.ReservePool.Profile().CheckAvailabilityWindow(job.NumResources, start, job.RemainingWork, false)
	if !ok {
		s.failJob(job)
		return
	}
	within := free.Intersection(res.Ranges)
	ranges, ok := within.SelectResources(job.NumResources)
	if !ok {
		s.failJob(job)
		return
	}
	s.ReservePool.Profile().AllocateResourceRanges(ranges, start, start+job.RemainingWork)
	job.Ranges = ranges
	job.ReservedStart = start
	prev := job.Status
	job.SetStatus(jobs.Waiting, s.Sim.Now())
	s.fireStatusChange(job, prev)
	s.Sim.Send(s.ServerID, s.ServerID, start-s.Sim.Now(), kernel.TaskStart, job)
	s.Waiting = insertByStart(s.Waiting, job, s.Comparator)
	res.DependentJobs = append(res.DependentJobs, job.ID)
}

// JobComplete overrides the conservative base to release a
// reservation-bound job's ranges back into the reservation profile (where
// they were allocated from) instead of the main one.
func (s *ConservativeReservationScheduler) JobComplete(job *jobs.Job) {
	if !job.IsReservationBound() {
		s.ConservativeScheduler.JobComplete(job)
		return
	}
	now := s.Sim.Now()
	s.ReservePool.Profile().AddTimeSlot(job.BurstStart, now, job.Ranges)
	prev := job.Status
	job.SetStatus(jobs.Complete, now)
	job.RecordActivity(job.BurstStart, now, job.Ranges, 0)
	s.fireStatusChange(job, prev)
	s.sendJobToOwner(job)
	s.Running = removeJob(s.Running, job)
}

// JobCancel overrides the conservative base the same way for cancellation:
// a reservation-bound job's held or reserved ranges live in the reservation
// profile, not the main one, regardless of whether it has started.
func (s *ConservativeReservationScheduler) JobCancel(job *jobs.Job) {
	if !job.IsReservationBound() {
		s.ConservativeScheduler.JobCancel(job)
		return
	}
	switch job.Status {
	case jobs.Waiting:
		s.Sim.CancelFutureEvents(sameJobStartOrComplete(job))
		s.ReservePool.Profile().AddTimeSlot(job.ReservedStart, job.ReservedStart+job.RemainingWork, job.Ranges)
		prev := job.Status
		job.SetStatus(jobs.Cancelled, s.Sim.Now())
		s.fireStatusChange(job, prev)
		s.sendJobToOwner(job)
		s.Waiting = removeJob(s.Waiting, job)
	case jobs.InExecution:
		s.Sim.CancelFutureEvents(sameJobCompletion(job))
		if job.Ranges != nil && !job.Ranges.IsEmpty() {
			s.ReservePool.Profile().AddTimeSlot(job.BurstStart, job.BurstStart+job.RemainingWork, job.Ranges)
		}
		prev := job.Status
		job.SetStatus(jobs.Cancelled, s.Sim.Now())
		s.fireStatusChange(job, prev)
		s.sendJobToOwner(job)
		s.Running = removeJob(s.Running, job)
	}
}

// ReservationRequest accepts or rejects a reservation against the main
// profile's feasibility at its requested window, independent of the
// ordinary waiting queue (reservations are immovable once accepted, so no
// backfilling search applies to them).
func (s *ConservativeReservationScheduler) ReservationRequest(res *jobs.Reservation) {
	free, ok := s.Attrs.Pool.Profile().CheckAvailabilityWindow(res.NumResources, res.RequestedStart, res.Duration, false)
	if !ok {
		s.reservations[res.ID] = res
		s.Sim.Send(s.ServerID, res.Owner, 0, kernel.ReservationResponse, &ReservationResponse{Reservation: res, Accepted: false})
		return
	}
	ranges, ok := free.SelectResources(res.NumResources)
	if !ok {
		s.Sim.Send(s.ServerID, res.Owner, 0, kernel.ReservationResponse, &ReservationResponse{Reservation: res, Accepted: false})
		return
	}
	finish := res.RequestedStart + res.Duration
	s.Attrs.Pool.Profile().AllocateResourceRanges(ranges, res.RequestedStart, finish)
	s.ReservePool.Profile().AddTimeSlot(res.RequestedStart, finish, ranges)
	res.Ranges = ranges
	res.Accepted = true
	s.reservations[res.ID] = res
	s.Sim.Send(s.ServerID, res.Owner, 0, kernel.ReservationResponse, &ReservationResponse{Reservation: res, Accepted: true, Ranges: ranges})
}

// ReservationComplete releases an accepted reservation's window back to the
// main profile once its coverage window has elapsed and re-commits it as
// unavailable in the reservation profile, mirroring the accept step in
// reverse.
func (s *ConservativeReservationScheduler) ReservationComplete(res *jobs.Reservation) {
	finish := res.RequestedStart + res.Duration
	s.Attrs.Pool.Profile().AddTimeSlot(res.RequestedStart, finish, res.Ranges)
	s.ReservePool.Profile().AllocateResourceRanges(res.Ranges, res.RequestedStart, finish)
	delete(s.reservations, res.ID)
}

// ReservationCancel cancels every job tagged with this reservation first —
// releasing each one's hold on the reservation profile via JobCancel — and
// only then, if the reservation was accepted, reverts both profiles over its
// full requested window: cancelling dependants before re-blocking
// their footprint avoids re-allocating indices the jobs haven't released
// yet.
func (s *ConservativeReservationScheduler) ReservationCancel(res *jobs.Reservation) {
	for _, jobID := range res.DependentJobs {
		if j := s.findDependent(jobID); j != nil {
			s.JobCancel(j)
		}
	}
	if res.Accepted {
		finish := res.RequestedStart + res.Duration
		s.Attrs.Pool.Profile().AddTimeSlot(res.RequestedStart, finish, res.Ranges)
		s.ReservePool.Profile().AllocateResourceRanges(res.Ranges, res.RequestedStart, finish)
	}
	delete(s.reservations, res.ID)
}

// findDependent looks up a reservation's dependent job by id among the
// jobs this scheduler still tracks (a finished or already-cancelled job
// simply won't be found, and is skipped).
func (s *ConservativeReservationScheduler) findDependent(id int) *jobs.Job {
	for _, j := range s.Running {
		if j.ID == id {
			return j
		}
	}
	for _, j := range s.Waiting {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// ReservationResponse is the RESERVATION_RESPONSE payload delivered back to
// a ReservationUser.
type ReservationResponse struct {
	Reservation *jobs.Reservation
	Accepted    bool
	Ranges      *rangeset.RangeList
}
