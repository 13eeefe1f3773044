// Package scheduler defines the scheduler family's shared capability set and
// lifecycle machinery. Concrete policies (fcfs, preempt, conservative,
// aggressive, reservation) embed schedulerBase for allocation helpers and implement
// the Scheduler interface; Dispatch routes kernel events to it without
// relying on a class hierarchy.
package scheduler

import (
	"github.com/kernelsched/servsim/jobs"
	"github.com/kernelsched/servsim/kernel"
	"github.com/kernelsched/servsim/rangeset"
	"github.com/kernelsched/servsim/resourcepool"
)

// Attributes bundles what a Server builds a scheduler with: its resource
// pool and (informational) availability fraction.
type Attributes struct {
	Pool         *resourcepool.ResourcePool
	Availability float64
}

// Listener observes a job's status transitions.
type Listener func(job *jobs.Job, previous jobs.Status)

// Comparator orders waiting/running queues. Implementations must break ties
// by the job's submission order (effectively its creation serial) to stay
// deterministic; DefaultComparator does exactly that.
type Comparator func(a, b *jobs.Job) int

// DefaultComparator orders by submit time then by id, giving FIFO behaviour
// when no policy-specific comparator is installed.
func DefaultComparator(a, b *jobs.Job) int {
	if a.SubmitTime != b.SubmitTime {
		return cmp64(a.SubmitTime, b.SubmitTime)
	}
	return a.ID - b.ID
}

func cmp64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Scheduler is the capability set every policy implements: job lifecycle
// hooks plus access to its own Base for Dispatch to drive the shared
// self-directed events (TASK_START, and the allocation helpers below).
type Scheduler interface {
	Init(sim *kernel.Simulation, attrs *Attributes, serverID kernel.EntityID)
	Base() *schedulerBase
	JobArrive(job *jobs.Job)
	JobComplete(job *jobs.Job)
	JobCancel(job *jobs.Job)
}

// ReservationScheduler extends Scheduler with the reservation-aware
// operations: requesting, completing, and cancelling advance reservations.
type ReservationScheduler interface {
	Scheduler
	ReservationRequest(res *jobs.Reservation)
	ReservationComplete(res *jobs.Reservation)
	ReservationCancel(res *jobs.Reservation)
}

// Dispatch routes a kernel event to the scheduler's matching behaviour. It
// is the only place that knows the event-type vocabulary, so every server
// entity can share one Process implementation regardless of policy.
func Dispatch(s Scheduler, ev kernel.Event) {
	switch ev.Type {
	case kernel.TaskArrive:
		job := ev.Payload.(*jobs.Job)
		job.SubmitTime = s.Base().Sim.Now()
		job.SetStatus(jobs.Enqueued, job.SubmitTime)
		s.JobArrive(job)
	case kernel.TaskStart:
		job := ev.Payload.(*jobs.Job)
		s.Base().onTaskStart(job)
		if h, ok := s.(interface{ onJobStarted(*jobs.Job) }); ok {
			h.onJobStarted(job)
		}
	case kernel.TaskComplete:
		s.JobComplete(ev.Payload.(*jobs.Job))
	case kernel.TaskCancel:
		s.JobCancel(ev.Payload.(*jobs.Job))
	case kernel.ReservationRequest:
		if rs, ok := s.(ReservationScheduler); ok {
			rs.ReservationRequest(ev.Payload.(*jobs.Reservation))
		}
	case kernel.ReservationComplete:
		if rs, ok := s.(ReservationScheduler); ok {
			rs.ReservationComplete(ev.Payload.(*jobs.Reservation))
		}
	case kernel.ReservationCancel:
		if rs, ok := s.(ReservationScheduler); ok {
			rs.ReservationCancel(ev.Payload.(*jobs.Reservation))
		}
	}
}

// schedulerBase implements the machinery every policy shares: starting a job now,
// reserving a future slot, firing listeners, and notifying owners on
// terminal states. Concrete policies embed schedulerBase and call these helpers from
// their own JobArrive/JobComplete/JobCancel implementations.
type schedulerBase struct {
	Sim       *kernel.Simulation
	Attrs     *Attributes
	ServerID  kernel.EntityID
	Listeners []Listener
}

// Base satisfies the Scheduler.Base accessor for every embedder.
func (b *schedulerBase) Base() *schedulerBase { return b }

// Init wires the scheduler to its simulation, attributes, and owning
// server id. Concrete schedulers define no Init of their own; this one is
// promoted to them through embedding.
func (b *schedulerBase) Init(sim *kernel.Simulation, attrs *Attributes, serverID kernel.EntityID) {
	b.Sim = sim
	b.Attrs = attrs
	b.ServerID = serverID
}

// AddListener registers a status-change observer.
func (b *schedulerBase) AddListener(l Listener) {
	b.Listeners = append(b.Listeners, l)
}

func (b *schedulerBase) fireStatusChange(job *jobs.Job, previous jobs.Status) {
	for _, l := range b.Listeners {
		l(job, previous)
	}
}

// sendJobToOwner notifies the job's owner with RESULT_ARRIVE once it has
// reached a terminal state.
func (b *schedulerBase) sendJobToOwner(job *jobs.Job) {
	switch job.Status {
	case jobs.Complete, jobs.Cancelled, jobs.Failed:
		b.Sim.Send(b.ServerID, job.Owner, 0, kernel.ResultArrive, job)
	}
}

// startJob tries to run job immediately: query availability for its full
// remaining work at the current time, allocate if possible, and schedule
// its self-directed completion. Returns false, leaving the profile
// untouched, if resources are not currently available.
func (b *schedulerBase) startJob(job *jobs.Job) bool {
	now := b.Sim.Now()
	free, ok := b.Attrs.Pool.Profile().CheckAvailabilityWindow(job.NumResources, now, job.RemainingWork, false)
	if !ok {
		return false
	}
	ranges, ok := free.SelectResources(job.NumResources)
	if !ok {
		return false
	}
	b.Attrs.Pool.Profile().AllocateResourceRanges(ranges, now, now+job.RemainingWork)
	job.Ranges = ranges
	job.BurstStart = now
	prev := job.Status
	job.SetStatus(jobs.InExecution, now)
	b.fireStatusChange(job, prev)
	b.Sim.Send(b.ServerID, b.ServerID, job.RemainingWork, kernel.TaskComplete, job)
	return true
}

// allocateResourcesToJob reserves a future slot for job: allocate over
// [startInFuture, startInFuture+duration), mark it WAITING, and schedule a
// self-directed TASK_START at startInFuture.
func (b *schedulerBase) allocateResourcesToJob(startInFuture int64, job *jobs.Job, ranges *rangeset.RangeList) {
	b.Attrs.Pool.Profile().AllocateResourceRanges(ranges, startInFuture, startInFuture+job.RemainingWork)
	job.Ranges = ranges
	job.ReservedStart = startInFuture
	prev := job.Status
	job.SetStatus(jobs.Waiting, b.Sim.Now())
	b.fireStatusChange(job, prev)
	b.Sim.Send(b.ServerID, b.ServerID, startInFuture-b.Sim.Now(), kernel.TaskStart, job)
}

// onTaskStart fires when a reserved slot's start time arrives: the job
// moves to IN_EXECUTION and its completion is scheduled.
func (b *schedulerBase) onTaskStart(job *jobs.Job) {
	now := b.Sim.Now()
	job.BurstStart = now
	prev := job.Status
	job.SetStatus(jobs.InExecution, now)
	b.fireStatusChange(job, prev)
	b.Sim.Send(b.ServerID, b.ServerID, job.RemainingWork, kernel.TaskComplete, job)
}

// completeJob releases job's currently held ranges, marks it COMPLETE, and
// notifies its owner. The release window runs from the current burst's
// start to now, matching whatever was actually allocated for this burst.
func (b *schedulerBase) completeJob(job *jobs.Job) {
	now := b.Sim.Now()
	b.Attrs.Pool.Profile().AddTimeSlot(job.BurstStart, now, job.Ranges)
	prev := job.Status
	job.SetStatus(jobs.Complete, now)
	job.RecordActivity(job.BurstStart, now, job.Ranges, 0)
	b.fireStatusChange(job, prev)
	b.sendJobToOwner(job)
}

// failJob transitions job to FAILED without touching the profile (it never
// held resources) and notifies its owner.
func (b *schedulerBase) failJob(job *jobs.Job) {
	prev := job.Status
	job.SetStatus(jobs.Failed, b.Sim.Now())
	b.fireStatusChange(job, prev)
	b.sendJobToOwner(job)
}

// cancelRunningJob releases job's held ranges, marks it CANCELLED, and
// notifies its owner. Used when a job in IN_EXECUTION or WAITING is
// cancelled while holding (or reserving) resources.
func (b *schedulerBase) cancelRunningJob(job *jobs.Job) {
	now := b.Sim.Now()
	if job.Ranges != nil && !job.Ranges.IsEmpty() {
		start := job.BurstStart
		if job.Status == jobs.Waiting {
			start = job.ReservedStart
		}
		b.Attrs.Pool.Profile().AddTimeSlot(start, start+job.RemainingWork, job.Ranges)
	}
	prev := job.Status
	job.SetStatus(jobs.Cancelled, now)
	b.fireStatusChange(job, prev)
	b.sendJobToOwner(job)
}
