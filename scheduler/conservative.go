package scheduler

import (
	"github.com/kernelsched/servsim/jobs"
	"github.com/kernelsched/servsim/kernel"
)

// ConservativeScheduler implements conservative backfilling: every
// queued job carries a reserved future slot the instant it cannot start
// immediately, so no later arrival is ever allowed to push it back. A
// cancellation compresses the schedule, sliding later reservations earlier
// where the freed capacity allows.
type ConservativeScheduler struct {
	schedulerBase
	Waiting    []*jobs.Job // reserved in the profile, ordered by ReservedStart then Comparator
	Running    []*jobs.Job
	Comparator Comparator
}

// NewConservativeScheduler builds a conservative-backfilling scheduler. cmp
// orders jobs with equal ReservedStart (e.g. arrival order); nil falls back
// to DefaultComparator.
func NewConservativeScheduler(cmp Comparator) *ConservativeScheduler {
	if cmp == nil {
		cmp = DefaultComparator
	}
	return &ConservativeScheduler{Comparator: cmp}
}


func (s *ConservativeScheduler) JobArrive(job *jobs.Job) {
	if s.startJob(job) {
		s.Running = append(s.Running, job)
		return
	}
	start, ok := s.Attrs.Pool.Profile().FindStartTime(job.NumResources, s.Sim.Now(), job.RemainingWork)
	if !ok {
		s.failJob(job)
		return
	}
	s.reserve(job, start)
}

func (s *ConservativeScheduler) reserve(job *jobs.Job, start int64) {
	free, ok := s.Attrs.Pool.Profile().CheckAvailabilityWindow(job.NumResources, start, job.RemainingWork, false)
	if !ok {
		s.failJob(job)
		return
	}
	ranges, ok := free.SelectResources(job.NumResources)
	if !ok {
		s.failJob(job)
		return
	}
	s.allocateResourcesToJob(start, job, ranges)
	s.Waiting = insertByStart(s.Waiting, job, s.Comparator)
}

// onJobStarted moves job from the reserved Waiting queue to Running once
// its recorded TASK_START fires.
func (s *ConservativeScheduler) onJobStarted(job *jobs.Job) {
	s.Waiting = removeJob(s.Waiting, job)
	s.Running = append(s.Running, job)
}

func (s *ConservativeScheduler) JobComplete(job *jobs.Job) {
	s.completeJob(job)
	s.Running = removeJob(s.Running, job)
}

func (s *ConservativeScheduler) JobCancel(job *jobs.Job) {
	switch job.Status {
	case jobs.Waiting:
		cancelledStart := job.ReservedStart
		s.Sim.CancelFutureEvents(sameJobStartOrComplete(job))
		s.Attrs.Pool.Profile().AddTimeSlot(job.ReservedStart, job.ReservedStart+job.RemainingWork, job.Ranges)
		prev := job.Status
		job.SetStatus(jobs.Cancelled, s.Sim.Now())
		s.fireStatusChange(job, prev)
		s.sendJobToOwner(job)
		s.Waiting = removeJob(s.Waiting, job)
		s.compress(cancelledStart)
	case jobs.InExecution:
		s.Sim.CancelFutureEvents(sameJobCompletion(job))
		s.cancelRunningJob(job)
		s.Running = removeJob(s.Running, job)
		s.compress(job.BurstStart)
	}
}

// compress re-plans every reserved job whose slot starts after
// afterStart: release its tentative reservation, then re-run feasibility
// from the head of the queue (sorted by reserved start), re-allocating as
// jobs fit into freed capacity. No job's new start time can be later than
// its old one, since the freed capacity can only help.
func (s *ConservativeScheduler) compress(afterStart int64) {
	var toReplan []*jobs.Job
	var keep []*jobs.Job
	for _, j := range s.Waiting {
		if j.ReservedStart > afterStart && !j.IsReservationBound() {
			toReplan = append(toReplan, j)
			s.Sim.CancelFutureEvents(sameJobStartOrComplete(j))
			s.Attrs.Pool.Profile().AddTimeSlot(j.ReservedStart, j.ReservedStart+j.RemainingWork, j.Ranges)
		} else {
			keep = append(keep, j)
		}
	}
	s.Waiting = keep
	sortByStart(toReplan, s.Comparator)
	for _, j := range toReplan {
		start, ok := s.Attrs.Pool.Profile().FindStartTime(j.NumResources, s.Sim.Now(), j.RemainingWork)
		if !ok {
			s.failJob(j)
			continue
		}
		s.reserve(j, start)
	}
}

// insertByStart inserts job into a slice kept ordered by ReservedStart, with
// cmp breaking ties.
func insertByStart(queue []*jobs.Job, job *jobs.Job, cmp Comparator) []*jobs.Job {
	i := 0
	for i < len(queue) && (queue[i].ReservedStart < job.ReservedStart ||
		(queue[i].ReservedStart == job.ReservedStart && cmp(queue[i], job) <= 0)) {
		i++
	}
	queue = append(queue, nil)
	copy(queue[i+1:], queue[i:])
	queue[i] = job
	return queue
}

func sortByStart(queue []*jobs.Job, cmp Comparator) {
	for i := 1; i < len(queue); i++ {
		j := i
		for j > 0 && (queue[j-1].ReservedStart > queue[j].ReservedStart ||
			(queue[j-1].ReservedStart == queue[j].ReservedStart && cmp(queue[j-1], queue[j]) > 0)) {
			queue[j-1], queue[j] = queue[j], queue[j-1]
			j--
		}
	}
}

// sameJobStartOrComplete matches a job's own pending self-directed
// TASK_START or TASK_COMPLETE event, used when re-planning a reservation
// that has not yet begun executing.
func sameJobStartOrComplete(job *jobs.Job) func(kernel.Event) bool {
	return func(ev kernel.Event) bool {
		if ev.Type != kernel.TaskStart && ev.Type != kernel.TaskComplete {
			return false
		}
		other, ok := ev.Payload.(*jobs.Job)
		return ok && other == job
	}
}
