package scheduler

import (
	"github.com/kernelsched/servsim/jobs"
	"github.com/kernelsched/servsim/kernel"
)

// DefaultScheduler is plain FCFS: try to start on arrival, else enqueue; on
// completion or cancellation, walk the sorted waiting queue from the head,
// starting jobs until the first one that cannot start.
type DefaultScheduler struct {
	schedulerBase
	Waiting    []*jobs.Job
	Running    []*jobs.Job
	Comparator Comparator
}

// NewDefaultScheduler builds an FCFS scheduler. cmp may be nil for plain
// submit-order FIFO.
func NewDefaultScheduler(cmp Comparator) *DefaultScheduler {
	if cmp == nil {
		cmp = DefaultComparator
	}
	return &DefaultScheduler{Comparator: cmp}
}


func (s *DefaultScheduler) JobArrive(job *jobs.Job) {
	if s.startJob(job) {
		s.Running = append(s.Running, job)
		return
	}
	job.SetStatus(jobs.Waiting, s.Sim.Now())
	s.Waiting = insertSorted(s.Waiting, job, s.Comparator)
}

func (s *DefaultScheduler) JobComplete(job *jobs.Job) {
	s.completeJob(job)
	s.Running = removeJob(s.Running, job)
	s.startWaitingJobs()
}

func (s *DefaultScheduler) JobCancel(job *jobs.Job) {
	switch job.Status {
	case jobs.Waiting:
		s.Waiting = removeJob(s.Waiting, job)
		prev := job.Status
		job.SetStatus(jobs.Cancelled, s.Sim.Now())
		s.fireStatusChange(job, prev)
		s.sendJobToOwner(job)
	case jobs.InExecution:
		s.Sim.CancelFutureEvents(sameJobCompletion(job))
		s.cancelRunningJob(job)
		s.Running = removeJob(s.Running, job)
		s.startWaitingJobs()
	}
}

// startWaitingJobs attempts to start jobs from the head of the sorted
// waiting queue, stopping at the first one that cannot start — the FCFS
// invariant that later jobs never jump ahead of an unsatisfiable earlier
// one.
func (s *DefaultScheduler) startWaitingJobs() {
	for len(s.Waiting) > 0 {
		head := s.Waiting[0]
		if !s.startJob(head) {
			break
		}
		s.Waiting = s.Waiting[1:]
		s.Running = append(s.Running, head)
	}
}

// insertSorted inserts job into a slice kept ordered by cmp.
func insertSorted(queue []*jobs.Job, job *jobs.Job, cmp Comparator) []*jobs.Job {
	i := 0
	for i < len(queue) && cmp(queue[i], job) <= 0 {
		i++
	}
	queue = append(queue, nil)
	copy(queue[i+1:], queue[i:])
	queue[i] = job
	return queue
}

func removeJob(queue []*jobs.Job, job *jobs.Job) []*jobs.Job {
	for i, j := range queue {
		if j == job {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}

// sameJobCompletion matches a job's own pending TASK_COMPLETE self-event.
func sameJobCompletion(job *jobs.Job) func(kernel.Event) bool {
	return func(ev kernel.Event) bool {
		if ev.Type != kernel.TaskComplete {
			return false
		}
		other, ok := ev.Payload.(*jobs.Job)
		return ok && other == job
	}
}
