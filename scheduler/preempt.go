package scheduler

import "github.com/kernelsched/servsim/jobs"

// PreemptionScheduler starts a job immediately if possible; otherwise, if a
// running job has strictly lower priority per Comparator, it preempts that
// job (pausing it, releasing only the resources it has not yet consumed)
// to start the arrival. Paused jobs resume with ResumeOverhead added to
// their remaining work.
type PreemptionScheduler struct {
	schedulerBase
	Waiting        []*jobs.Job // WAITING and PAUSED jobs, ordered by Comparator
	Running        []*jobs.Job
	Comparator     Comparator
	ResumeOverhead int64
}

// NewPreemptionScheduler builds a priority-preemptive scheduler. cmp should
// encode the priority order (e.g. highest-priority-first); nil falls back
// to submission order, which degenerates to FCFS since no job is ever
// "more urgent" than another.
func NewPreemptionScheduler(cmp Comparator, resumeOverhead int64) *PreemptionScheduler {
	if cmp == nil {
		cmp = DefaultComparator
	}
	return &PreemptionScheduler{Comparator: cmp, ResumeOverhead: resumeOverhead}
}


func (s *PreemptionScheduler) JobArrive(job *jobs.Job) {
	if s.startJob(job) {
		s.Running = append(s.Running, job)
		return
	}
	if victim := s.findVictim(job); victim != nil {
		s.preempt(victim)
		if s.startJob(job) {
			s.Running = append(s.Running, job)
			return
		}
	}
	job.SetStatus(jobs.Waiting, s.Sim.Now())
	s.Waiting = insertSorted(s.Waiting, job, s.Comparator)
}

func (s *PreemptionScheduler) JobComplete(job *jobs.Job) {
	s.completeJob(job)
	s.Running = removeJob(s.Running, job)
	s.startWaitingJobs()
}

func (s *PreemptionScheduler) JobCancel(job *jobs.Job) {
	switch job.Status {
	case jobs.Waiting, jobs.Paused:
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

// findVictim returns a running job the arriving job may preempt: strictly
// lower priority per Comparator, with work still remaining.
func (s *PreemptionScheduler) findVictim(arriving *jobs.Job) *jobs.Job {
	for _, v := range s.Running {
		if v.RemainingWork > 0 && s.Comparator(arriving, v) < 0 {
			return v
		}
	}
	return nil
}

// preempt releases the portion of v's allocation it will no longer use,
// re-commits the portion it actually consumed (so its JobActivity and the
// profile agree on what ran), debits RemainingWork by the elapsed slice,
// and moves v to PAUSED.
func (s *PreemptionScheduler) preempt(v *jobs.Job) {
	now := s.Sim.Now()
	s.Sim.CancelFutureEvents(sameJobCompletion(v))

	oldFinish := v.BurstStart + v.RemainingWork
	prof := s.Attrs.Pool.Profile()
	prof.AddTimeSlot(v.BurstStart, oldFinish, v.Ranges)
	prof.AllocateResourceRanges(v.Ranges, v.BurstStart, now)
	v.RecordActivity(v.BurstStart, now, v.Ranges, 0)

	v.RemainingWork -= now - v.BurstStart
	if v.RemainingWork < 0 {
		v.RemainingWork = 0
	}

	prev := v.Status
	v.SetStatus(jobs.Paused, now)
	s.fireStatusChange(v, prev)
	s.Running = removeJob(s.Running, v)
	s.Waiting = insertSorted(s.Waiting, v, s.Comparator)
}

// startWaitingJobs walks the sorted waiting queue, adding the resume
// overhead to any PAUSED job it tries, stopping at the first job that
// cannot start.
func (s *PreemptionScheduler) startWaitingJobs() {
	for len(s.Waiting) > 0 {
		head := s.Waiting[0]
		resuming := head.Status == jobs.Paused
		if resuming {
			head.RemainingWork += s.ResumeOverhead
		}
		if !s.startJob(head) {
			if resuming {
				head.RemainingWork -= s.ResumeOverhead
			}
			break
		}
		s.Waiting = s.Waiting[1:]
		s.Running = append(s.Running, head)
	}
}
