package scheduler

import "github.com/kernelsched/servsim/jobs"

// AggressiveScheduler implements EASY (aggressive) backfilling: at most one
// queued job — the pivot, the job at the head of the queue — has a reserved
// start time, and that reservation is the only thing later arrivals must
// not disturb. Everything else may run out of order whenever it fits
// without pushing the pivot back.
//
// The barrier against delaying the pivot is its already recorded
// reservation, not a fresh findStartTime call against a job no longer in
// the queue.
type AggressiveScheduler struct {
	schedulerBase
	Waiting    []*jobs.Job // FIFO queue; Waiting[0], if present, may be the pivot
	Running    []*jobs.Job
	Comparator Comparator
	pivot      *jobs.Job
	pivotStart int64
}

// NewAggressiveScheduler builds an EASY-backfilling scheduler. cmp orders
// the waiting queue; nil falls back to DefaultComparator (submission order,
// which is what gives the head job its claim to pivot status).

func NewAggressiveScheduler(cmp Comparator) *AggressiveScheduler {
	if cmp == nil {
		cmp = DefaultComparator
	}
	return &AggressiveScheduler{Comparator: cmp}
}

func (s *AggressiveScheduler) JobArrive(job *jobs.Job) {
	if s.startJob(job) {
		s.Running = append(s.Running, job)
		return
	}
	if s.pivot == nil {
		s.makePivot(job)
		return
	}
	if s.canBackfill(job) {
		s.Running = append(s.Running, job)
		return
	}
	job.SetStatus(jobs.Waiting, s.Sim.Now())
	s.Waiting = insertSorted(s.Waiting, job, s.Comparator)
}

// makePivot finds the earliest feasible start for job, reserves that slot
// in the profile (so later backfill candidates structurally cannot touch
// it — see canBackfill), and installs job as the pivot.
func (s *AggressiveScheduler) makePivot(job *jobs.Job) {
	start, ok := s.Attrs.Pool.Profile().FindStartTime(job.NumResources, s.Sim.Now(), job.RemainingWork)
	if !ok {
		s.failJob(job)
		return
	}
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
	s.Waiting = insertSorted(s.Waiting, job, s.Comparator)
	s.pivot = job
	s.pivotStart = start
}

// canBackfill reports whether job can start right now for its full
// remaining work. Once the pivot's reservation is recorded, its range is
// carved out of the profile's free set (AllocateResourceRanges in
// allocateResourcesToJob already subtracted it), so any ordinary
// feasibility check against the current profile automatically excludes the
// pivot's reserved indices and can never encroach on them.
func (s *AggressiveScheduler) canBackfill(job *jobs.Job) bool {
	return s.startJob(job)
}

func (s *AggressiveScheduler) JobComplete(job *jobs.Job) {
	s.completeJob(job)
	s.Running = removeJob(s.Running, job)
	if job == s.pivot {
		s.clearPivotAndReevaluate()
	} else {
		s.tryBackfillWaiting()
	}
}

func (s *AggressiveScheduler) JobCancel(job *jobs.Job) {
	switch job.Status {
	case jobs.Waiting:
		s.Waiting = removeJob(s.Waiting, job)
		isPivot := job == s.pivot
		if isPivot {
			// Only the pivot holds a committed profile reservation while
			// WAITING (see makePivot); an ordinary queued job holds nothing
			// to release.
			s.Sim.CancelFutureEvents(sameJobStartOrComplete(job))
			s.Attrs.Pool.Profile().AddTimeSlot(job.ReservedStart, job.ReservedStart+job.RemainingWork, job.Ranges)
		}
		prev := job.Status
		job.SetStatus(jobs.Cancelled, s.Sim.Now())
		s.fireStatusChange(job, prev)
		s.sendJobToOwner(job)
		if isPivot {
			s.clearPivotAndReevaluate()
		}
	case jobs.InExecution:
		s.Sim.CancelFutureEvents(sameJobCompletion(job))
		s.cancelRunningJob(job)
		s.Running = removeJob(s.Running, job)
		if job == s.pivot {
			s.clearPivotAndReevaluate()
		} else {
			s.tryBackfillWaiting()
		}
	}
}

// onJobStarted is invoked by Dispatch right after Base.onTaskStart moves
// job to IN_EXECUTION for a reserved TASK_START. For the pivot specifically
// this is the moment its reservation is consumed; the waiting queue then
// gets a fresh pivot candidate.
func (s *AggressiveScheduler) onJobStarted(job *jobs.Job) {
	if job == s.pivot {
		s.Running = append(s.Running, job)
		s.Waiting = removeJob(s.Waiting, job)
		s.clearPivotAndReevaluate()
	}
}

// clearPivotAndReevaluate drops the current pivot and, if jobs remain
// waiting, promotes the new head to pivot with a fresh reservation.
func (s *AggressiveScheduler) clearPivotAndReevaluate() {
	s.pivot = nil
	s.tryBackfillWaiting()
	if len(s.Waiting) == 0 {
		return
	}
	head := s.Waiting[0]
	s.Waiting = removeJob(s.Waiting, head)
	s.makePivot(head)
}

// tryBackfillWaiting scans the waiting queue (excluding the pivot) for jobs
// that can now start without disturbing the pivot's recorded slot.
func (s *AggressiveScheduler) tryBackfillWaiting() {
	for _, job := range append([]*jobs.Job(nil), s.Waiting...) {
		if job == s.pivot {
			continue
		}
		if s.pivot == nil {
			if s.startJob(job) {
				s.Waiting = removeJob(s.Waiting, job)
				s.Running = append(s.Running, job)
			}
			continue
		}
		if s.canBackfill(job) {
			s.Waiting = removeJob(s.Waiting, job)
			s.Running = append(s.Running, job)
		}
	}
}
