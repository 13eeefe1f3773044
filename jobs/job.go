package jobs

import (
	"github.com/kernelsched/servsim/kernel"
	"github.com/kernelsched/servsim/rangeset"
)

// Activity records one execution burst of a job, from start to finish over
// the resource range it held. Preempted jobs accumulate one Activity per
// resumed burst.
type Activity struct {
	Start, Finish  int64
	Ranges         *rangeset.RangeList
	ResumeOverhead int64
}

// Job (a.k.a. work unit) is anything scheduled on resources: identity,
// owner, timestamps, resource demand, priority, and current status.
type Job struct {
	ID            int
	Owner         kernel.EntityID
	SubmitTime    int64
	StartTime     int64
	FinishTime    int64
	BurstStart    int64 // start of the current execution burst; unlike StartTime this updates on every resume
	Duration      int64 // user-estimated runtime, as submitted
	RemainingWork int64 // effective work left to run; debited across preemptions
	ReservedStart int64 // recorded future start time once a slot has been allocated ahead of time
	NumResources  int
	Priority      int // lower value = higher priority
	Deadline      *int64
	ReservationID *int
	Status        Status
	Ranges        *rangeset.RangeList
	Activities    []Activity
}

// NewJob builds a job fresh off submission: UNKNOWN status, remaining work
// equal to the full estimated duration.
func NewJob(id int, owner kernel.EntityID, submitTime int64, duration int64, numResources int, priority int) *Job {
	return &Job{
		ID:            id,
		Owner:         owner,
		SubmitTime:    submitTime,
		Duration:      duration,
		RemainingWork: duration,
		NumResources:  numResources,
		Priority:      priority,
		Status:        Unknown,
	}
}

// SetStatus attempts the transition to "to" at virtual time now. It returns
// false without mutating anything if the transition is not permitted by the
// status state machine.
func (j *Job) SetStatus(to Status, now int64) bool {
	if !CanTransition(j.Status, to) {
		return false
	}
	from := j.Status
	if to == InExecution && from != Paused {
		j.StartTime = now
	}
	if (to == Complete || to == Cancelled || to == Failed) && (from == InExecution || from == Paused) {
		j.FinishTime = now
	}
	j.Status = to
	return true
}

// RecordActivity appends a completed or interrupted execution burst.
func (j *Job) RecordActivity(start, finish int64, ranges *rangeset.RangeList, resumeOverhead int64) {
	j.Activities = append(j.Activities, Activity{
		Start:          start,
		Finish:         finish,
		Ranges:         ranges.Clone(),
		ResumeOverhead: resumeOverhead,
	})
}

// IsReservationBound reports whether this job is tied to an accepted
// reservation, in which case it must allocate from the reservation profile.
func (j *Job) IsReservationBound() bool {
	return j.ReservationID != nil
}
