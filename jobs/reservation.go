package jobs

// Reservation is a job-like unit with a requested start time; once accepted
// it is immovable, unlike an ordinary job's tentative backfilled slot.
type Reservation struct {
	Job
	RequestedStart int64
	Accepted       bool
	DependentJobs  []int // ids of jobs tagged with this reservation
}

// NewReservation builds a pending reservation request.
func NewReservation(id int, requestedStart int64, duration int64, numResources int) *Reservation {
	r := &Reservation{RequestedStart: requestedStart}
	r.ID = id
	r.Duration = duration
	r.RemainingWork = duration
	r.NumResources = numResources
	r.Status = Unknown
	return r
}
