package scheduler

import (
	"testing"

	"github.com/kernelsched/servsim/jobs"
	"github.com/kernelsched/servsim/kernel"
	"github.com/kernelsched/servsim/resourcepool"
)

type reservationSchedEntity struct {
	kernel.BaseEntity
	sched *ConservativeReservationScheduler
	pool  *resourcepool.ResourcePool
}

func (e *reservationSchedEntity) OnStart(sim *kernel.Simulation) {
	e.sched.Init(sim, &Attributes{Pool: e.pool, Availability: 1}, e.ID())
}

func (e *reservationSchedEntity) Process(sim *kernel.Simulation, ev kernel.Event) {
	Dispatch(e.sched, ev)
}

type reservationSource struct {
	kernel.BaseEntity
	dst kernel.EntityID
	res *jobs.Reservation
	job *jobs.Job
}

func (r *reservationSource) OnStart(sim *kernel.Simulation) {
	r.res.Owner = r.ID()
	sim.Send(r.ID(), r.dst, 0, kernel.ReservationRequest, r.res)
	r.job.Owner = r.ID()
	sim.Send(r.ID(), r.dst, 5, kernel.TaskArrive, r.job)
}

func (r *reservationSource) Process(sim *kernel.Simulation, ev kernel.Event) {}

func TestReservationAcceptedAndJobUsesReservedWindow(t *testing.T) {
	sim := kernel.NewSimulation()
	pool := resourcepool.New(10)
	sched := NewConservativeReservationScheduler(nil, 10)
	srv := &reservationSchedEntity{BaseEntity: kernel.NewBaseEntity("srv"), sched: sched, pool: pool}
	srvID := sim.Register(srv)

	res := jobs.NewReservation(1, 10, 50, 5)
	resID := res.ID
	job := jobs.NewJob(1, 0, 0, 20, 3, 0)
	job.ReservationID = &resID

	sim.Register(&reservationSource{
		BaseEntity: kernel.NewBaseEntity("user"),
		dst:        srvID,
		res:        res,
		job:        job,
	})

	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !res.Accepted {
		t.Fatalf("reservation should have been accepted (capacity is free)")
	}
	if job.Status != jobs.Complete {
		t.Fatalf("job.Status = %s, want COMPLETE", job.Status)
	}
}

func TestReservationCancelCancelsDependentJobs(t *testing.T) {
	sim := kernel.NewSimulation()
	pool := resourcepool.New(10)
	sched := NewConservativeReservationScheduler(nil, 10)
	srv := &reservationSchedEntity{BaseEntity: kernel.NewBaseEntity("srv"), sched: sched, pool: pool}
	srvID := sim.Register(srv)

	res := jobs.NewReservation(1, 0, 100, 5)
	resID := res.ID
	job := jobs.NewJob(1, 0, 0, 50, 3, 0)
	job.ReservationID = &resID

	src := &reservationSource{BaseEntity: kernel.NewBaseEntity("user"), dst: srvID, res: res, job: job}
	srcID := sim.Register(src)

	sim.Register(&cancelReservationAt{BaseEntity: kernel.NewBaseEntity("canceller"), dst: srvID, res: res, at: 20})
	_ = srcID

	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if job.Status != jobs.Cancelled {
		t.Errorf("job.Status = %s, want CANCELLED after reservation cancel", job.Status)
	}
}

type cancelReservationAt struct {
	kernel.BaseEntity
	dst kernel.EntityID
	res *jobs.Reservation
	at  int64
}

func (c *cancelReservationAt) OnStart(sim *kernel.Simulation) {
	sim.Send(c.ID(), c.dst, c.at, kernel.ReservationCancel, c.res)
}

func (c *cancelReservationAt) Process(sim *kernel.Simulation, ev kernel.Event) {}
