package scheduler

import (
	"testing"

	"github.com/kernelsched/servsim/jobs"
	"github.com/kernelsched/servsim/kernel"
	"github.com/kernelsched/servsim/resourcepool"
)

func TestConservativeBackfillNeverDelaysQueuedJob(t *testing.T) {
	sim := kernel.NewSimulation()
	pool := resourcepool.New(5)
	sched := NewConservativeScheduler(nil)
	srv := &schedEntity{BaseEntity: kernel.NewBaseEntity("srv"), sched: sched, pool: pool}
	srvID := sim.Register(srv)

	// Capacity 5: a (5 resources) arrives at t=0 and saturates it for 100
	// units; b (5 resources) arriving at t=1 must be reserved for t=100,
	// never later, regardless of what arrives after it; c arriving at t=2
	// queues behind b.
	a := jobs.NewJob(0, srvID, 0, 100, 5, 0)
	b := jobs.NewJob(1, srvID, 1, 50, 5, 0)
	c := jobs.NewJob(2, srvID, 2, 10, 5, 0)

	sim.Register(&timedArrival{
		BaseEntity: kernel.NewBaseEntity("src"),
		dst:        srvID,
		jobs:       []*jobs.Job{a, b, c},
		at:         []int64{0, 1, 2},
	})

	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if b.StartTime != 100 {
		t.Errorf("b.StartTime = %d, want 100 (never delayed by c's later arrival)", b.StartTime)
	}
	if c.StartTime != 150 {
		t.Errorf("c.StartTime = %d, want 150 (queued behind b)", c.StartTime)
	}
	for _, j := range []*jobs.Job{a, b, c} {
		if j.Status != jobs.Complete {
			t.Errorf("job %d status = %s, want COMPLETE", j.ID, j.Status)
		}
	}
}

func TestConservativeCompressionOnCancel(t *testing.T) {
	sim := kernel.NewSimulation()
	pool := resourcepool.New(5)
	sched := NewConservativeScheduler(nil)
	srv := &schedEntity{BaseEntity: kernel.NewBaseEntity("srv"), sched: sched, pool: pool}
	srvID := sim.Register(srv)

	a := jobs.NewJob(0, srvID, 0, 100, 5, 0)
	b := jobs.NewJob(1, srvID, 1, 50, 5, 0)

	src := &timedArrival{
		BaseEntity: kernel.NewBaseEntity("src"),
		dst:        srvID,
		jobs:       []*jobs.Job{a, b},
		at:         []int64{0, 1},
	}
	srcID := sim.Register(src)
	// Cancel a at t=10, long before it would otherwise finish: b's
	// reserved start (100) should compress to something earlier, since the
	// capacity a was holding is now free from t=10.
	sim.Register(&cancelAt{BaseEntity: kernel.NewBaseEntity("canceller"), dst: srvID, job: a, at: 10})
	_ = srcID

	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if a.Status != jobs.Cancelled {
		t.Fatalf("a.Status = %s, want CANCELLED", a.Status)
	}
	if b.StartTime >= 100 {
		t.Errorf("b.StartTime = %d, want < 100 after a's cancellation freed capacity early", b.StartTime)
	}
}

type cancelAt struct {
	kernel.BaseEntity
	dst kernel.EntityID
	job *jobs.Job
	at  int64
}

func (c *cancelAt) OnStart(sim *kernel.Simulation) {
	sim.Send(c.ID(), c.dst, c.at, kernel.TaskCancel, c.job)
}

func (c *cancelAt) Process(sim *kernel.Simulation, ev kernel.Event) {}
