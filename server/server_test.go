package server

import (
	"testing"

	"github.com/kernelsched/servsim/jobs"
	"github.com/kernelsched/servsim/kernel"
)

// drivingUser submits a fixed batch of jobs at t=0 via the embedded User.
type drivingUser struct {
	User
	jobs []*jobs.Job
}

func (d *drivingUser) OnStart(sim *kernel.Simulation) {
	for _, j := range d.jobs {
		d.Submit(sim, j)
	}
}

func TestBuilderEndToEndFCFSDefault(t *testing.T) {
	sim := kernel.NewSimulation()
	_, srvID := NewBuilder("srv", 10).Build(sim)

	a := jobs.NewJob(0, 0, 0, 100, 5, 0)
	b := jobs.NewJob(1, 0, 0, 100, 5, 0)
	c := jobs.NewJob(2, 0, 0, 100, 5, 0)

	user := &drivingUser{User: User{BaseEntity: kernel.NewBaseEntity("user")}, jobs: []*jobs.Job{a, b, c}}
	user.ServerID = srvID
	sim.Register(user)

	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(user.Results) != 3 {
		t.Fatalf("len(user.Results) = %d, want 3", len(user.Results))
	}
	if a.StartTime != 0 || b.StartTime != 0 {
		t.Errorf("a.StartTime=%d b.StartTime=%d, want both 0 (capacity 10 fits both 5-resource jobs)", a.StartTime, b.StartTime)
	}
	if c.StartTime != 100 {
		t.Errorf("c.StartTime = %d, want 100 (queued behind a and b, default FCFS scheduler)", c.StartTime)
	}
	for _, j := range []*jobs.Job{a, b, c} {
		if j.Status != jobs.Complete {
			t.Errorf("job %d status = %s, want COMPLETE", j.ID, j.Status)
		}
	}
}

func TestBuilderPanicsOnIllegalCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewBuilder with capacity 0 should panic")
		}
	}()
	NewBuilder("srv", 0)
}
