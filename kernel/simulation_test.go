package kernel

import "testing"

type pingEntity struct {
	BaseEntity
	bID      EntityID
	n        int
	delta    int64
	received int
}

func (p *pingEntity) Process(sim *Simulation, ev Event) {
	if ev.Type == TaskComplete {
		p.received++
	}
}

func (p *pingEntity) OnStart(sim *Simulation) {
	for i := 0; i < p.n; i++ {
		sim.Send(p.ID(), p.bID, int64(i)*p.delta, TaskArrive, i)
	}
}

type pongEntity struct {
	BaseEntity
	arrived int
}

func (p *pongEntity) Process(sim *Simulation, ev Event) {
	if ev.Type == TaskArrive {
		p.arrived++
		sim.Send(p.ID(), ev.Source, 0, TaskComplete, ev.Payload)
	}
}

func TestPingPong(t *testing.T) {
	sim := NewSimulation()
	b := &pongEntity{BaseEntity: NewBaseEntity("pong")}
	bID := sim.Register(b)
	a := &pingEntity{BaseEntity: NewBaseEntity("ping"), n: 5, delta: 10, bID: bID}
	sim.Register(a)

	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if a.received != a.n {
		t.Errorf("ping received %d replies, want %d", a.received, a.n)
	}
	if b.arrived != a.n {
		t.Errorf("pong saw %d arrivals, want %d", b.arrived, a.n)
	}
}

func TestEventDeliveryOrder(t *testing.T) {
	sim := NewSimulation()
	var order []int64

	sink := &recordingEntity{BaseEntity: NewBaseEntity("sink"), order: &order}
	sinkID := sim.Register(sink)

	src := &sourceEntity{BaseEntity: NewBaseEntity("src"), dst: sinkID}
	sim.Register(src)

	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []int64{0, 0, 5, 5, 10}
	if len(order) != len(want) {
		t.Fatalf("got %d deliveries, want %d: %v", len(order), len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("delivery %d time = %d, want %d (order=%v)", i, order[i], want[i], order)
		}
	}
}

type recordingEntity struct {
	BaseEntity
	order *[]int64
}

func (r *recordingEntity) Process(sim *Simulation, ev Event) {
	*r.order = append(*r.order, ev.Time)
}

type sourceEntity struct {
	BaseEntity
	dst EntityID
}

func (s *sourceEntity) OnStart(sim *Simulation) {
	// Two events at t=0 (serial order preserved), two at t=5, one at t=10.
	sim.Send(s.ID(), s.dst, 0, EntityInternalEvent, nil)
	sim.Send(s.ID(), s.dst, 0, EntityInternalEvent, nil)
	sim.Send(s.ID(), s.dst, 5, EntityInternalEvent, nil)
	sim.Send(s.ID(), s.dst, 5, EntityInternalEvent, nil)
	sim.Send(s.ID(), s.dst, 10, EntityInternalEvent, nil)
}

func (s *sourceEntity) Process(sim *Simulation, ev Event) {}

func TestCancelFutureEvents(t *testing.T) {
	sim := NewSimulation()
	dst := &recordingEntity{BaseEntity: NewBaseEntity("dst"), order: &[]int64{}}
	dstID := sim.Register(dst)
	src := &cancellingEntity{BaseEntity: NewBaseEntity("src"), dst: dstID}
	sim.Register(src)

	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*dst.order) != 1 {
		t.Errorf("expected 1 surviving delivery after cancellation, got %d: %v", len(*dst.order), *dst.order)
	}
}

type cancellingEntity struct {
	BaseEntity
	dst EntityID
}

func (c *cancellingEntity) OnStart(sim *Simulation) {
	sim.Send(c.ID(), c.dst, 10, TaskCancel, "keep")
	sim.Send(c.ID(), c.dst, 20, TaskCancel, "drop")
	sim.CancelFutureEvents(func(ev Event) bool { return ev.Payload == "drop" })
}

func (c *cancellingEntity) Process(sim *Simulation, ev Event) {}

func TestPauseAndResume(t *testing.T) {
	sim := NewSimulation()
	dst := &recordingEntity{BaseEntity: NewBaseEntity("dst"), order: &[]int64{}}
	dstID := sim.Register(dst)
	p := &pausingEntity{BaseEntity: NewBaseEntity("pauser"), dst: dstID, pauseAt: 10}
	sim.Register(p)

	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sim.Status() != Paused {
		t.Fatalf("status after pause = %v, want PAUSED", sim.Status())
	}
	if got := len(*dst.order); got != 2 {
		t.Fatalf("deliveries before pause = %d, want 2: %v", got, *dst.order)
	}

	if err := sim.Run(); err != nil {
		t.Fatalf("resume Run: %v", err)
	}
	if sim.Status() != Complete {
		t.Errorf("status after resume = %v, want COMPLETE", sim.Status())
	}
	if got := len(*dst.order); got != 3 {
		t.Errorf("total deliveries = %d, want 3: %v", got, *dst.order)
	}
}

type pausingEntity struct {
	BaseEntity
	dst     EntityID
	pauseAt int64
}

func (p *pausingEntity) OnStart(sim *Simulation) {
	sim.Send(p.ID(), p.dst, 5, EntityInternalEvent, nil)
	sim.Send(p.ID(), p.dst, 10, EntityInternalEvent, nil)
	sim.Send(p.ID(), p.dst, 15, EntityInternalEvent, nil)
	sim.Send(p.ID(), p.ID(), p.pauseAt, EntityInternalEvent, "pause")
}

func (p *pausingEntity) Process(sim *Simulation, ev Event) {
	if ev.Payload == "pause" {
		sim.Pause()
	}
}
