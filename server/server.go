// Package server implements the message-dispatch shells around a
// scheduler: a Server binds a resource pool and an availability schedule
// to a Scheduler and routes kernel events to it; a User submits jobs and
// collects results; a ReservationUser additionally drives the reservation
// protocol.
package server

import (
	"fmt"

	"github.com/kernelsched/servsim/jobs"
	"github.com/kernelsched/servsim/kernel"
	"github.com/kernelsched/servsim/resourcepool"
	"github.com/kernelsched/servsim/scheduler"
)

// Attributes bundles a Server's static configuration: its resource pool and
// the (informational) fraction of capacity considered available.
type Attributes struct {
	Pool         *resourcepool.ResourcePool
	Availability float64
}

// Server binds Attributes to a Scheduler and routes TASK_ARRIVE,
// TASK_CANCEL, RESERVATION_REQUEST, and RESERVATION_CANCEL to the
// appropriate scheduler method, stamping the submit time on arrival;
// everything else is delegated to scheduler.Dispatch.
type Server struct {
	kernel.BaseEntity
	Attrs     Attributes
	Scheduler scheduler.Scheduler
}

func (s *Server) Process(sim *kernel.Simulation, ev kernel.Event) {
	scheduler.Dispatch(s.Scheduler, ev)
}

func (s *Server) OnStart(sim *kernel.Simulation) {
	s.Scheduler.Init(sim, &scheduler.Attributes{Pool: s.Attrs.Pool, Availability: s.Attrs.Availability}, s.ID())
}

// Builder constructs a fully wired Server through chained WithX calls.
// Defaults: scheduler = a Default FCFS scheduler, availability = 1.0,
// pool = a Default pool with the given capacity.
type Builder struct {
	name      string
	capacity  int
	avail     float64
	pool      *resourcepool.ResourcePool
	sched     scheduler.Scheduler
	listeners []scheduler.Listener
}

// NewBuilder starts a Server build with the given name and capacity.
// capacity must be >= 1.
func NewBuilder(name string, capacity int) *Builder {
	if capacity < 1 {
		panic(fmt.Sprintf("server: illegal capacity %d", capacity))
	}
	return &Builder{name: name, capacity: capacity, avail: 1.0}
}

// WithScheduler overrides the default FCFS scheduler.
func (b *Builder) WithScheduler(s scheduler.Scheduler) *Builder {
	b.sched = s
	return b
}

// WithAvailability overrides the default always-available (1.0) fraction.
func (b *Builder) WithAvailability(fraction float64) *Builder {
	b.avail = fraction
	return b
}

// WithPool overrides the default resource pool built from capacity.
func (b *Builder) WithPool(p *resourcepool.ResourcePool) *Builder {
	b.pool = p
	return b
}

// WithListener registers a work-unit status listener on the eventual
// scheduler.
func (b *Builder) WithListener(l scheduler.Listener) *Builder {
	b.listeners = append(b.listeners, l)
	return b
}

// Build registers the assembled Server with sim and returns its id.
func (b *Builder) Build(sim *kernel.Simulation) (*Server, kernel.EntityID) {
	pool := b.pool
	if pool == nil {
		pool = resourcepool.New(b.capacity)
	}
	sched := b.sched
	if sched == nil {
		sched = scheduler.NewDefaultScheduler(nil)
	}
	for _, l := range b.listeners {
		sched.Base().AddListener(l)
	}
	srv := &Server{
		BaseEntity: kernel.NewBaseEntity(b.name),
		Attrs:      Attributes{Pool: pool, Availability: b.avail},
		Scheduler:  sched,
	}
	id := sim.Register(srv)
	return srv, id
}

// User submits jobs to a Server and receives RESULT_ARRIVE notifications.
// Embedders override OnStart to drive a submission schedule and may
// override Process to react to specific results; the embedded default
// Process only counts arrivals so a bare User is already useful in tests.
type User struct {
	kernel.BaseEntity
	ServerID kernel.EntityID
	Results  []*jobs.Job
}

// Submit stamps job as owned by u and sends a TASK_ARRIVE for it to the
// bound server, delay 0 (the next tick).
func (u *User) Submit(sim *kernel.Simulation, job *jobs.Job) {
	job.Owner = u.ID()
	sim.Send(u.ID(), u.ServerID, 0, kernel.TaskArrive, job)
}

func (u *User) Process(sim *kernel.Simulation, ev kernel.Event) {
	if ev.Type == kernel.ResultArrive {
		u.Results = append(u.Results, ev.Payload.(*jobs.Job))
	}
}

// ReservationUser additionally makes reservations, awaits their
// RESERVATION_RESPONSE, and later completes or cancels them.
type ReservationUser struct {
	User
	Responses []*scheduler.ReservationResponse
}

// Reserve stamps res as owned by u and sends a RESERVATION_REQUEST to the
// bound server.
func (u *ReservationUser) Reserve(sim *kernel.Simulation, res *jobs.Reservation) {
	res.Owner = u.ID()
	sim.Send(u.ID(), u.ServerID, 0, kernel.ReservationRequest, res)
}

// CancelReservation sends a RESERVATION_CANCEL to the bound server.
func (u *ReservationUser) CancelReservation(sim *kernel.Simulation, res *jobs.Reservation) {
	sim.Send(u.ID(), u.ServerID, 0, kernel.ReservationCancel, res)
}

func (u *ReservationUser) Process(sim *kernel.Simulation, ev kernel.Event) {
	switch ev.Type {
	case kernel.ReservationResponse:
		u.Responses = append(u.Responses, ev.Payload.(*scheduler.ReservationResponse))
	default:
		u.User.Process(sim, ev)
	}
}
