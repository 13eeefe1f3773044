// Package kernel implements the discrete-event core: a strictly monotonic
// virtual clock driven by a future-event queue with stable (time, serial)
// tie-breaking, deterministic per-tick delivery, and cancellation by
// predicate. It is single-threaded and deterministic by construction — no
// wall-clock or random-source influence reaches the dispatch loop.
package kernel

import (
	"container/heap"
	"fmt"
	"sort"
	"time"

	"github.com/kernelsched/servsim/logging"
)

// Status is the simulation's lifecycle state.
type Status int

const (
	NotStarted Status = iota
	Running
	Paused
	Complete
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case Complete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Comparator breaks ties among events delivered within the same tick. It
// must return a value whose sign matches a < b, a == b, a > b. The final
// tie-break is always the creation serial: events the comparator considers
// equal keep their serial order.
type Comparator func(a, b Event) int

// Simulation owns the clock, the future-event queue, the deferred
// (this-tick) list, and the entity registry. Entities are registered before
// Run; ids are assigned monotonically and never reused.
type Simulation struct {
	clock      int64
	future     eventHeap
	deferred   []Event
	entities   []Entity
	registered entityFlags
	nextSerial int64
	comparator Comparator
	span       *int64
	warmUp     int64
	startDate  *time.Time
	status     Status
	pauseAsked bool
	sink       logging.Sink
}

// NewSimulation builds an empty Simulation at time 0.
func NewSimulation() *Simulation {
	return &Simulation{sink: logging.Nop{}}
}

// WithComparator installs a per-tick comparator for co-temporal events.
// Returns the receiver so construction can be chained.
func (s *Simulation) WithComparator(cmp Comparator) *Simulation {
	s.comparator = cmp
	return s
}

// WithSpan configures an abrupt time span: the simulation terminates once
// the clock reaches span even if future events remain.
func (s *Simulation) WithSpan(span int64) *Simulation {
	s.span = &span
	return s
}

// WithWarmUp marks a prefix of simulation time whose statistics a driver
// program should discard when measuring steady-state behaviour. The kernel
// itself does not act on this mark — it is pure bookkeeping exposed via
// WarmUp for collaborators (report, metrics collection) to consult.
func (s *Simulation) WithWarmUp(mark int64) *Simulation {
	s.warmUp = mark
	return s
}

// WarmUp returns the configured warm-up mark (0 if none was set).
func (s *Simulation) WarmUp() int64 { return s.warmUp }

// WithStartDate anchors simulation time 0 to a wall-clock date, enabling
// day-of-week effects (see package availability) to translate a simulation
// instant into a weekday and hour.
func (s *Simulation) WithStartDate(t time.Time) *Simulation {
	s.startDate = &t
	return s
}

// StartDate returns the configured start date and whether one was set.
func (s *Simulation) StartDate() (time.Time, bool) {
	if s.startDate == nil {
		return time.Time{}, false
	}
	return *s.startDate, true
}

// WithLogger installs the sink entities and the kernel write diagnostic
// lines to.
func (s *Simulation) WithLogger(sink logging.Sink) *Simulation {
	if sink == nil {
		sink = logging.Nop{}
	}
	s.sink = sink
	return s
}

// Now returns the current virtual clock value.
func (s *Simulation) Now() int64 { return s.clock }

// Status reports the current lifecycle state.
func (s *Simulation) Status() Status { return s.status }

// Logger returns the configured sink (never nil).
func (s *Simulation) Logger() logging.Sink { return s.sink }

// Register assigns the entity a dense id and adds it to the registry. Must
// be called before Run.
func (s *Simulation) Register(e Entity) EntityID {
	id := EntityID(len(s.entities))
	if be, ok := e.(interface{ setID(EntityID) }); ok {
		be.setID(id)
	}
	s.entities = append(s.entities, e)
	s.registered.set(int(id), true)
	return id
}

// Send inserts an event at clock+delay with a fresh serial. delay must be
// >= 0; a delay of 0 still defers delivery to the next tick boundary, never
// the current one.
func (s *Simulation) Send(src, dst EntityID, delay int64, typ EventType, payload any) Event {
	if delay < 0 {
		panic(fmt.Sprintf("kernel: negative delay %d sending %s", delay, typ))
	}
	ev := Event{
		Time:        s.clock + delay,
		Serial:      s.nextSerial,
		Type:        typ,
		Source:      src,
		Destination: dst,
		Payload:     payload,
	}
	s.nextSerial++
	heap.Push(&s.future, ev)
	return ev
}

// CancelFutureEvents removes every future (not yet delivered) event for
// which pred holds, returning the count removed.
func (s *Simulation) CancelFutureEvents(pred func(Event) bool) int {
	return s.future.removeWhere(pred)
}

// CancelNextFutureEvent removes only the earliest (in (time, serial) order)
// future event matching pred, reporting whether one was found.
func (s *Simulation) CancelNextFutureEvent(pred func(Event) bool) bool {
	_, ok := s.future.removeFirstWhere(pred)
	return ok
}

// Pause requests that the dispatch loop stop at the next tick boundary,
// preserving the clock, the pending future events, and the registry. An
// entity may call this from inside Process; Run returns once the current
// tick's deliveries finish, and calling Run again resumes. Pausing a
// simulation that is not running is a usage error.
func (s *Simulation) Pause() {
	if s.status != Running {
		panic("kernel: pause while not running")
	}
	s.pauseAsked = true
}

// Reset returns the simulation to NOT_STARTED, clearing the clock, queues,
// and registry. Resetting a running simulation is a usage error.
func (s *Simulation) Reset() {
	if s.status == Running || s.status == Paused {
		panic("kernel: reset while running")
	}
	s.clock = 0
	s.future = nil
	s.deferred = nil
	s.entities = nil
	s.registered = entityFlags{}
	s.nextSerial = 0
	s.status = NotStarted
}

// Run drives the dispatch loop to completion: deliver the deferred list,
// then pull the next co-temporal batch from the future set, until the
// future set is empty or the configured span is reached.
func (s *Simulation) Run() error {
	if s.status == Running {
		panic("kernel: simulation already running")
	}
	if s.status == NotStarted {
		heap.Init(&s.future)
		for _, e := range s.entities {
			e.OnStart(s)
		}
	}
	s.status = Running

	for {
		if s.comparator != nil {
			sort.SliceStable(s.deferred, func(i, j int) bool {
				return s.comparator(s.deferred[i], s.deferred[j]) < 0
			})
		}
		for _, ev := range s.deferred {
			s.deliver(ev)
		}
		s.deferred = s.deferred[:0]

		if s.pauseAsked {
			s.pauseAsked = false
			s.status = Paused
			return nil
		}

		if len(s.future) == 0 {
			s.finish()
			return nil
		}

		ev := heap.Pop(&s.future).(Event)
		if ev.Time < s.clock {
			panic(fmt.Sprintf("kernel: scheduled for the past: event time %d < clock %d", ev.Time, s.clock))
		}
		s.clock = ev.Time
		s.deferred = append(s.deferred, ev)
		for t, ok := s.future.peekTime(); ok && t == s.clock; t, ok = s.future.peekTime() {
			s.deferred = append(s.deferred, heap.Pop(&s.future).(Event))
		}

		if s.span != nil && s.clock >= *s.span {
			s.deliverAllDeferred()
			s.finish()
			return nil
		}
	}
}

func (s *Simulation) deliverAllDeferred() {
	if s.comparator != nil {
		sort.SliceStable(s.deferred, func(i, j int) bool {
			return s.comparator(s.deferred[i], s.deferred[j]) < 0
		})
	}
	for _, ev := range s.deferred {
		s.deliver(ev)
	}
	s.deferred = s.deferred[:0]
}

func (s *Simulation) finish() {
	s.status = Complete
	for _, e := range s.entities {
		e.OnShutdown(s)
	}
}

func (s *Simulation) deliver(ev Event) {
	if int(ev.Destination) < 0 || int(ev.Destination) >= len(s.entities) || !s.registered.has(int(ev.Destination)) {
		panic(fmt.Sprintf("kernel: event %s destined for unknown entity %d", ev.Type, ev.Destination))
	}
	dst := s.entities[ev.Destination]
	if !dst.Enabled() {
		return
	}
	dst.Process(s, ev)
}
