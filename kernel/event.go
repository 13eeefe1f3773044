package kernel

import "fmt"

// EntityID is a dense, kernel-owned integer identity. Events carry
// destination ids, never raw entity references, so the registry stays the
// single source of truth for who exists.
type EntityID int

// EventType names the payload vocabulary entities exchange. The core kernel
// attaches no behaviour to any particular type; servers and schedulers
// interpret them.
type EventType string

const (
	TaskArrive            EventType = "TASK_ARRIVE"
	TaskStart             EventType = "TASK_START"
	TaskComplete          EventType = "TASK_COMPLETE"
	TaskCancel            EventType = "TASK_CANCEL"
	TaskPause             EventType = "TASK_PAUSE"
	ResultArrive          EventType = "RESULT_ARRIVE"
	EntityArrive          EventType = "ENTITY_ARRIVE"
	EntityLeave           EventType = "ENTITY_LEAVE"
	EntityInternalEvent   EventType = "ENTITY_INTERNAL_EVENT"
	ReservationRequest    EventType = "RESERVATION_REQUEST"
	ReservationStart      EventType = "RESERVATION_START"
	ReservationComplete   EventType = "RESERVATION_COMPLETE"
	ReservationCancel     EventType = "RESERVATION_CANCEL"
	ReservationResponse   EventType = "RESERVATION_RESPONSE"
)

// Event is the (time, serial, type, source, destination, payload) tuple
// delivered by the kernel. serial is assigned at creation and, together with
// time, forms the total delivery order.
type Event struct {
	Time        int64
	Serial      int64
	Type        EventType
	Source      EntityID
	Destination EntityID
	Payload     any
}

func (e Event) String() string {
	return fmt.Sprintf("%s@%d#%d(%d->%d)", e.Type, e.Time, e.Serial, e.Source, e.Destination)
}
