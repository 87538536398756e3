package event

import (
	"sync"
	"time"

	"github.com/seatwise/reserver/internal/logging"
	"github.com/seatwise/reserver/internal/models"
)

type Type string

const (
	BookingCreated      Type = "booking_created"
	BookingConfirmed    Type = "booking_confirmed"
	CustomerUpgradedVIP Type = "customer_upgraded_vip"
	ProblematicCustomer Type = "problematic_customer_detected"
)

// Event carries the booking and/or customer the lifecycle transition
// touched. Either pointer may be nil depending on the event type.
type Event struct {
	Type       Type
	Booking    *models.Booking
	Customer   *models.Customer
	OccurredAt time.Time
}

type Handler func(Event)

// Bus is a typed in-process event bus. Publish fans out synchronously
// so that lifecycle side effects fire exactly once per transition; a
// panicking subscriber is contained and logged rather than taking the
// request down with it.
type Bus struct {
	mu   sync.RWMutex
	subs map[Type][]Handler
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[Type][]Handler),
	}
}

func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[t] = append(b.subs[t], h)
}

func (b *Bus) Publish(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	b.mu.RLock()
	handlers := b.subs[ev.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, ev)
	}
}

func (b *Bus) dispatch(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error.Printf("event subscriber panic on %s: %v", ev.Type, r)
		}
	}()
	h(ev)
}
