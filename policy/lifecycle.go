package policy

import (
	"fmt"
	"strings"
)

// EntityKind names a lifecycle-managed record type.
type EntityKind string

const (
	KindOrder       EntityKind = "order"
	KindEvent       EntityKind = "event"
	KindReservation EntityKind = "reservation"
)

// Role of the actor requesting a transition.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Status is a lifecycle state shared by all entity kinds.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// StateMachine decides which status an entity may move to next. It holds no
// mutable state and is safe for concurrent use.
type StateMachine struct {
	transitions map[EntityKind]map[Status][]Status
	cancellable map[EntityKind][]Status
}

// NewStateMachine returns the transition table enforced before any status
// change is sent to the store.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[EntityKind]map[Status][]Status{
			KindOrder: {
				StatusPending:   {StatusConfirmed, StatusCancelled},
				StatusConfirmed: {StatusPreparing, StatusCancelled},
				StatusPreparing: {StatusReady, StatusCancelled},
				StatusReady:     {StatusDelivered},
				StatusDelivered: {},
				StatusCancelled: {},
			},
			KindEvent: {
				StatusPending:   {StatusConfirmed, StatusCancelled},
				StatusConfirmed: {StatusCompleted, StatusCancelled},
				StatusCompleted: {},
				StatusCancelled: {},
			},
			KindReservation: {
				StatusPending:   {StatusConfirmed, StatusCancelled},
				StatusConfirmed: {StatusCancelled},
				StatusCancelled: {},
				// set by the store only; nothing leaves it
				StatusCompleted: {},
			},
		},
		// events have no self-service path
		cancellable: map[EntityKind][]Status{
			KindOrder:       {StatusPending, StatusConfirmed},
			KindReservation: {StatusPending, StatusConfirmed},
			KindEvent:       {},
		},
	}
}

// Lifecycle is the shared machine used by every screen.
var Lifecycle = NewStateMachine()

// ParseKind validates a raw entity kind.
func ParseKind(raw string) (EntityKind, error) {
	kind := EntityKind(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := Lifecycle.transitions[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityKind, raw)
	}
	return kind, nil
}

// ParseRole maps a token role onto a lifecycle role. Anything that is not an
// admin acts as a customer.
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleCustomer
}

// ParseStatus validates that raw is a status the entity kind can hold.
func (m *StateMachine) ParseStatus(kind EntityKind, raw string) (Status, error) {
	table, ok := m.transitions[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := table[status]; !ok {
		return "", fmt.Errorf("%w: %q is not a %s status", ErrUnknownStatus, raw, kind)
	}
	return status, nil
}

// ParseStatus uses the shared machine.
func ParseStatus(kind EntityKind, raw string) (Status, error) {
	return Lifecycle.ParseStatus(kind, raw)
}

// Next lists the statuses reachable from current.
func (m *StateMachine) Next(kind EntityKind, current Status) ([]Status, error) {
	table, ok := m.transitions[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}
	allowed, ok := table[current]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a %s status", ErrUnknownStatus, current, kind)
	}
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out, nil
}

// IsTerminal reports whether current has no outgoing transitions.
func (m *StateMachine) IsTerminal(kind EntityKind, current Status) bool {
	next, err := m.Next(kind, current)
	return err == nil && len(next) == 0
}

// CanTransition reports whether target is in the table for current.
func (m *StateMachine) CanTransition(kind EntityKind, current, target Status) bool {
	next, err := m.Next(kind, current)
	if err != nil {
		return false
	}
	return containsStatus(next, target)
}

// CanCustomerCancel reports whether a customer may cancel from current.
func (m *StateMachine) CanCustomerCancel(kind EntityKind, current Status) bool {
	return containsStatus(m.cancellable[kind], current) && m.CanTransition(kind, current, StatusCancelled)
}

// Check returns nil when role may move the entity from current to target.
// Moves outside the table are rejected for every role.
func (m *StateMachine) Check(kind EntityKind, current, target Status, role Role) error {
	if _, ok := m.transitions[kind]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}
	if !m.CanTransition(kind, current, target) {
		return &TransitionError{Kind: kind, From: current, To: target, Role: role, Err: ErrInvalidTransition}
	}
	switch role {
	case RoleAdmin:
		return nil
	case RoleCustomer:
		if target == StatusCancelled && containsStatus(m.cancellable[kind], current) {
			return nil
		}
	}
	return &TransitionError{Kind: kind, From: current, To: target, Role: role, Err: ErrForbidden}
}

func containsStatus(list []Status, s Status) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}
