package booking

import "github.com/seatwise/reserver/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

// IsTerminal reports whether no further transition is permitted.
// completed, cancelled and no-show are enforced as terminal here, in
// the domain layer, not by caller discipline.
func IsTerminal(s Status) bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// ===============================
// Transition guards
// ===============================

// CanConfirm allows confirmation from pending only. Confirming an
// already-confirmed (or terminal) booking is a resource conflict.
func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.ErrBusiness(httperr.CodeResourceConflict)
	}
	return nil
}

// CanCancel allows cancellation from pending or confirmed.
func CanCancel(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness(httperr.CodeResourceConflict)
	}
	return nil
}

// CanComplete allows completion from pending or confirmed.
func CanComplete(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness(httperr.CodeResourceConflict)
	}
	return nil
}

// CanMarkNoShow allows a no-show from pending or confirmed.
func CanMarkNoShow(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness(httperr.CodeResourceConflict)
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}
