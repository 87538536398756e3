package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/models"
)

func TestTransitionGuards(t *testing.T) {
	cases := []struct {
		name  string
		guard func(Status) error
		from  Status
		ok    bool
	}{
		{"confirm from pending", CanConfirm, StatusPending, true},
		{"confirm from confirmed", CanConfirm, StatusConfirmed, false},
		{"confirm from cancelled", CanConfirm, StatusCancelled, false},

		{"cancel from pending", CanCancel, StatusPending, true},
		{"cancel from confirmed", CanCancel, StatusConfirmed, true},
		{"cancel from completed", CanCancel, StatusCompleted, false},
		{"cancel from cancelled", CanCancel, StatusCancelled, false},

		{"complete from pending", CanComplete, StatusPending, true},
		{"complete from confirmed", CanComplete, StatusConfirmed, true},
		{"complete from no-show", CanComplete, StatusNoShow, false},

		{"no-show from confirmed", CanMarkNoShow, StatusConfirmed, true},
		{"no-show from completed", CanMarkNoShow, StatusCompleted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.guard(tc.from)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, httperr.IsBusiness(err, httperr.CodeResourceConflict))
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusConfirmed))
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusNoShow))
}

func TestConfirmSetsTableAndTimestamp(t *testing.T) {
	b := &models.Booking{Status: string(StatusPending)}
	now := time.Now()

	require.NoError(t, Confirm(b, 4, now))
	assert.Equal(t, string(StatusConfirmed), b.Status)
	require.NotNil(t, b.TableNumber)
	assert.Equal(t, 4, *b.TableNumber)
	require.NotNil(t, b.ConfirmedAt)

	// A second confirm is rejected and changes nothing.
	err := Confirm(b, 9, now)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeResourceConflict))
	assert.Equal(t, 4, *b.TableNumber)
}

func TestTerminalTransitionsStampTimes(t *testing.T) {
	now := time.Now()

	b := &models.Booking{Status: string(StatusConfirmed)}
	require.NoError(t, Cancel(b, now))
	assert.Equal(t, string(StatusCancelled), b.Status)
	require.NotNil(t, b.CancelledAt)

	b = &models.Booking{Status: string(StatusConfirmed)}
	require.NoError(t, Complete(b, now))
	assert.Equal(t, string(StatusCompleted), b.Status)
	require.NotNil(t, b.CompletedAt)

	b = &models.Booking{Status: string(StatusPending)}
	require.NoError(t, MarkNoShow(b, now))
	assert.Equal(t, string(StatusNoShow), b.Status)
	require.NotNil(t, b.NoShowAt)
}
