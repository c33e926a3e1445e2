package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/room-booker/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "booking not found")
	ErrRoomNotFound       = apperror.New(http.StatusNotFound, "room not found")
	ErrOverlappingBooking = apperror.New(http.StatusConflict, "booking overlaps with another booking")
	ErrIncorrectTime      = apperror.New(http.StatusBadRequest, "start time must be before end time")
)

// Booking is a reservation of a room for the half-open range [StartTime, EndTime).
// Times are Unix seconds and EndTime is always the true exclusive end.
type Booking struct {
	ID        int64
	RoomID    int64
	StartTime int64
	EndTime   int64
	Name      string
	UserID    string
	UserName  string
}

// Interval returns the booked range.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

func (b *Booking) Start() time.Time { return time.Unix(b.StartTime, 0) }
func (b *Booking) End() time.Time   { return time.Unix(b.EndTime, 0) }

// Operation names the mutation that produced an OverlapError.
type Operation string

const (
	OpCreate  Operation = "create"
	OpExtend  Operation = "extend"
	OpPrepend Operation = "prepend"
	OpChange  Operation = "change"
)

// OverlapError reports the booking a mutation collided with.
// errors.Is(err, ErrOverlappingBooking) holds for every OverlapError.
type OverlapError struct {
	Op       Operation
	Conflict *Booking
}

func (e *OverlapError) Error() string {
	name, user := e.Conflict.Name, e.Conflict.UserName
	switch e.Op {
	case OpExtend:
		return fmt.Sprintf("Extending the booking would overlap with another booking called '%s' by %s!", name, user)
	case OpPrepend:
		return fmt.Sprintf("Prepending the booking would overlap with another booking called '%s' by %s!", name, user)
	case OpChange:
		return fmt.Sprintf("Changing the booking time would overlap with another booking called '%s' by %s!", name, user)
	default:
		return fmt.Sprintf("A booking called '%s' by %s already exists during that time slot!", name, user)
	}
}

// Unwrap exposes the error as a conflict AppError carrying the detailed message.
func (e *OverlapError) Unwrap() error {
	return apperror.Wrap(ErrOverlappingBooking, http.StatusConflict, e.Error())
}

// Filter narrows booking listings. Zero values disable a condition.
type Filter struct {
	RoomID int64
	UserID string

	StartAtOrAfter  *int64
	StartAtOrBefore *int64
	StartBefore     *int64
	// EndAfter keeps bookings whose exclusive end lies after the given instant.
	EndAfter *int64

	Limit int
}
