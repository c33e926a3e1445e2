package http

import (
	"strconv"

	"github.com/nekogravitycat/room-booker/internal/booking"
	"github.com/nekogravitycat/room-booker/internal/display"
	"github.com/nekogravitycat/room-booker/internal/pkg/request"
	"github.com/nekogravitycat/room-booker/internal/room"
)

// SnapshotRequest binds GET /rooms/:room_id/:timezone_id.
// TimezoneID is an IANA id with '/' replaced by '&'.
type SnapshotRequest struct {
	request.RoomIDRequest
	TimezoneID string `uri:"timezone_id" binding:"required"`
}

// BookingTag is the booking shape displays render. Free slots are sent as the
// zero value so clients never deal with nulls.
type BookingTag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	User      string `json:"user"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
}

func NewBookingTag(b *booking.Booking) BookingTag {
	if b == nil {
		return BookingTag{}
	}
	return BookingTag{
		ID:        strconv.FormatInt(b.ID, 10),
		Name:      b.Name,
		User:      b.UserName,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}

type SnapshotResponse struct {
	CurrentBooking        BookingTag   `json:"current_booking"`
	FirstUpcomingBooking  BookingTag   `json:"first_upcoming_booking"`
	SecondUpcomingBooking BookingTag   `json:"second_upcoming_booking"`
	ThirdUpcomingBooking  BookingTag   `json:"third_upcoming_booking"`
	UpcomingBookings      []BookingTag `json:"upcoming_bookings"`
}

func NewSnapshotResponse(s *display.Snapshot) SnapshotResponse {
	slot := func(i int) *booking.Booking {
		if i < len(s.Upcoming) {
			return s.Upcoming[i]
		}
		return nil
	}

	upcoming := make([]BookingTag, 0, len(s.Upcoming))
	for _, b := range s.Upcoming {
		upcoming = append(upcoming, NewBookingTag(b))
	}

	return SnapshotResponse{
		CurrentBooking:        NewBookingTag(s.Current),
		FirstUpcomingBooking:  NewBookingTag(slot(0)),
		SecondUpcomingBooking: NewBookingTag(slot(1)),
		ThirdUpcomingBooking:  NewBookingTag(slot(2)),
		UpcomingBookings:      upcoming,
	}
}

type RoomResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewRoomResponse(r *room.Room) RoomResponse {
	return RoomResponse{ID: r.ID, Name: r.Name}
}
