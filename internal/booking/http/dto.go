package http

import (
	"time"

	"github.com/nekogravitycat/room-booker/internal/booking"
)

// ListBookingsRequest defines query parameters for listing bookings.
// room_id selects the room's coming week, user_id the user's current and
// upcoming bookings; without either every current and upcoming booking is listed.
type ListBookingsRequest struct {
	RoomID        int64  `form:"room_id" binding:"omitempty,min=1"`
	UserID        string `form:"user_id"`
	RecentlyEnded bool   `form:"recently_ended"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.RoomID != 0 && r.UserID != "" {
		return ErrConflictingFilters
	}
	return nil
}

type BookingResponse struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"room_id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	StartTime int64     `json:"start_time"`
	EndTime   int64     `json:"end_time"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		RoomID:    b.RoomID,
		Name:      b.Name,
		UserID:    b.UserID,
		UserName:  b.UserName,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Start:     b.Start().UTC(),
		End:       b.End().UTC(),
	}
}
