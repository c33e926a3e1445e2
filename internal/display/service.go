package display

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/nekogravitycat/room-booker/internal/booking"
	"github.com/nekogravitycat/room-booker/internal/pkg/apperror"
	"github.com/nekogravitycat/room-booker/internal/room"
)

var (
	ErrRoomNotFound    = apperror.New(http.StatusNotFound, "ERROR: Room ID not found.")
	ErrInvalidTimezone = apperror.New(http.StatusBadRequest, "ERROR: Invalid system timezone ID.")
)

// Snapshot is what a kiosk shows for one room: the running booking and the
// next bookings of the day. Upcoming always has the configured length; free
// slots are nil.
type Snapshot struct {
	Room     *room.Room
	Current  *booking.Booking
	Upcoming []*booking.Booking
}

type Service interface {
	Snapshot(ctx context.Context, roomID int64, timezoneID string) (*Snapshot, error)
	Rooms(ctx context.Context) ([]*room.Room, error)
}

type service struct {
	rooms         room.Service
	bookings      booking.Service
	upcomingCount int
	now           func() time.Time
}

func NewService(rooms room.Service, bookings booking.Service, upcomingCount int, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		rooms:         rooms,
		bookings:      bookings,
		upcomingCount: upcomingCount,
		now:           now,
	}
}

func (s *service) Snapshot(ctx context.Context, roomID int64, timezoneID string) (*Snapshot, error) {
	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	loc, err := ParseTimezoneID(timezoneID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(loc)
	current, err := s.bookings.CurrentForRoom(ctx, rm.ID, now)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.bookings.UpcomingForRoom(ctx, rm.ID, now, DayEnd(now), s.upcomingCount)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Room: rm, Current: current, Upcoming: upcoming}, nil
}

func (s *service) Rooms(ctx context.Context) ([]*room.Room, error) {
	return s.rooms.List(ctx)
}

// DayEnd returns 23:59:59 of t's calendar day in t's location.
func DayEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// ParseTimezoneID resolves a display timezone path segment. Displays send IANA
// ids with '/' replaced by '&' so the id fits in one path segment.
func ParseTimezoneID(id string) (*time.Location, error) {
	name := strings.ReplaceAll(id, "&", "/")
	// LoadLocation treats "" as UTC and accepts "Local"; displays must be explicit.
	if name == "" || name == "Local" {
		return nil, ErrInvalidTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, ErrInvalidTimezone
	}
	return loc, nil
}
