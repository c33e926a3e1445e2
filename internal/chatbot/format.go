package chatbot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nekogravitycat/room-booker/internal/booking"
	"github.com/nekogravitycat/room-booker/internal/room"
)

const (
	clockLayout = "15:04"
	dateLayout  = "02-01-2006"
	inputLayout = "2006-01-02 15:04"

	// Bookings starting in [lateFromHour, 24) or [0, lateUntilHour) get a warning.
	lateFromHour  = 22
	lateUntilHour = 6

	// Longest duration, extension or lead a single command accepts.
	maxMinutes = 7 * 24 * 60
)

func clock(ts int64, loc *time.Location) string {
	return time.Unix(ts, 0).In(loc).Format(clockLayout)
}

func timeRange(b *booking.Booking, loc *time.Location) string {
	return clock(b.StartTime, loc) + " - " + clock(b.EndTime, loc)
}

// formatBooking renders one line per booking: "#12 10:00 - 11:00 Standup (alice)".
func formatBooking(b *booking.Booking, loc *time.Location) string {
	return fmt.Sprintf("#%d %s %s (%s)", b.ID, timeRange(b, loc), b.Name, b.UserName)
}

// formatDays renders bookings grouped by their start date in loc.
// roomNames, when non nil, prefixes each booking with its room.
func formatDays(bookings []*booking.Booking, loc *time.Location, roomNames map[int64]string) string {
	days := booking.GroupByDay(bookings, loc)
	if len(days) == 0 {
		return "No bookings."
	}

	var sb strings.Builder
	for i, day := range days {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(day.Date.Format("Monday " + dateLayout))
		sb.WriteString("\n")
		for _, b := range day.Bookings {
			sb.WriteString("  ")
			if roomNames != nil {
				sb.WriteString("[" + roomNames[b.RoomID] + "] ")
			}
			sb.WriteString(formatBooking(b, loc))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatRooms(rooms []*room.Room) string {
	if len(rooms) == 0 {
		return "There are no rooms yet."
	}
	var sb strings.Builder
	sb.WriteString("Rooms:")
	for _, r := range rooms {
		fmt.Fprintf(&sb, "\n#%d %s", r.ID, r.Name)
	}
	return sb.String()
}

// isVeryLate reports whether a booking starting at t (in its own location) is
// at an hour people should probably be asleep.
func isVeryLate(t time.Time) bool {
	h := t.Hour()
	return h >= lateFromHour || h < lateUntilHour
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%q is not a valid id", s)
	}
	return id, nil
}

func parseMinutes(s string) (int64, error) {
	m, err := strconv.ParseInt(s, 10, 64)
	if err != nil || m < 1 {
		return 0, fmt.Errorf("%q is not a positive number of minutes", s)
	}
	if m > maxMinutes {
		return 0, fmt.Errorf("%q is more than a week, use at most %d minutes", s, maxMinutes)
	}
	return m, nil
}

// parseStart reads "YYYY-MM-DD HH:MM" in loc.
func parseStart(date, hm string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(inputLayout, date+" "+hm, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a valid start, use YYYY-MM-DD HH:MM", date+" "+hm)
	}
	return t, nil
}

// onDate places an HH:MM clock time on the calendar date of day (in day's location).
func onDate(day time.Time, hm string) (time.Time, error) {
	c, err := time.Parse(clockLayout, hm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a valid time, use HH:MM", hm)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, day.Location()), nil
}
