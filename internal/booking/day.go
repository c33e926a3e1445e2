package booking

import "time"

// Day groups bookings that start on the same calendar date in some timezone.
// It is derived on demand and never persisted.
type Day struct {
	Date     time.Time // midnight of the date in the grouping timezone
	Bookings []*Booking
}

// GroupByDay splits bookings into days by their start time in loc, keeping
// the input order both across and within days.
func GroupByDay(bookings []*Booking, loc *time.Location) []Day {
	var days []Day
	index := make(map[time.Time]int)

	for _, b := range bookings {
		if b == nil {
			continue
		}
		date := StartOfDay(b.Start().In(loc))
		i, ok := index[date]
		if !ok {
			i = len(days)
			index[date] = i
			days = append(days, Day{Date: date})
		}
		days[i].Bookings = append(days[i].Bookings, b)
	}
	return days
}
