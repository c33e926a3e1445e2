package booking

// Interval is a half-open time range [Start, End) in Unix seconds.
type Interval struct {
	Start int64
	End   int64
}

// Valid reports whether the interval covers at least one second and does not
// start before the Unix epoch.
func (i Interval) Valid() bool {
	return i.Start >= 0 && i.Start < i.End
}

// Overlaps reports whether two half-open intervals share at least one second.
// Intervals that merely touch (one ends where the other begins) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return !(i.Start >= other.End || i.End <= other.Start)
}

// Persisted rows keep end_time one second before the exclusive end, so a row
// covers the closed range [start_time, end_time]. These two functions are the
// only place that convention is applied.

// toStoredEnd converts an exclusive end into the persisted end_time value.
func toStoredEnd(end int64) int64 {
	return end - 1
}

// fromStoredEnd converts a persisted end_time back into the exclusive end.
func fromStoredEnd(stored int64) int64 {
	return stored + 1
}
