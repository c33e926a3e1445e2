package booking

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// RecentlyEndedWindow is how long after its end a booking still counts as
// recent for user-scoped listings that ask for it.
const RecentlyEndedWindow = time.Hour

type CreateRequest struct {
	RoomID    int64
	StartTime int64
	EndTime   int64 // exclusive
	Name      string
	UserID    string
	UserName  string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Delete(ctx context.Context, id int64) error
	Extend(ctx context.Context, id int64, extraSeconds int64) (*Booking, error)
	Prepend(ctx context.Context, id int64, leadSeconds int64) (*Booking, error)
	ChangeTime(ctx context.Context, id int64, newStart, newEnd int64) (*Booking, error)

	GetByID(ctx context.Context, id int64) (*Booking, error)
	// CurrentForRoom returns nil without error when the room is free at now.
	CurrentForRoom(ctx context.Context, roomID int64, now time.Time) (*Booking, error)
	// UpcomingForRoom always returns exactly count entries, padding with nil.
	UpcomingForRoom(ctx context.Context, roomID int64, now, searchEnd time.Time, count int) ([]*Booking, error)
	ComingWeekForRoom(ctx context.Context, roomID int64, now time.Time) ([]*Booking, error)
	AllCurrentAndUpcoming(ctx context.Context, now time.Time) ([]*Booking, error)
	CurrentAndUpcomingForUser(ctx context.Context, userID string, now time.Time, includeRecentlyEnded bool) ([]*Booking, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.Named("booking_store"),
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	b := &Booking{
		RoomID:    req.RoomID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Name:      req.Name,
		UserID:    req.UserID,
		UserName:  req.UserName,
	}
	if !b.Interval().Valid() {
		return nil, ErrIncorrectTime
	}

	conflict, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		s.logRejected(OpCreate, b, conflict)
		return nil, &OverlapError{Op: OpCreate, Conflict: conflict}
	}

	s.logger.Info("added booking",
		zap.Int64("booking_id", b.ID),
		zap.Int64("room_id", b.RoomID),
		zap.String("booking", b.Name),
		zap.String("user", b.UserName),
	)
	return b, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, b.ID); err != nil {
		return err
	}

	s.logger.Info("deleted booking",
		zap.Int64("booking_id", b.ID),
		zap.String("booking", b.Name),
		zap.String("user", b.UserName),
	)
	return nil
}

func (s *service) Extend(ctx context.Context, id int64, extraSeconds int64) (*Booking, error) {
	if extraSeconds <= 0 {
		return nil, ErrIncorrectTime
	}

	// Only the new tail is probed so the booking never conflicts with itself.
	return s.reschedule(ctx, id, OpExtend, func(cur Booking) (Interval, Interval, error) {
		if extraSeconds > math.MaxInt64-cur.EndTime {
			return Interval{}, Interval{}, ErrIncorrectTime
		}
		newEnd := cur.EndTime + extraSeconds
		probe := Interval{Start: cur.EndTime, End: newEnd}
		next := Interval{Start: cur.StartTime, End: newEnd}
		if !next.Valid() {
			return Interval{}, Interval{}, ErrIncorrectTime
		}
		return probe, next, nil
	}, zap.Int64("seconds", extraSeconds))
}

func (s *service) Prepend(ctx context.Context, id int64, leadSeconds int64) (*Booking, error) {
	if leadSeconds <= 0 {
		return nil, ErrIncorrectTime
	}

	return s.reschedule(ctx, id, OpPrepend, func(cur Booking) (Interval, Interval, error) {
		if cur.StartTime < math.MinInt64+leadSeconds {
			return Interval{}, Interval{}, ErrIncorrectTime
		}
		newStart := cur.StartTime - leadSeconds
		probe := Interval{Start: newStart, End: cur.StartTime}
		next := Interval{Start: newStart, End: cur.EndTime}
		if !next.Valid() {
			return Interval{}, Interval{}, ErrIncorrectTime
		}
		return probe, next, nil
	}, zap.Int64("seconds", leadSeconds))
}

func (s *service) ChangeTime(ctx context.Context, id int64, newStart, newEnd int64) (*Booking, error) {
	next := Interval{Start: newStart, End: newEnd}
	if !next.Valid() {
		return nil, ErrIncorrectTime
	}

	return s.reschedule(ctx, id, OpChange, func(Booking) (Interval, Interval, error) {
		return next, next, nil
	}, zap.Int64("start_time", newStart), zap.Int64("end_time", newEnd))
}

func (s *service) reschedule(ctx context.Context, id int64, op Operation, plan ReschedulePlan, fields ...zap.Field) (*Booking, error) {
	updated, conflict, err := s.repo.Reschedule(ctx, id, plan)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		s.logRejected(op, &Booking{ID: id}, conflict)
		return nil, &OverlapError{Op: op, Conflict: conflict}
	}

	s.logger.Info("rescheduled booking", append([]zap.Field{
		zap.String("op", string(op)),
		zap.Int64("booking_id", updated.ID),
		zap.String("booking", updated.Name),
		zap.String("user", updated.UserName),
	}, fields...)...)
	return updated, nil
}

func (s *service) logRejected(op Operation, candidate, conflict *Booking) {
	s.logger.Info("booking rejected: overlap",
		zap.String("op", string(op)),
		zap.Int64("booking_id", candidate.ID),
		zap.Int64("conflict_id", conflict.ID),
		zap.String("conflict", conflict.Name),
	)
}

func (s *service) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) CurrentForRoom(ctx context.Context, roomID int64, now time.Time) (*Booking, error) {
	ts := now.Unix()
	found, err := s.repo.List(ctx, Filter{
		RoomID:          roomID,
		StartAtOrBefore: &ts,
		EndAfter:        &ts,
		Limit:           1,
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (s *service) UpcomingForRoom(ctx context.Context, roomID int64, now, searchEnd time.Time, count int) ([]*Booking, error) {
	if count <= 0 {
		return []*Booking{}, nil
	}

	from, to := now.Unix(), searchEnd.Unix()
	found, err := s.repo.List(ctx, Filter{
		RoomID:          roomID,
		StartAtOrAfter:  &from,
		StartAtOrBefore: &to,
		Limit:           count,
	})
	if err != nil {
		return nil, err
	}

	slots := make([]*Booking, count)
	copy(slots, found)
	return slots, nil
}

func (s *service) ComingWeekForRoom(ctx context.Context, roomID int64, now time.Time) ([]*Booking, error) {
	dayStart := StartOfDay(now)
	from, to := dayStart.Unix(), dayStart.AddDate(0, 0, 7).Unix()
	return s.repo.List(ctx, Filter{
		RoomID:         roomID,
		StartAtOrAfter: &from,
		StartBefore:    &to,
	})
}

func (s *service) AllCurrentAndUpcoming(ctx context.Context, now time.Time) ([]*Booking, error) {
	from := now.Unix()
	return s.repo.List(ctx, Filter{StartAtOrAfter: &from})
}

func (s *service) CurrentAndUpcomingForUser(ctx context.Context, userID string, now time.Time, includeRecentlyEnded bool) ([]*Booking, error) {
	endAfter := now.Unix()
	if includeRecentlyEnded {
		endAfter = now.Add(-RecentlyEndedWindow).Unix()
	}
	return s.repo.List(ctx, Filter{UserID: userID, EndAfter: &endAfter})
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
