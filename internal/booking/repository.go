package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/nekogravitycat/room-booker/internal/db"
)

// ReschedulePlan derives, from the persisted booking, the interval that must be
// free of other bookings (probe) and the interval to store (next).
type ReschedulePlan func(current Booking) (probe, next Interval, err error)

type Repository interface {
	// Create inserts b unless another booking in the same room overlaps it,
	// in which case the conflicting booking is returned and nothing is written.
	Create(ctx context.Context, b *Booking) (conflict *Booking, err error)

	// Reschedule applies plan to the booking with the given id. The probe is
	// checked against the room's other bookings and, if free, next is stored.
	// Check and write happen atomically per room.
	Reschedule(ctx context.Context, id int64, plan ReschedulePlan) (updated *Booking, conflict *Booking, err error)

	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, error)
	Delete(ctx context.Context, id int64) error

	// FindOverlap returns some booking in roomID overlapping iv, ignoring
	// excludeBookingID, or nil when the range is free.
	FindOverlap(ctx context.Context, roomID int64, iv Interval, excludeBookingID int64) (*Booking, error)
}

var bookingColumns = []string{"id", "room_id", "start_time", "end_time", "name", "user_id", "user_name"}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqlRepository struct {
	db    *db.DB
	locks *roomLocks
}

func NewSQLRepository(d *db.DB) Repository {
	return &sqlRepository{db: d, locks: newRoomLocks()}
}

// withRoomLock runs fn in a transaction that holds both the in-process room
// mutex and, where the engine supports it, a row lock on the room.
func (r *sqlRepository) withRoomLock(ctx context.Context, roomID int64, fn func(tx *sql.Tx) error) error {
	unlock := r.locks.lock(roomID)
	defer unlock()

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		sel := r.db.Builder().Select("id").From("rooms").Where(squirrel.Eq{"id": roomID})
		if suffix := r.db.LockSuffix(); suffix != "" {
			sel = sel.Suffix(suffix)
		}
		query, args, err := sel.ToSql()
		if err != nil {
			return fmt.Errorf("build lock room query failed: %w", err)
		}

		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("lock room failed: %w", err)
		}
		return fn(tx)
	})
}

func (r *sqlRepository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	var conflict *Booking
	err := r.withRoomLock(ctx, b.RoomID, func(tx *sql.Tx) error {
		var err error
		conflict, err = r.findOverlap(ctx, tx, b.RoomID, b.Interval(), 0)
		if err != nil || conflict != nil {
			return err
		}

		query, args, err := r.db.Builder().Insert("bookings").
			Columns("room_id", "start_time", "end_time", "name", "user_id", "user_name").
			Values(b.RoomID, b.StartTime, toStoredEnd(b.EndTime), b.Name, b.UserID, b.UserName).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create booking query failed: %w", err)
		}

		if err := tx.QueryRowContext(ctx, query, args...).Scan(&b.ID); err != nil {
			return fmt.Errorf("create booking failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conflict, nil
}

func (r *sqlRepository) Reschedule(ctx context.Context, id int64, plan ReschedulePlan) (*Booking, *Booking, error) {
	// room_id never changes, so it is safe to read it before taking the lock.
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var updated, conflict *Booking
	err = r.withRoomLock(ctx, existing.RoomID, func(tx *sql.Tx) error {
		current, err := r.getByID(ctx, tx, id)
		if err != nil {
			return err
		}

		probe, next, err := plan(*current)
		if err != nil {
			return err
		}

		conflict, err = r.findOverlap(ctx, tx, current.RoomID, probe, current.ID)
		if err != nil || conflict != nil {
			return err
		}

		query, args, err := r.db.Builder().Update("bookings").
			Set("start_time", next.Start).
			Set("end_time", toStoredEnd(next.End)).
			Where(squirrel.Eq{"id": current.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update booking query failed: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update booking failed: %w", err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update booking failed: %w", err)
		} else if affected == 0 {
			return ErrNotFound
		}

		current.StartTime = next.Start
		current.EndTime = next.End
		updated = current
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, conflict, nil
}

func (r *sqlRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *sqlRepository) getByID(ctx context.Context, q querier, id int64) (*Booking, error) {
	query, args, err := r.db.Builder().Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *sqlRepository) List(ctx context.Context, filter Filter) ([]*Booking, error) {
	query := r.db.Builder().Select(bookingColumns...).From("bookings")

	if filter.RoomID != 0 {
		query = query.Where(squirrel.Eq{"room_id": filter.RoomID})
	}
	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.StartAtOrAfter != nil {
		query = query.Where(squirrel.GtOrEq{"start_time": *filter.StartAtOrAfter})
	}
	if filter.StartAtOrBefore != nil {
		query = query.Where(squirrel.LtOrEq{"start_time": *filter.StartAtOrBefore})
	}
	if filter.StartBefore != nil {
		query = query.Where(squirrel.Lt{"start_time": *filter.StartBefore})
	}
	if filter.EndAfter != nil {
		// exclusive end > t  <=>  stored end > t - 1
		query = query.Where(squirrel.Gt{"end_time": toStoredEnd(*filter.EndAfter)})
	}

	query = query.OrderBy("start_time ASC", "id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	return r.queryBookings(ctx, r.db, sql, args...)
}

func (r *sqlRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.db.Builder().Delete("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlRepository) FindOverlap(ctx context.Context, roomID int64, iv Interval, excludeBookingID int64) (*Booking, error) {
	return r.findOverlap(ctx, r.db, roomID, iv, excludeBookingID)
}

func (r *sqlRepository) findOverlap(ctx context.Context, q querier, roomID int64, iv Interval, excludeBookingID int64) (*Booking, error) {
	// Interval.Overlaps evaluated against stored rows: a row is disjoint from
	// iv when it starts at or after iv.End, or its exclusive end is at or
	// before iv.Start.
	query := r.db.Builder().Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"room_id": roomID}).
		Where("NOT (start_time >= ? OR end_time <= ?)", iv.End, toStoredEnd(iv.Start)).
		OrderBy("start_time ASC").
		Limit(1)

	if excludeBookingID != 0 {
		query = query.Where(squirrel.NotEq{"id": excludeBookingID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build check overlap query failed: %w", err)
	}

	found, err := r.queryBookings(ctx, q, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("check overlap failed: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *sqlRepository) queryBookings(ctx context.Context, q querier, query string, args ...any) ([]*Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query bookings failed: %w", err)
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var (
		b         Booking
		storedEnd int64
	)
	if err := row.Scan(&b.ID, &b.RoomID, &b.StartTime, &storedEnd, &b.Name, &b.UserID, &b.UserName); err != nil {
		return nil, err
	}
	b.EndTime = fromStoredEnd(storedEnd)
	return &b, nil
}
