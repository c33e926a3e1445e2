package room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/nekogravitycat/room-booker/internal/db"
)

type Repository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id int64) (*Room, error)
	GetByName(ctx context.Context, name string) (*Room, error)
	List(ctx context.Context) ([]*Room, error)

	// Delete removes the room together with all of its bookings.
	Delete(ctx context.Context, id int64) error
}

type sqlRepository struct {
	db *db.DB
}

func NewSQLRepository(d *db.DB) Repository {
	return &sqlRepository{db: d}
}

func (r *sqlRepository) Create(ctx context.Context, room *Room) error {
	query, args, err := r.db.Builder().Insert("rooms").
		Columns("name").
		Values(room.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room query failed: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&room.ID); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrNameTaken
		}
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *sqlRepository) GetByID(ctx context.Context, id int64) (*Room, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *sqlRepository) GetByName(ctx context.Context, name string) (*Room, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name})
}

func (r *sqlRepository) getOne(ctx context.Context, where squirrel.Eq) (*Room, error) {
	query, args, err := r.db.Builder().Select("id", "name").
		From("rooms").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room query failed: %w", err)
	}

	var rm Room
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&rm.ID, &rm.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return &rm, nil
}

func (r *sqlRepository) List(ctx context.Context) ([]*Room, error) {
	query, args, err := r.db.Builder().Select("id", "name").
		From("rooms").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list rooms query failed: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		var rm Room
		if err := rows.Scan(&rm.ID, &rm.Name); err != nil {
			return nil, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, &rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rooms failed: %w", err)
	}
	return rooms, nil
}

func (r *sqlRepository) Delete(ctx context.Context, id int64) error {
	psql := r.db.Builder()
	deleteBookings, bookingArgs, err := psql.Delete("bookings").
		Where(squirrel.Eq{"room_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete room bookings query failed: %w", err)
	}
	deleteRoom, roomArgs, err := psql.Delete("rooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete room query failed: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		// Explicit so the cascade does not depend on foreign key enforcement.
		if _, err := tx.ExecContext(ctx, deleteBookings, bookingArgs...); err != nil {
			return fmt.Errorf("delete room bookings failed: %w", err)
		}

		res, err := tx.ExecContext(ctx, deleteRoom, roomArgs...)
		if err != nil {
			return fmt.Errorf("delete room failed: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete room failed: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
