package repository

import (
	"context"
	"database/sql"

	"github.com/avereth/testing-center/internal/model"
)

// SeatRepo provides access to the testing-center floor plan.  Seats change
// rarely; occupancy flips as proctors check students in and out.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// List returns the full floor plan ordered by desk label.
func (r *SeatRepo) List(ctx context.Context) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, x, y, angle, occupied FROM seats ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.Name, &s.X, &s.Y, &s.Angle, &s.Occupied); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetOccupied flips one desk's occupancy.  Returns ErrSeatNotFound when
// the id does not exist.
func (r *SeatRepo) SetOccupied(ctx context.Context, id uint64, occupied bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE seats SET occupied = ? WHERE id = ?`, occupied, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats WHERE id = ?`, id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrSeatNotFound
		}
	}
	return nil
}

// Create inserts a desk into the floor plan.
func (r *SeatRepo) Create(ctx context.Context, s model.Seat) (model.Seat, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO seats (name, x, y, angle, occupied) VALUES (?,?,?,?,?)`,
		s.Name, s.X, s.Y, s.Angle, s.Occupied)
	if err != nil {
		return model.Seat{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Seat{}, err
	}
	s.ID = uint64(id)
	return s, nil
}
