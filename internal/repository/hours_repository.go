package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avereth/testing-center/internal/model"
)

// HoursRepo provides CRUD operations for testing-center open-hours blocks.
// All timestamp fields are stored in UTC.
type HoursRepo struct {
	db *sql.DB
}

// NewHoursRepo returns a new HoursRepo bound to the given database.
func NewHoursRepo(db *sql.DB) *HoursRepo { return &HoursRepo{db: db} }

// DB exposes the underlying handle for callers that need transactions.
func (r *HoursRepo) DB() *sql.DB { return r.db }

const hoursColumns = `id, opens, closes, seats, created_at, updated_at`

func scanHours(row interface{ Scan(...any) error }) (model.TestingCenterHours, error) {
	var h model.TestingCenterHours
	err := row.Scan(&h.ID, &h.Opens, &h.Closes, &h.Seats, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

// Create inserts an open-hours block and returns the stored row.
func (r *HoursRepo) Create(ctx context.Context, opens, closes time.Time, seats int) (model.TestingCenterHours, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO testing_center_hours (opens, closes, seats) VALUES (?,?,?)`,
		opens.UTC(), closes.UTC(), seats)
	if err != nil {
		return model.TestingCenterHours{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.TestingCenterHours{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns one block or ErrHoursNotFound.
func (r *HoursRepo) GetByID(ctx context.Context, id uint64) (model.TestingCenterHours, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+hoursColumns+` FROM testing_center_hours WHERE id = ?`, id)
	h, err := scanHours(row)
	if err == sql.ErrNoRows {
		return model.TestingCenterHours{}, ErrHoursNotFound
	}
	return h, err
}

// Update rewrites a block's bounds and seat count and returns the stored
// row.  Returns ErrHoursNotFound when the id does not exist.
func (r *HoursRepo) Update(ctx context.Context, id uint64, opens, closes time.Time, seats int) (model.TestingCenterHours, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE testing_center_hours SET opens = ?, closes = ?, seats = ? WHERE id = ?`,
		opens.UTC(), closes.UTC(), seats, id)
	if err != nil {
		return model.TestingCenterHours{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero rows for no-op updates too; confirm existence.
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.TestingCenterHours{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a block.  Returns ErrHoursNotFound when nothing matched.
func (r *HoursRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM testing_center_hours WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHoursNotFound
	}
	return nil
}

// ListOverlapping returns every block overlapping [from, to].  The filter
// is the four-comparison range-overlap test: block starts inside the
// range, block ends inside the range, range starts inside the block, or
// range ends inside the block.
func (r *HoursRepo) ListOverlapping(ctx context.Context, from, to time.Time) ([]model.TestingCenterHours, error) {
	const q = `SELECT ` + hoursColumns + ` FROM testing_center_hours
	           WHERE (opens <= ? AND closes >= ?)
	              OR (opens <= ? AND closes >= ?)
	              OR (? <= opens AND ? >= opens)
	              OR (? <= closes AND ? >= closes)
	           ORDER BY opens`
	f, t := from.UTC(), to.UTC()
	rows, err := r.db.QueryContext(ctx, q, f, f, t, t, f, t, f, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TestingCenterHours
	for rows.Next() {
		h, err := scanHours(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
