package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avereth/testing-center/internal/model"
)

// TestRepo provides CRUD operations for tests administered through the
// center.
type TestRepo struct {
	db *sql.DB
}

// NewTestRepo returns a new TestRepo bound to the given database.
func NewTestRepo(db *sql.DB) *TestRepo { return &TestRepo{db: db} }

const testColumns = `id, name, duration_mins, opens, closes, created_at, updated_at`

func scanTest(row interface{ Scan(...any) error }) (model.Test, error) {
	var t model.Test
	var opens, closes sql.NullTime
	err := row.Scan(&t.ID, &t.Name, &t.DurationMins, &opens, &closes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Test{}, err
	}
	if opens.Valid {
		v := opens.Time
		t.Opens = &v
	}
	if closes.Valid {
		v := closes.Time
		t.Closes = &v
	}
	return t, nil
}

// Create inserts a test and returns the stored row.  Opens/closes may be
// nil for tests not yet published to students.
func (r *TestRepo) Create(ctx context.Context, name string, durationMins int, opens, closes *time.Time) (model.Test, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tests (name, duration_mins, opens, closes) VALUES (?,?,?,?)`,
		name, durationMins, nullableUTC(opens), nullableUTC(closes))
	if err != nil {
		return model.Test{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Test{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns one test or ErrTestNotFound.
func (r *TestRepo) GetByID(ctx context.Context, id uint64) (model.Test, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+testColumns+` FROM tests WHERE id = ?`, id)
	t, err := scanTest(row)
	if err == sql.ErrNoRows {
		return model.Test{}, ErrTestNotFound
	}
	return t, err
}

// List returns every test, newest first.
func (r *TestRepo) List(ctx context.Context) ([]model.Test, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+testColumns+` FROM tests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites a test's fields and returns the stored row.
func (r *TestRepo) Update(ctx context.Context, id uint64, name string, durationMins int, opens, closes *time.Time) (model.Test, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tests SET name = ?, duration_mins = ?, opens = ?, closes = ? WHERE id = ?`,
		name, durationMins, nullableUTC(opens), nullableUTC(closes), id)
	if err != nil {
		return model.Test{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a test.  Tests with remaining enrollments cannot be
// deleted; ErrConflict is returned instead.
func (r *TestRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM test_enrollments WHERE test_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM tests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrTestNotFound
	}
	return nil
}

// nullableUTC converts an optional timestamp for binding; nil stays NULL.
func nullableUTC(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
