package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avereth/testing-center/internal/model"
)

// EnrollmentRepo provides CRUD operations for test enrollments and the
// slot update issued by the scheduling flow.  All timestamp fields are
// stored in UTC.
type EnrollmentRepo struct {
	db *sql.DB
}

// NewEnrollmentRepo returns a new EnrollmentRepo bound to the given database.
func NewEnrollmentRepo(db *sql.DB) *EnrollmentRepo { return &EnrollmentRepo{db: db} }

// DB exposes the underlying handle for callers that need transactions.
func (r *EnrollmentRepo) DB() *sql.DB { return r.db }

const enrollmentColumns = `id, test_id, canvas_student_name, canvas_student_id,
	start_test_at, duration_mins, unlocks_at, created_at, updated_at`

func scanEnrollment(row interface{ Scan(...any) error }) (model.TestEnrollment, error) {
	var e model.TestEnrollment
	var startAt, unlocksAt sql.NullTime
	err := row.Scan(&e.ID, &e.TestID, &e.CanvasStudentName, &e.CanvasStudentID,
		&startAt, &e.DurationMins, &unlocksAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return model.TestEnrollment{}, err
	}
	if startAt.Valid {
		v := startAt.Time
		e.StartTestAt = &v
	}
	if unlocksAt.Valid {
		v := unlocksAt.Time
		e.UnlocksAt = &v
	}
	return e, nil
}

// Create inserts an enrollment for a test.  The slot starts empty; the
// default duration comes from the test unless overridden.
func (r *EnrollmentRepo) Create(ctx context.Context, testID uint64, studentName string, canvasStudentID int64, durationMins int, unlocksAt *time.Time) (model.TestEnrollment, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO test_enrollments (test_id, canvas_student_name, canvas_student_id, duration_mins, unlocks_at)
		 VALUES (?,?,?,?,?)`,
		testID, studentName, canvasStudentID, durationMins, nullableUTC(unlocksAt))
	if err != nil {
		return model.TestEnrollment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.TestEnrollment{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns one enrollment or ErrEnrollmentNotFound.
func (r *EnrollmentRepo) GetByID(ctx context.Context, id uint64) (model.TestEnrollment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM test_enrollments WHERE id = ?`, id)
	e, err := scanEnrollment(row)
	if err == sql.ErrNoRows {
		return model.TestEnrollment{}, ErrEnrollmentNotFound
	}
	return e, err
}

// GetWithTest returns an enrollment together with its test row, the
// expansion every scheduling view needs.
func (r *EnrollmentRepo) GetWithTest(ctx context.Context, id uint64) (model.TestEnrollment, model.Test, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return model.TestEnrollment{}, model.Test{}, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+testColumns+` FROM tests WHERE id = ?`, e.TestID)
	t, err := scanTest(row)
	if err == sql.ErrNoRows {
		return model.TestEnrollment{}, model.Test{}, ErrTestNotFound
	}
	if err != nil {
		return model.TestEnrollment{}, model.Test{}, err
	}
	return e, t, nil
}

// ListByTest returns every enrollment of one test.
func (r *EnrollmentRepo) ListByTest(ctx context.Context, testID uint64) ([]model.TestEnrollment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM test_enrollments WHERE test_id = ? ORDER BY canvas_student_name`,
		testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEnrollments(rows)
}

// ListStartingBetween returns every scheduled enrollment whose slot starts
// inside [from, to].  Callers pad the range by a day on each side so slots
// crossing midnight near the boundary are included.
func (r *EnrollmentRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]model.TestEnrollment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM test_enrollments
		 WHERE start_test_at IS NOT NULL AND start_test_at >= ? AND start_test_at <= ?`,
		from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEnrollments(rows)
}

// UpdateSlot commits a chosen slot: a single update of the absolute start
// timestamp and duration.  Returns the stored row.
func (r *EnrollmentRepo) UpdateSlot(ctx context.Context, id uint64, startAt time.Time, durationMins int) (model.TestEnrollment, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE test_enrollments SET start_test_at = ?, duration_mins = ? WHERE id = ?`,
		startAt.UTC(), durationMins, id)
	if err != nil {
		return model.TestEnrollment{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.TestEnrollment{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdateUnlocks moves (or clears) an enrollment's personal unlock
// instant.  Returns the stored row.
func (r *EnrollmentRepo) UpdateUnlocks(ctx context.Context, id uint64, unlocksAt *time.Time) (model.TestEnrollment, error) {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE test_enrollments SET unlocks_at = ? WHERE id = ?`,
		nullableUTC(unlocksAt), id); err != nil {
		return model.TestEnrollment{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes an enrollment.  Returns ErrEnrollmentNotFound when
// nothing matched.
func (r *EnrollmentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM test_enrollments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func collectEnrollments(rows *sql.Rows) ([]model.TestEnrollment, error) {
	var out []model.TestEnrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
