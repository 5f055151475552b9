package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/hadirmu/hadirmu-server/internal/models"
)

// RecordIfAbsent inserts an attendance row for (student, session, day) and
// reports whether a row was written. The unique index attendance_once_per_day
// makes concurrent duplicate scans collapse into a single row; a conflict is
// the AlreadyRecorded outcome, not an error.
func RecordIfAbsent(ctx context.Context, db *sql.DB, studentID, sessionLabel string, day time.Time, status models.AttendanceStatus) (bool, error) {
	res, err := db.ExecContext(ctx, `
INSERT INTO attendance (id, student_id, session_label, status, attended_on)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (student_id, session_label, attended_on) DO NOTHING`,
		uuid.NewString(), studentID, sessionLabel, string(status), day.Format("2006-01-02"))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetStatus is the manual teacher path: it replaces whatever record exists
// for (student, session, day), bypassing the one-scan rule on purpose.
func SetStatus(ctx context.Context, db *sql.DB, studentID, sessionLabel string, day time.Time, status models.AttendanceStatus) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO attendance (id, student_id, session_label, status, attended_on)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (student_id, session_label, attended_on)
DO UPDATE SET status = excluded.status, recorded_at = now()`,
		uuid.NewString(), studentID, sessionLabel, string(status), day.Format("2006-01-02"))
	return err
}

// DeleteRecord removes a manual or scanned record (explicit teacher action).
func DeleteRecord(ctx context.Context, db *sql.DB, studentID, sessionLabel string, day time.Time) error {
	_, err := db.ExecContext(ctx, `
DELETE FROM attendance WHERE student_id = $1 AND session_label = $2 AND attended_on = $3`,
		studentID, sessionLabel, day.Format("2006-01-02"))
	return err
}

// ListForDay returns the day's records joined with student names, optionally
// narrowed to one session label.
func ListForDay(ctx context.Context, db *sql.DB, day time.Time, sessionLabel string) ([]models.AttendanceRecord, error) {
	query := `
SELECT a.id, a.student_id, a.session_label, a.status, a.attended_on, a.recorded_at, s.full_name, s.nis
FROM attendance a
JOIN students s ON s.id = a.student_id
WHERE a.attended_on = $1`
	args := []any{day.Format("2006-01-02")}
	if sessionLabel != "" {
		query += ` AND a.session_label = $2`
		args = append(args, sessionLabel)
	}
	query += ` ORDER BY a.recorded_at`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.AttendanceRecord
	for rows.Next() {
		var r models.AttendanceRecord
		var status string
		if err := rows.Scan(&r.ID, &r.StudentID, &r.SessionLabel, &status, &r.AttendedOn, &r.RecordedAt, &r.StudentName, &r.StudentNIS); err != nil {
			return nil, err
		}
		r.Status = models.AttendanceStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}
