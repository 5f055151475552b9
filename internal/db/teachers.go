package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hadirmu/hadirmu-server/internal/models"
)

const teacherCols = `id, full_name, email, nip, whatsapp_number, password, role, reset_code, reset_code_expires`

func scanTeacher(row *sql.Row) (*models.Teacher, error) {
	var t models.Teacher
	err := row.Scan(&t.ID, &t.FullName, &t.Email, &t.NIP, &t.WhatsApp, &t.Password, &t.Role, &t.ResetCode, &t.ResetExpires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTeacherByLogin matches the identifier against email or NIP.
func GetTeacherByLogin(ctx context.Context, db *sql.DB, identifier string) (*models.Teacher, error) {
	row := db.QueryRowContext(ctx, `
SELECT `+teacherCols+` FROM teachers WHERE email = $1 OR nip = $1`, identifier)
	return scanTeacher(row)
}

func GetTeacherByWhatsApp(ctx context.Context, db *sql.DB, number string) (*models.Teacher, error) {
	row := db.QueryRowContext(ctx, `
SELECT `+teacherCols+` FROM teachers WHERE whatsapp_number = $1`, number)
	return scanTeacher(row)
}

func GetTeacherByID(ctx context.Context, db *sql.DB, id string) (*models.Teacher, error) {
	row := db.QueryRowContext(ctx, `
SELECT `+teacherCols+` FROM teachers WHERE id = $1`, id)
	return scanTeacher(row)
}

func SetTeacherPassword(ctx context.Context, db *sql.DB, id, password string) error {
	_, err := db.ExecContext(ctx, `UPDATE teachers SET password = $2 WHERE id = $1`, id, password)
	return err
}

func SetTeacherWhatsApp(ctx context.Context, db *sql.DB, id, number string) error {
	_, err := db.ExecContext(ctx, `UPDATE teachers SET whatsapp_number = $2 WHERE id = $1`, id, number)
	return err
}
