package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hadirmu/hadirmu-server/internal/models"
)

const studentCols = `id, full_name, nis, recovery_email, whatsapp_number, password, reset_code, reset_code_expires, link_token, telegram_chat_id, telegram_username`

func scanStudent(row *sql.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.FullName, &s.NIS, &s.RecoveryEmail, &s.WhatsApp, &s.Password,
		&s.ResetCode, &s.ResetExpires, &s.LinkToken, &s.TelegramChatID, &s.TelegramUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetStudentByLogin matches the identifier against recovery email or NIS.
func GetStudentByLogin(ctx context.Context, db *sql.DB, identifier string) (*models.Student, error) {
	row := db.QueryRowContext(ctx, `
SELECT `+studentCols+` FROM students WHERE recovery_email = $1 OR nis = $1`, identifier)
	return scanStudent(row)
}

func GetStudentByNIS(ctx context.Context, db *sql.DB, nis string) (*models.Student, error) {
	row := db.QueryRowContext(ctx, `
SELECT `+studentCols+` FROM students WHERE nis = $1`, nis)
	return scanStudent(row)
}

func GetStudentByWhatsApp(ctx context.Context, db *sql.DB, number string) (*models.Student, error) {
	row := db.QueryRowContext(ctx, `
SELECT `+studentCols+` FROM students WHERE whatsapp_number = $1`, number)
	return scanStudent(row)
}

func GetStudentByID(ctx context.Context, db *sql.DB, id string) (*models.Student, error) {
	row := db.QueryRowContext(ctx, `
SELECT `+studentCols+` FROM students WHERE id = $1`, id)
	return scanStudent(row)
}

func SetStudentPassword(ctx context.Context, db *sql.DB, id, password string) error {
	_, err := db.ExecContext(ctx, `UPDATE students SET password = $2 WHERE id = $1`, id, password)
	return err
}

func SetStudentWhatsApp(ctx context.Context, db *sql.DB, id, number string) error {
	_, err := db.ExecContext(ctx, `UPDATE students SET whatsapp_number = $2 WHERE id = $1`, id, number)
	return err
}

// SetLinkToken stores a fresh Telegram deep-link token, replacing any
// outstanding one.
func SetLinkToken(ctx context.Context, db *sql.DB, id, token string) error {
	_, err := db.ExecContext(ctx, `UPDATE students SET link_token = $2 WHERE id = $1`, id, token)
	return err
}

// ConsumeLinkToken binds a Telegram chat to the student holding the token and
// clears the token in the same statement, so a token redeems at most once.
// Returns nil when no student holds the token.
func ConsumeLinkToken(ctx context.Context, db *sql.DB, token string, chatID int64, username string) (*models.Student, error) {
	var uname *string
	if username != "" {
		uname = &username
	}
	row := db.QueryRowContext(ctx, `
UPDATE students
SET telegram_chat_id = $2, telegram_username = $3, link_token = NULL
WHERE link_token = $1
RETURNING `+studentCols, token, chatID, uname)
	return scanStudent(row)
}
