package identity

import (
	"context"
	"database/sql"

	"github.com/hadirmu/hadirmu-server/internal/db"
	"github.com/hadirmu/hadirmu-server/internal/models"
)

// DBTeacherStore and DBStudentStore adapt the sql layer to the pool
// interfaces the resolver expects.
type DBTeacherStore struct{ DB *sql.DB }

func (s DBTeacherStore) ByLogin(ctx context.Context, identifier string) (*models.Teacher, error) {
	return db.GetTeacherByLogin(ctx, s.DB, identifier)
}

func (s DBTeacherStore) ByWhatsApp(ctx context.Context, number string) (*models.Teacher, error) {
	return db.GetTeacherByWhatsApp(ctx, s.DB, number)
}

type DBStudentStore struct{ DB *sql.DB }

func (s DBStudentStore) ByLogin(ctx context.Context, identifier string) (*models.Student, error) {
	return db.GetStudentByLogin(ctx, s.DB, identifier)
}

func (s DBStudentStore) ByWhatsApp(ctx context.Context, number string) (*models.Student, error) {
	return db.GetStudentByWhatsApp(ctx, s.DB, number)
}
