// Package identity resolves a principal from any of its alternate
// identifiers across the two disjoint pools (teachers, students).
package identity

import (
	"context"
	"errors"

	"github.com/hadirmu/hadirmu-server/internal/models"
	"go.uber.org/zap"
)

// ErrNotFound means no pool holds the identifier.
var ErrNotFound = errors.New("identitas tidak ditemukan")

// Principal is the pool-agnostic view of a resolved identity.
type Principal struct {
	Pool     models.Pool
	ID       string
	FullName string
	WhatsApp *string
	Password string
	Role     string
}

// TeacherStore and StudentStore are the two pool backends. Both lookups
// return (nil, nil) on no match.
type TeacherStore interface {
	ByLogin(ctx context.Context, identifier string) (*models.Teacher, error)
	ByWhatsApp(ctx context.Context, number string) (*models.Teacher, error)
}

type StudentStore interface {
	ByLogin(ctx context.Context, identifier string) (*models.Student, error)
	ByWhatsApp(ctx context.Context, number string) (*models.Student, error)
}

type Resolver struct {
	teachers TeacherStore
	students StudentStore
	log      *zap.Logger
}

func NewResolver(teachers TeacherStore, students StudentStore, log *zap.Logger) *Resolver {
	return &Resolver{teachers: teachers, students: students, log: log}
}

// ResolveLogin probes teachers by email/NIP, then students by recovery
// email/NIS. The teacher pool wins when both match; that collision is a
// known limitation and is logged when it happens.
func (r *Resolver) ResolveLogin(ctx context.Context, identifier string) (*Principal, error) {
	t, err := r.teachers.ByLogin(ctx, identifier)
	if err != nil {
		return nil, err
	}
	s, err := r.students.ByLogin(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return r.pick(identifier, teacherPrincipal(t), studentPrincipal(s))
}

// ResolveWhatsApp does the same probe keyed by phone number, used by the
// password-reset request flow.
func (r *Resolver) ResolveWhatsApp(ctx context.Context, number string) (*Principal, error) {
	t, err := r.teachers.ByWhatsApp(ctx, number)
	if err != nil {
		return nil, err
	}
	s, err := r.students.ByWhatsApp(ctx, number)
	if err != nil {
		return nil, err
	}
	return r.pick(number, teacherPrincipal(t), studentPrincipal(s))
}

func (r *Resolver) pick(identifier string, t, s *Principal) (*Principal, error) {
	if t != nil && s != nil {
		r.log.Warn("identifier present in both pools, teacher wins",
			zap.String("identifier", identifier),
			zap.String("teacher_id", t.ID),
			zap.String("student_id", s.ID))
	}
	if t != nil {
		return t, nil
	}
	if s != nil {
		return s, nil
	}
	return nil, ErrNotFound
}

func teacherPrincipal(t *models.Teacher) *Principal {
	if t == nil {
		return nil
	}
	return &Principal{
		Pool:     models.PoolTeacher,
		ID:       t.ID,
		FullName: t.FullName,
		WhatsApp: t.WhatsApp,
		Password: t.Password,
		Role:     t.Role,
	}
}

func studentPrincipal(s *models.Student) *Principal {
	if s == nil {
		return nil
	}
	return &Principal{
		Pool:     models.PoolStudent,
		ID:       s.ID,
		FullName: s.FullName,
		WhatsApp: s.WhatsApp,
		Password: s.Password,
		Role:     "student",
	}
}
