package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hadirmu/hadirmu-server/internal/models"
)

// OTPStore adapts the code queries to the interface the otp service expects.
type OTPStore struct{ DB *sql.DB }

func (s OTPStore) SetCode(ctx context.Context, pool models.Pool, id, tagged string, expires time.Time) error {
	return SetCode(ctx, s.DB, pool, id, tagged, expires)
}

func (s OTPStore) ConsumeCode(ctx context.Context, pool models.Pool, id, tagged string, now time.Time) (bool, error) {
	return ConsumeCode(ctx, s.DB, pool, id, tagged, now)
}

func (s OTPStore) CodeState(ctx context.Context, pool models.Pool, id string) (*string, *time.Time, error) {
	return CodeState(ctx, s.DB, pool, id)
}
