package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hadirmu/hadirmu-server/internal/models"
)

func tableFor(pool models.Pool) (string, error) {
	switch pool {
	case models.PoolTeacher:
		return "teachers", nil
	case models.PoolStudent:
		return "students", nil
	}
	return "", errors.New("unknown identity pool")
}

// SetCode stores a tagged one-time code with its expiry, overwriting any
// outstanding code: only the most recently issued code is ever redeemable.
func SetCode(ctx context.Context, db *sql.DB, pool models.Pool, id, tagged string, expires time.Time) error {
	table, err := tableFor(pool)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
UPDATE `+table+` SET reset_code = $2, reset_code_expires = $3 WHERE id = $1`, id, tagged, expires)
	return err
}

// ConsumeCode clears the stored code only if it equals the presented tagged
// value and has not expired, all in a single conditional update. Exactly one
// of any number of concurrent redemptions can see an affected row.
func ConsumeCode(ctx context.Context, db *sql.DB, pool models.Pool, id, tagged string, now time.Time) (bool, error) {
	table, err := tableFor(pool)
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, `
UPDATE `+table+`
SET reset_code = NULL, reset_code_expires = NULL
WHERE id = $1 AND reset_code = $2 AND reset_code_expires >= $3`, id, tagged, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CodeState reads the stored code and expiry so a failed consume can be
// diagnosed (missing vs expired vs mismatched). Read-only.
func CodeState(ctx context.Context, db *sql.DB, pool models.Pool, id string) (code *string, expires *time.Time, err error) {
	table, terr := tableFor(pool)
	if terr != nil {
		return nil, nil, terr
	}
	row := db.QueryRowContext(ctx, `
SELECT reset_code, reset_code_expires FROM `+table+` WHERE id = $1`, id)
	if err := row.Scan(&code, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return code, expires, nil
}

// CountStaleCodes reports codes past their expiry that were never redeemed.
// They are harmless (expiry is checked on every consume) but worth watching.
func CountStaleCodes(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"teachers", "students"} {
		var n int64
		row := db.QueryRowContext(ctx, `
SELECT count(*) FROM `+table+` WHERE reset_code IS NOT NULL AND reset_code_expires < $1`, now)
		if err := row.Scan(&n); err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
