package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

// OTPRepository stores issuance records. Records are never deleted here;
// superseded and expired rows simply stop matching the queries. Retention
// cleanup, if ever needed, belongs in a migration or a cron, not in the
// request path.
type OTPRepository struct {
	db *sql.DB
}

func NewOTPRepository(db *sql.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Insert(ctx context.Context, rec *domain.OTPRecord) error {
	query := `INSERT INTO otp_codes (email, code_hash, created_at, expires_at, verified)
	          VALUES ($1, $2, $3, $4, FALSE) RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		rec.Email, rec.CodeHash, rec.CreatedAt, rec.ExpiresAt).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert otp record: %w", err)
	}
	return nil
}

func (r *OTPRepository) CountIssuedSince(ctx context.Context, email string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM otp_codes WHERE email = $1 AND created_at >= $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, email, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count otp records: %w", err)
	}
	return count, nil
}

func (r *OTPRepository) RecentUnverified(ctx context.Context, email string, now time.Time, limit int) ([]*domain.OTPRecord, error) {
	query := `SELECT id, email, code_hash, created_at, expires_at, verified
	          FROM otp_codes
	          WHERE email = $1 AND verified = FALSE AND expires_at > $2
	          ORDER BY created_at DESC
	          LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, email, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query otp records: %w", err)
	}
	defer rows.Close()

	var records []*domain.OTPRecord
	for rows.Next() {
		var rec domain.OTPRecord
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.CodeHash, &rec.CreatedAt, &rec.ExpiresAt, &rec.Verified); err != nil {
			return nil, fmt.Errorf("scan otp row: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

func (r *OTPRepository) MarkVerified(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE otp_codes SET verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark otp verified: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("otp record %d not found", id)
	}
	return nil
}

func (r *OTPRepository) HasVerified(ctx context.Context, email string, now time.Time) (bool, error) {
	query := `SELECT EXISTS(
	              SELECT 1 FROM otp_codes
	              WHERE email = $1 AND verified = TRUE AND expires_at > $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("query verified otp: %w", err)
	}
	return exists, nil
}
