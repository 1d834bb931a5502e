package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/talentsift/auth-service/internal/models"
)

// VerificationCodeRepository stores one active code per (email, purpose).
// Issuing a new code overwrites the previous one, so only the most
// recently delivered code can ever redeem.
type VerificationCodeRepository interface {
	// Upsert writes the code for (email, purpose), replacing any
	// existing row and clearing a previous consumed flag.
	Upsert(ctx context.Context, email string, purpose models.CodePurpose, code string, expiresAt time.Time) error

	// Get fetches the current code row for (email, purpose).
	// Returns nil if not found.
	Get(ctx context.Context, email string, purpose models.CodePurpose) (*models.VerificationCode, error)

	// Consume marks the row consumed if and only if the row exists,
	// matches code, is unconsumed and unexpired. Reports whether the
	// mark happened.
	Consume(ctx context.Context, email string, purpose models.CodePurpose, code string) (bool, error)

	// CleanupDead removes consumed rows and rows expired for longer
	// than the given grace period.
	CleanupDead(ctx context.Context, expiredFor time.Duration) (int64, error)
}

type verificationCodeRepository struct {
	db DB
}

func NewVerificationCodeRepository(db DB) VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

func (r *verificationCodeRepository) Upsert(
	ctx context.Context,
	email string,
	purpose models.CodePurpose,
	code string,
	expiresAt time.Time,
) error {
	q := `
		INSERT INTO verification_codes (id, email, purpose, code, issued_at, expires_at, consumed)
		VALUES ($1, $2, $3, $4, NOW(), $5, FALSE)
		ON CONFLICT (email, purpose) DO UPDATE
		SET code = EXCLUDED.code,
		    issued_at = NOW(),
		    expires_at = EXCLUDED.expires_at,
		    consumed = FALSE
	`
	_, err := r.db.Exec(ctx, q, uuid.New(), email, purpose, code, expiresAt)
	return err
}

func (r *verificationCodeRepository) Get(ctx context.Context, email string, purpose models.CodePurpose) (*models.VerificationCode, error) {
	q := `
		SELECT id, email, purpose, code, issued_at, expires_at, consumed
		FROM verification_codes
		WHERE email = $1 AND purpose = $2
	`
	row := r.db.QueryRow(ctx, q, email, purpose)

	var rec models.VerificationCode
	err := row.Scan(
		&rec.ID,
		&rec.Email,
		&rec.Purpose,
		&rec.Code,
		&rec.IssuedAt,
		&rec.ExpiresAt,
		&rec.Consumed,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *verificationCodeRepository) Consume(
	ctx context.Context,
	email string,
	purpose models.CodePurpose,
	code string,
) (bool, error) {
	q := `
		UPDATE verification_codes
		SET consumed = TRUE
		WHERE email = $1
		  AND purpose = $2
		  AND code = $3
		  AND consumed = FALSE
		  AND expires_at > NOW()
	`
	tag, err := r.db.Exec(ctx, q, email, purpose, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *verificationCodeRepository) CleanupDead(ctx context.Context, expiredFor time.Duration) (int64, error) {
	q := `
		DELETE FROM verification_codes
		WHERE consumed = TRUE
		   OR expires_at < NOW() - make_interval(secs => $1)
	`
	tag, err := r.db.Exec(ctx, q, expiredFor.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
