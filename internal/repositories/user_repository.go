package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/utils"
)

// UserRepository is the canonical account directory keyed by email.
// Create surfaces unique-index violations as typed errors so callers
// can implement create-or-fetch instead of read-then-write pairs.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error

	// GetByEmail fetches the account holding the given email.
	// Returns nil if not found.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID fetches an account by its UUID. Returns nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByProviderIdentity fetches the account holding the given
	// federated identity. Returns nil if not found.
	GetByProviderIdentity(ctx context.Context, provider models.AuthProvider, providerID string) (*models.User, error)

	// Update applies only the non-nil fields of upd.
	Update(ctx context.Context, id uuid.UUID, upd UserUpdate) error
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name          *string
	PasswordHash  *string
	Provider      *models.AuthProvider
	ProviderID    *string
	EmailVerified *bool
	Image         *string
}

type userRepository struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `
	id, email, name, password_hash, provider, provider_id,
	role, tier, email_verified,
	analyses_this_month, analyses_limit_override, image,
	created_at, updated_at
`

// ----------------------------
// Create
// ----------------------------

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (
			id, email, name, password_hash, provider, provider_id,
			role, tier, email_verified,
			analyses_this_month, analyses_limit_override, image,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.Email,
		u.Name,
		u.PasswordHash,
		u.Provider,
		u.ProviderID,
		u.Role,
		u.Tier,
		u.EmailVerified,
		u.AnalysesLimitOverride,
		u.Image,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// mapUniqueViolation converts a Postgres unique-index violation
// (SQLSTATE 23505) into the typed conflict error for the index that
// fired. Any other error passes through unchanged.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "provider") {
		return utils.ErrProviderIdentityExists
	}
	return utils.ErrEmailExists
}

// ----------------------------
// Get
// ----------------------------

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByProviderIdentity(ctx context.Context, provider models.AuthProvider, providerID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE provider = $1 AND provider_id = $2`
	return r.scanUser(r.db.QueryRow(ctx, query, provider, providerID))
}

func (r *userRepository) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Provider,
		&u.ProviderID,
		&u.Role,
		&u.Tier,
		&u.EmailVerified,
		&u.AnalysesThisMonth,
		&u.AnalysesLimitOverride,
		&u.Image,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// ----------------------------
// Update
// ----------------------------

func (r *userRepository) Update(ctx context.Context, id uuid.UUID, upd UserUpdate) error {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.PasswordHash != nil {
		add("password_hash", *upd.PasswordHash)
	}
	if upd.Provider != nil {
		add("provider", *upd.Provider)
	}
	if upd.ProviderID != nil {
		add("provider_id", *upd.ProviderID)
	}
	if upd.EmailVerified != nil {
		add("email_verified", *upd.EmailVerified)
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}
