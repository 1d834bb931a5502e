package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/repositories"
	"github.com/talentsift/auth-service/internal/utils"
)

// RedeemOutcome classifies a code redemption attempt. Only Success
// leaves the caller with a consumed code; every other outcome leaves
// the stored row untouched so a later attempt with the right code can
// still succeed.
type RedeemOutcome int

const (
	RedeemSuccess RedeemOutcome = iota
	RedeemInvalidCode
	RedeemExpired
	RedeemNotFound
)

func (o RedeemOutcome) String() string {
	switch o {
	case RedeemSuccess:
		return "SUCCESS"
	case RedeemInvalidCode:
		return "INVALID_CODE"
	case RedeemExpired:
		return "EXPIRED"
	case RedeemNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// ---------------------------------------------------------------------
// VerificationService interface
// ---------------------------------------------------------------------

// VerificationService issues and redeems short-lived numeric codes.
// One code is live per (email, purpose); issuing again replaces it.
type VerificationService interface {
	// Issue generates a fresh code, stores it and hands it to deliver.
	// The code stays valid even when delivery reports failure.
	Issue(ctx context.Context, email string, purpose models.CodePurpose, deliver func(code string) bool) error

	// Redeem atomically consumes the code when it matches, is
	// unconsumed and unexpired.
	Redeem(ctx context.Context, email string, purpose models.CodePurpose, code string) (RedeemOutcome, error)
}

type verificationService struct {
	codeRepo   repositories.VerificationCodeRepository
	codeExpiry time.Duration
}

func NewVerificationService(codeRepo repositories.VerificationCodeRepository, codeExpiry time.Duration) VerificationService {
	return &verificationService{
		codeRepo:   codeRepo,
		codeExpiry: codeExpiry,
	}
}

func (s *verificationService) Issue(
	ctx context.Context,
	email string,
	purpose models.CodePurpose,
	deliver func(code string) bool,
) error {
	code, err := generateVerificationCode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.codeExpiry)
	if err := s.codeRepo.Upsert(ctx, email, purpose, code, expiresAt); err != nil {
		return err
	}

	if !deliver(code) {
		utils.Logger.Warnf("Code delivery failed for %s (%s); code remains redeemable", email, purpose)
	}
	return nil
}

func (s *verificationService) Redeem(
	ctx context.Context,
	email string,
	purpose models.CodePurpose,
	code string,
) (RedeemOutcome, error) {
	consumed, err := s.codeRepo.Consume(ctx, email, purpose, code)
	if err != nil {
		return RedeemNotFound, err
	}
	if consumed {
		return RedeemSuccess, nil
	}

	// The consume predicate did not match. Classify why for logging
	// and error mapping without racing a concurrent redeem.
	rec, err := s.codeRepo.Get(ctx, email, purpose)
	if err != nil {
		return RedeemNotFound, err
	}
	switch {
	case rec == nil || rec.Consumed:
		return RedeemNotFound, nil
	case time.Now().After(rec.ExpiresAt):
		return RedeemExpired, nil
	default:
		return RedeemInvalidCode, nil
	}
}

// generateVerificationCode returns a uniformly random 6-digit code.
// The first digit is never zero, so the code survives being treated
// as an integer by clients.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
