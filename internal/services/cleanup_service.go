package services

import (
	"context"
	"time"

	"github.com/talentsift/auth-service/internal/repositories"
	"github.com/talentsift/auth-service/internal/utils"
)

// Expired rows are kept around for a while so a late redemption
// attempt still classifies as expired rather than not found.
const expiredCodeRetention = 24 * time.Hour

// CleanupService purges dead verification codes. It runs from the
// housekeeping binary, never inside the serving process.
type CleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type cleanupService struct {
	codeRepo repositories.VerificationCodeRepository
}

func NewCleanupService(codeRepo repositories.VerificationCodeRepository) CleanupService {
	return &cleanupService{codeRepo: codeRepo}
}

func (s *cleanupService) CleanupDaily(ctx context.Context) error {
	removed, err := s.codeRepo.CleanupDead(ctx, expiredCodeRetention)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup verification_codes")
		return err
	}

	utils.Logger.Infof("Daily verification-codes cleanup completed; removed %d rows", removed)
	return nil
}
