package services

import (
	"github.com/talentsift/auth-service/internal/models"
)

// UnlimitedAnalyses marks a tier with no monthly analysis cap.
const UnlimitedAnalyses = -1

var tierAnalysisLimits = map[models.Tier]int{
	models.TierGuest:     5,
	models.TierPro:       UnlimitedAnalyses,
	models.TierRecruiter: UnlimitedAnalyses,
}

var tierFeatures = map[models.Tier][]string{
	models.TierGuest: {
		"resume_analysis",
		"ats_score",
	},
	models.TierPro: {
		"resume_analysis",
		"ats_score",
		"language_detection",
		"skills_extraction",
		"profile_analysis",
	},
	models.TierRecruiter: {
		"resume_analysis",
		"ats_score",
		"language_detection",
		"skills_extraction",
		"profile_analysis",
		"bulk_screening",
		"candidate_ranking",
	},
}

// ---------------------------------------------------------------------
// QuotaService interface
// ---------------------------------------------------------------------

// QuotaService answers what an account may still do this month.
// A per-account override beats the tier table when present.
type QuotaService interface {
	// LimitFor returns the monthly analysis cap, UnlimitedAnalyses
	// when there is none.
	LimitFor(user *models.User) int

	// Remaining returns how many analyses are left this month,
	// UnlimitedAnalyses when uncapped. Never negative.
	Remaining(user *models.User) int

	// FeaturesFor lists the feature flags the account's tier unlocks.
	FeaturesFor(user *models.User) []string
}

type quotaService struct{}

func NewQuotaService() QuotaService {
	return &quotaService{}
}

func (s *quotaService) LimitFor(user *models.User) int {
	if user.AnalysesLimitOverride != nil {
		return *user.AnalysesLimitOverride
	}
	if limit, ok := tierAnalysisLimits[user.Tier]; ok {
		return limit
	}
	return tierAnalysisLimits[models.TierGuest]
}

func (s *quotaService) Remaining(user *models.User) int {
	limit := s.LimitFor(user)
	if limit == UnlimitedAnalyses {
		return UnlimitedAnalyses
	}
	remaining := limit - user.AnalysesThisMonth
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *quotaService) FeaturesFor(user *models.User) []string {
	if features, ok := tierFeatures[user.Tier]; ok {
		return features
	}
	return tierFeatures[models.TierGuest]
}
