package dtos

import (
	"time"

	"github.com/talentsift/auth-service/internal/models"
)

// UserPayload is the account shape returned to clients. Password
// hashes and provider identifiers never leave the service.
type UserPayload struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Provider      string    `json:"provider"`
	Role          string    `json:"role"`
	Tier          string    `json:"tier"`
	EmailVerified bool      `json:"email_verified"`
	Image         *string   `json:"image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewUserPayload(u *models.User) UserPayload {
	return UserPayload{
		ID:            u.ID.String(),
		Email:         u.Email,
		Name:          u.Name,
		Provider:      string(u.Provider),
		Role:          string(u.Role),
		Tier:          string(u.Tier),
		EmailVerified: u.EmailVerified,
		Image:         u.Image,
		CreatedAt:     u.CreatedAt,
	}
}

type QuotaResponse struct {
	Tier      string   `json:"tier"`
	Limit     int      `json:"limit"`
	Used      int      `json:"used"`
	Remaining int      `json:"remaining"`
	Unlimited bool     `json:"unlimited"`
	Features  []string `json:"features"`
}

type UploadImageResponse struct {
	ImageURL string `json:"image_url"`
}
