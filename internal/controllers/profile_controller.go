package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/talentsift/auth-service/internal/dtos"
	"github.com/talentsift/auth-service/internal/images"
	"github.com/talentsift/auth-service/internal/middleware"
	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/repositories"
	"github.com/talentsift/auth-service/internal/services"
	"github.com/talentsift/auth-service/internal/storage"
	"github.com/talentsift/auth-service/internal/utils"
)

type ProfileController struct {
	userRepo     repositories.UserRepository
	quotaService services.QuotaService
	processor    *images.Processor
	avatarStore  storage.AvatarStore
}

func NewProfileController(
	userRepo repositories.UserRepository,
	quotaService services.QuotaService,
	processor *images.Processor,
	avatarStore storage.AvatarStore,
) *ProfileController {
	return &ProfileController{
		userRepo:     userRepo,
		quotaService: quotaService,
		processor:    processor,
		avatarStore:  avatarStore,
	}
}

// currentUser loads the account behind the verified session, or writes
// the error response and returns nil.
func (c *ProfileController) currentUser(w http.ResponseWriter, r *http.Request) *models.User {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing session", nil,
		)
		return nil
	}

	user, err := c.userRepo.GetByID(r.Context(), session.AccountID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load account", nil, err,
		)
		return nil
	}
	if user == nil {
		// Token outlived the account.
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Account no longer exists", nil,
		)
		return nil
	}
	return user
}

// ---------------------------------------------------------------------
// GET /me
// ---------------------------------------------------------------------

func (c *ProfileController) Me(w http.ResponseWriter, r *http.Request) {
	user := c.currentUser(w, r)
	if user == nil {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewUserPayload(user))
}

// ---------------------------------------------------------------------
// GET /me/quota
// ---------------------------------------------------------------------

func (c *ProfileController) Quota(w http.ResponseWriter, r *http.Request) {
	user := c.currentUser(w, r)
	if user == nil {
		return
	}

	limit := c.quotaService.LimitFor(user)
	resp := dtos.QuotaResponse{
		Tier:      string(user.Tier),
		Limit:     limit,
		Used:      user.AnalysesThisMonth,
		Remaining: c.quotaService.Remaining(user),
		Unlimited: limit == services.UnlimitedAnalyses,
		Features:  c.quotaService.FeaturesFor(user),
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------
// POST /me/image
// ---------------------------------------------------------------------

func (c *ProfileController) UploadImage(w http.ResponseWriter, r *http.Request) {
	user := c.currentUser(w, r)
	if user == nil {
		return
	}

	if c.avatarStore == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "Image upload is not enabled", nil,
		)
		return
	}

	if err := r.ParseMultipartForm(images.MaxUploadBytes); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Expected multipart form with an image field", nil, err,
		)
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Missing image field", nil, err,
		)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, images.MaxUploadBytes+1))
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to read upload", nil, err,
		)
		return
	}

	normalized, err := c.processor.Normalize(data)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidImage) {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation, "Image must be a JPEG or PNG under 5MB", nil, err,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to process image", nil, err,
		)
		return
	}

	key := fmt.Sprintf("avatars/%s.jpg", user.ID)
	imageURL, err := c.avatarStore.Put(r.Context(), key, normalized, "image/jpeg")
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Failed to store image", nil, err,
		)
		return
	}

	if err := c.userRepo.Update(r.Context(), user.ID, repositories.UserUpdate{Image: &imageURL}); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to save image URL", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.UploadImageResponse{ImageURL: imageURL})
}
