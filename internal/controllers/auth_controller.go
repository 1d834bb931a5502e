package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/talentsift/auth-service/internal/dtos"
	"github.com/talentsift/auth-service/internal/services"
	"github.com/talentsift/auth-service/internal/utils"
)

type AuthController struct {
	authService services.AuthService
}

func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

var validate = validator.New()

// ---------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid registration data", nil, err,
		)
		return
	}

	user, err := c.authService.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, utils.ErrEmailExists) {
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeConflict, "An account with this email already exists", nil,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to register account", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewUserPayload(user))
}

// ---------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Email and password are required", nil, err,
		)
		return
	}

	user, token, err := c.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCredentials):
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Invalid email or password", nil,
			)
		case errors.Is(err, utils.ErrEmailNotVerified):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodeEmailNotVerified, "Please verify your email before logging in", nil,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to log in", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.LoginResponse{
		User:        dtos.NewUserPayload(user),
		AccessToken: token,
	})
}

// ---------------------------------------------------------------------
// VerifyEmail
// ---------------------------------------------------------------------

func (c *AuthController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dtos.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Email and a 6-digit code are required", nil, err,
		)
		return
	}

	if err := c.authService.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		if errors.Is(err, utils.ErrInvalidCode) {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidCode, "Invalid or expired verification code", nil,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to verify email", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Email verified"})
}

// ---------------------------------------------------------------------
// ResendVerificationCode
// ---------------------------------------------------------------------

func (c *AuthController) ResendVerificationCode(w http.ResponseWriter, r *http.Request) {
	var req dtos.ResendVerificationCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid email format", nil, err,
		)
		return
	}

	if err := c.authService.ResendVerificationCode(r.Context(), req.Email); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to send verification code", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "If the account exists, a verification code has been sent"})
}

// ---------------------------------------------------------------------
// ForgotPassword / ResetPassword
// ---------------------------------------------------------------------

func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dtos.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid email format", nil, err,
		)
		return
	}

	if err := c.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to process password reset request", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "If the account exists, a password reset code has been sent"})
}

func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dtos.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Email, code and a new password of at least 8 characters are required", nil, err,
		)
		return
	}

	if err := c.authService.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		if errors.Is(err, utils.ErrInvalidCode) {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidCode, "Invalid or expired reset code", nil,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to reset password", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Password has been reset"})
}
