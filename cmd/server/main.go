package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/talentsift/auth-service/internal/app"
	"github.com/talentsift/auth-service/internal/config"
	"github.com/talentsift/auth-service/internal/controllers"
	"github.com/talentsift/auth-service/internal/images"
	"github.com/talentsift/auth-service/internal/middleware"
	"github.com/talentsift/auth-service/internal/notify"
	"github.com/talentsift/auth-service/internal/providers"
	"github.com/talentsift/auth-service/internal/repositories"
	"github.com/talentsift/auth-service/internal/services"
	"github.com/talentsift/auth-service/internal/storage"
	"github.com/talentsift/auth-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	userRepo := repositories.NewUserRepository(application.DB)
	codeRepo := repositories.NewVerificationCodeRepository(application.DB)

	//----------------------------------------------------------------------
	// Notification channel
	//----------------------------------------------------------------------
	var channel notify.Channel
	if cfg.SendGridAPIKey != "" {
		channel = notify.NewSendGridChannel(cfg.SendGridAPIKey, cfg.OrganizationName, cfg.SendGridFromEmail)
	} else {
		channel = notify.NewLogChannel()
	}

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	jwtService := services.NewJWTService(cfg)
	verificationService := services.NewVerificationService(codeRepo, cfg.VerificationCodeExpiry)
	authService := services.NewAuthService(userRepo, verificationService, jwtService, channel)

	registry := providers.NewRegistry(cfg)
	oauthService := services.NewOAuthService(registry, userRepo, jwtService)

	quotaService := services.NewQuotaService()

	var avatarStore storage.AvatarStore
	if cfg.S3.Bucket != "" {
		avatarStore, err = storage.NewS3AvatarStore(context.Background(), cfg.S3)
		if err != nil {
			utils.Logger.Fatal("Failed to initialize avatar store:", err)
		}
	}

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	authController := controllers.NewAuthController(authService)
	oauthController := controllers.NewOAuthController(oauthService, cfg)
	profileController := controllers.NewProfileController(userRepo, quotaService, images.NewProcessor(), avatarStore)
	healthController := controllers.NewHealthController(application)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()

	// Health
	router.HandleFunc("/health", healthController.HealthCheckHandler).Methods("GET")

	// /auth/v1
	authRouter := router.PathPrefix("/auth").Subrouter()
	v1Router := authRouter.PathPrefix("/v1").Subrouter()

	v1Router.HandleFunc("/register", authController.Register).Methods("POST")
	v1Router.HandleFunc("/login", authController.Login).Methods("POST")
	v1Router.HandleFunc("/verify_email", authController.VerifyEmail).Methods("POST")
	v1Router.HandleFunc("/resend_verification_code", authController.ResendVerificationCode).Methods("POST")
	v1Router.HandleFunc("/forgot_password", authController.ForgotPassword).Methods("POST")
	v1Router.HandleFunc("/reset_password", authController.ResetPassword).Methods("POST")

	// OAuth redirect legs
	v1Router.HandleFunc("/oauth/{provider}/login", oauthController.Login).Methods("GET")
	v1Router.HandleFunc("/oauth/{provider}/callback", oauthController.Callback).Methods("GET")

	// Protected endpoints require a valid token
	protected := v1Router.PathPrefix("/me").Subrouter()
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.HandleFunc("", profileController.Me).Methods("GET")
	protected.HandleFunc("/quota", profileController.Quota).Methods("GET")
	protected.HandleFunc("/image", profileController.UploadImage).Methods("POST")

	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendUrl, cfg.AppUrl},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
