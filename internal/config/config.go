package config

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"github.com/talentsift/auth-service/internal/utils"
)

// ProviderCredentials holds the OAuth client credentials for one
// federated provider. A provider with no credentials configured is
// Disabled rather than misconfigured.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
	Disabled     bool
}

// AppleCredentials carries the extra signing material Apple requires:
// the client secret is not a static string but a short-lived ES256 JWT
// minted from the developer key.
type AppleCredentials struct {
	ClientID   string
	TeamID     string
	KeyID      string
	PrivateKey *ecdsa.PrivateKey
	Disabled   bool
}

// S3Config holds the optional object-store settings for avatar uploads.
// When Bucket is empty, image upload is disabled.
type S3Config struct {
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// Config holds all application configuration, including secrets.
type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	FrontendUrl      string
	DBUrl            string

	TokenExpiry            time.Duration
	VerificationCodeLength int
	VerificationCodeExpiry time.Duration

	SendGridAPIKey    string
	SendGridFromEmail string

	RSAPrivateKey *rsa.PrivateKey
	RSAPublicKey  *rsa.PublicKey

	Google ProviderCredentials
	GitHub ProviderCredentials
	Apple  AppleCredentials

	S3 S3Config
}

const (
	OrganizationName = "TalentSift"
	AppName          = "auth-service"

	DefaultTokenExpiry     = 24 * time.Hour
	VerificationCodeLength = 6
	VerificationCodeExpiry = 15 * time.Minute
)

// LoadConfig reads the environment, parses key material and returns a
// *Config. Missing required settings are fatal; optional integrations
// (mail delivery, OAuth providers, object storage) degrade with a log
// line instead.
func LoadConfig() *Config {
	// In local dev a .env file stands in for real environment; in
	// containers the file is absent and this is a no-op.
	if err := godotenv.Load(); err == nil {
		utils.Logger.Debug("Loaded environment from .env file")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	//----------------------------------------------------------------------
	// Required environment variables.
	//----------------------------------------------------------------------
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	appUrl := os.Getenv("APP_URL")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL env var is missing")
	}
	frontendUrl := os.Getenv("FRONTEND_URL")
	if frontendUrl == "" {
		utils.Logger.Fatal("FRONTEND_URL env var is missing")
	}
	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	utils.Logger.Debugf("App can be accessed at: %s", appUrl)

	//----------------------------------------------------------------------
	// RSA key pair for session tokens (base64-wrapped PEM).
	//----------------------------------------------------------------------
	privateKeyBase64 := os.Getenv("RSA_PRIVATE_KEY_BASE64")
	if privateKeyBase64 == "" {
		utils.Logger.Fatal("RSA_PRIVATE_KEY_BASE64 env var is missing")
	}
	privateKeyPEM, err := base64.StdEncoding.DecodeString(privateKeyBase64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to decode base64 private key")
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA private key")
	}

	publicKeyBase64 := os.Getenv("RSA_PUBLIC_KEY_BASE64")
	if publicKeyBase64 == "" {
		utils.Logger.Fatal("RSA_PUBLIC_KEY_BASE64 env var is missing")
	}
	publicKeyPEM, err := base64.StdEncoding.DecodeString(publicKeyBase64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to decode base64 public key")
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	//----------------------------------------------------------------------
	// Token expiry override.
	//----------------------------------------------------------------------
	tokenExpiry := DefaultTokenExpiry
	if raw := os.Getenv("TOKEN_EXPIRY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			utils.Logger.WithError(err).Fatal("TOKEN_EXPIRY is not a valid duration")
		}
		tokenExpiry = d
	}

	//----------------------------------------------------------------------
	// Mail delivery. No API key means codes are logged instead of sent,
	// which is how local dev runs.
	//----------------------------------------------------------------------
	sendGridAPIKey := os.Getenv("SENDGRID_API_KEY")
	sendGridFromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if sendGridAPIKey == "" {
		utils.Logger.Warn("SENDGRID_API_KEY not set; verification codes will be logged, not emailed")
	} else if sendGridFromEmail == "" {
		utils.Logger.Fatal("SENDGRID_FROM_EMAIL env var is missing (required when SENDGRID_API_KEY is set)")
	}

	//----------------------------------------------------------------------
	// OAuth providers.
	//----------------------------------------------------------------------
	google := loadProviderCredentials("GOOGLE")
	github := loadProviderCredentials("GITHUB")
	apple := loadAppleCredentials()

	//----------------------------------------------------------------------
	// Object storage for avatars (optional).
	//----------------------------------------------------------------------
	s3 := S3Config{
		Bucket:       os.Getenv("S3_BUCKET"),
		Region:       os.Getenv("S3_REGION"),
		AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		SecretKey:    os.Getenv("S3_SECRET_KEY"),
		BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
	}
	if s3.Bucket == "" {
		utils.Logger.Warn("S3_BUCKET not set; profile image upload is disabled")
	} else if s3.Region == "" || s3.AccessKey == "" || s3.SecretKey == "" {
		utils.Logger.Fatal("S3_BUCKET is set but S3_REGION, S3_ACCESS_KEY or S3_SECRET_KEY is missing")
	}

	return &Config{
		OrganizationName:       OrganizationName,
		AppName:                AppName,
		AppPort:                appPort,
		AppUrl:                 appUrl,
		FrontendUrl:            frontendUrl,
		DBUrl:                  dbUrl,
		TokenExpiry:            tokenExpiry,
		VerificationCodeLength: VerificationCodeLength,
		VerificationCodeExpiry: VerificationCodeExpiry,
		SendGridAPIKey:         sendGridAPIKey,
		SendGridFromEmail:      sendGridFromEmail,
		RSAPrivateKey:          privateKey,
		RSAPublicKey:           publicKey,
		Google:                 google,
		GitHub:                 github,
		Apple:                  apple,
		S3:                     s3,
	}
}

// loadProviderCredentials reads <PREFIX>_CLIENT_ID / <PREFIX>_CLIENT_SECRET.
// Both unset disables the provider; exactly one set is a config error.
func loadProviderCredentials(prefix string) ProviderCredentials {
	clientID := os.Getenv(prefix + "_CLIENT_ID")
	clientSecret := os.Getenv(prefix + "_CLIENT_SECRET")

	if clientID == "" && clientSecret == "" {
		utils.Logger.Infof("%s OAuth is not configured; provider disabled", prefix)
		return ProviderCredentials{Disabled: true}
	}
	if clientID == "" || clientSecret == "" {
		utils.Logger.Fatalf("%s OAuth is partially configured: both %s_CLIENT_ID and %s_CLIENT_SECRET are required", prefix, prefix, prefix)
	}
	return ProviderCredentials{ClientID: clientID, ClientSecret: clientSecret}
}

func loadAppleCredentials() AppleCredentials {
	clientID := os.Getenv("APPLE_CLIENT_ID")
	teamID := os.Getenv("APPLE_TEAM_ID")
	keyID := os.Getenv("APPLE_KEY_ID")
	keyBase64 := os.Getenv("APPLE_PRIVATE_KEY_BASE64")

	if clientID == "" && teamID == "" && keyID == "" && keyBase64 == "" {
		utils.Logger.Info("APPLE OAuth is not configured; provider disabled")
		return AppleCredentials{Disabled: true}
	}
	if clientID == "" || teamID == "" || keyID == "" || keyBase64 == "" {
		utils.Logger.Fatal("APPLE OAuth is partially configured: APPLE_CLIENT_ID, APPLE_TEAM_ID, APPLE_KEY_ID and APPLE_PRIVATE_KEY_BASE64 are all required")
	}

	keyPEM, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to decode base64 Apple private key")
	}
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for Apple private key")
	}
	keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse Apple private key")
	}
	priv, ok := keyAny.(*ecdsa.PrivateKey)
	if !ok {
		utils.Logger.Fatal("Apple private key is not an ECDSA key")
	}

	return AppleCredentials{
		ClientID:   clientID,
		TeamID:     teamID,
		KeyID:      keyID,
		PrivateKey: priv,
	}
}
