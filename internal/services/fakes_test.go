package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/providers"
	"github.com/talentsift/auth-service/internal/repositories"
	"github.com/talentsift/auth-service/internal/utils"
)

// --- in-memory user repository ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User

	// createErrs is drained first by Create, letting tests inject
	// conflicts that clear after n attempts.
	createErrs []error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}

	for _, existing := range f.users {
		if existing.Email == u.Email {
			return utils.ErrEmailExists
		}
		if u.Provider != models.ProviderEmail &&
			existing.Provider == u.Provider &&
			existing.ProviderID != nil && u.ProviderID != nil &&
			*existing.ProviderID == *u.ProviderID {
			return utils.ErrProviderIdentityExists
		}
	}

	clone := *u
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByProviderIdentity(ctx context.Context, provider models.AuthProvider, providerID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Provider == provider && u.ProviderID != nil && *u.ProviderID == providerID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id uuid.UUID, upd repositories.UserUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = upd.PasswordHash
	}
	if upd.Provider != nil {
		u.Provider = *upd.Provider
	}
	if upd.ProviderID != nil {
		u.ProviderID = upd.ProviderID
	}
	if upd.EmailVerified != nil {
		u.EmailVerified = *upd.EmailVerified
	}
	if upd.Image != nil {
		u.Image = upd.Image
	}
	u.UpdatedAt = time.Now()
	return nil
}

// --- in-memory verification code repository ---

type codeKey struct {
	email   string
	purpose models.CodePurpose
}

type fakeCodeRepo struct {
	mu    sync.Mutex
	codes map[codeKey]*models.VerificationCode
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: map[codeKey]*models.VerificationCode{}}
}

func (f *fakeCodeRepo) Upsert(ctx context.Context, email string, purpose models.CodePurpose, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[codeKey{email, purpose}] = &models.VerificationCode{
		ID:        uuid.New(),
		Email:     email,
		Purpose:   purpose,
		Code:      code,
		IssuedAt:  time.Now(),
		ExpiresAt: expiresAt,
	}
	return nil
}

func (f *fakeCodeRepo) Get(ctx context.Context, email string, purpose models.CodePurpose) (*models.VerificationCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.codes[codeKey{email, purpose}]; ok {
		clone := *rec
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeCodeRepo) Consume(ctx context.Context, email string, purpose models.CodePurpose, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.codes[codeKey{email, purpose}]
	if !ok || rec.Consumed || rec.Code != code || time.Now().After(rec.ExpiresAt) {
		return false, nil
	}
	rec.Consumed = true
	return true, nil
}

func (f *fakeCodeRepo) CleanupDead(ctx context.Context, expiredFor time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	cutoff := time.Now().Add(-expiredFor)
	for k, rec := range f.codes {
		if rec.Consumed || rec.ExpiresAt.Before(cutoff) {
			delete(f.codes, k)
			removed++
		}
	}
	return removed, nil
}

// expire backdates the stored code so redemption sees it as expired.
func (f *fakeCodeRepo) expire(email string, purpose models.CodePurpose) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.codes[codeKey{email, purpose}]; ok {
		rec.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

// --- notification channel recorder ---

type fakeChannel struct {
	mu         sync.Mutex
	verifyCode map[string]string
	resetCode  map[string]string
	failNext   bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		verifyCode: map[string]string{},
		resetCode:  map[string]string{},
	}
}

func (f *fakeChannel) SendVerificationCode(ctx context.Context, email, name, code string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return false
	}
	f.verifyCode[email] = code
	return true
}

func (f *fakeChannel) SendPasswordResetCode(ctx context.Context, email, code string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return false
	}
	f.resetCode[email] = code
	return true
}

func (f *fakeChannel) lastVerifyCode(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCode[email]
}

func (f *fakeChannel) lastResetCode(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resetCode[email]
}

// --- fake OAuth provider ---

type fakeProvider struct {
	name        models.AuthProvider
	profile     *providers.Profile
	exchangeErr error
	profileErr  error
}

func (f *fakeProvider) Name() models.AuthProvider { return f.name }

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://example.com/authorize?state=" + state
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "fake-access-token"}, nil
}

func (f *fakeProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*providers.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	clone := *f.profile
	return &clone, nil
}
