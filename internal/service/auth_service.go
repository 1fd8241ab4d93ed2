package service

import (
	"context"
	"errors"
	"strings"

	"account-service/internal/model"
	"account-service/internal/store"
	"account-service/pkg/jwtutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service-level error taxonomy. Handlers map these onto HTTP statuses;
// nothing below this layer leaks a raw storage error to the caller.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInternal           = errors.New("internal error")
)

// RegisterRequest is the registration input shape.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"required"`
	CompanyName string `json:"companyName" validate:"required"`
	Country     string `json:"country" validate:"required,len=2"`
	Currency    string `json:"currency" validate:"required,len=3"`
}

// LoginRequest is the login input shape.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserSummary is the user part of an auth response.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

// TenantSummary is the tenant part of an auth response.
type TenantSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User         UserSummary   `json:"user"`
	Tenant       TenantSummary `json:"tenant"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

// AuthService orchestrates account provisioning and authentication.
// All collaborators are injected at construction.
type AuthService struct {
	store      store.CredentialStore
	issuer     *jwtutil.Issuer
	bcryptCost int
	log        *zap.Logger
}

func NewAuthService(credStore store.CredentialStore, issuer *jwtutil.Issuer, bcryptCost int, log *zap.Logger) *AuthService {
	return &AuthService{
		store:      credStore,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Register provisions a new tenant with its admin user and default
// company as one atomic unit, then issues a token pair.
//
// The duplicate pre-check queries by email alone, across all tenants.
// That is stricter than the per-tenant uniqueness constraint and is
// kept deliberately: an email registered under any tenant cannot open
// a second one. The pre-check is racy by nature; the unique index is
// the real guard, so a conflict at commit time is translated to the
// same ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		s.log.Error("duplicate check failed", zap.Error(err))
		return nil, ErrInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.log.Error("password hashing failed", zap.Error(err))
		return nil, ErrInternal
	}

	tenant := &model.Tenant{
		ID:       uuid.New(),
		Name:     req.CompanyName,
		Country:  strings.ToUpper(req.Country),
		Currency: strings.ToUpper(req.Currency),
		Plan:     model.PlanStarter,
		Status:   model.TenantStatusActive,
	}
	user := &model.User{
		ID:       uuid.New(),
		TenantID: tenant.ID,
		Email:    email,
		Password: string(hash),
		Name:     req.Name,
		Role:     model.RoleTenantAdmin,
	}
	company := &model.Company{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Name:      req.CompanyName,
		Currency:  tenant.Currency,
		IsDefault: true,
	}

	if err := s.store.Provision(ctx, tenant, user, company); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		s.log.Error("tenant provisioning failed", zap.Error(err), zap.String("tenant_name", tenant.Name))
		return nil, ErrInternal
	}

	access, refresh, err := s.issuer.IssuePair(user.ID, tenant.ID, user.Role)
	if err != nil {
		s.log.Error("token issuance failed", zap.Error(err))
		return nil, ErrInternal
	}

	s.log.Info("tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("tenant_name", tenant.Name),
		zap.String("email", user.Email))

	return &AuthResult{
		User:         summarizeUser(user),
		Tenant:       TenantSummary{ID: tenant.ID, Name: tenant.Name},
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Login verifies credentials and issues a token pair. Unknown email
// and wrong password both return ErrInvalidCredentials so the
// responses are indistinguishable.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.log.Error("user lookup failed", zap.Error(err))
		return nil, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tenant, err := s.store.FindTenantByID(ctx, user.TenantID)
	if err != nil {
		s.log.Error("tenant lookup failed", zap.Error(err), zap.String("tenant_id", user.TenantID.String()))
		return nil, ErrInternal
	}

	access, refresh, err := s.issuer.IssuePair(user.ID, tenant.ID, user.Role)
	if err != nil {
		s.log.Error("token issuance failed", zap.Error(err))
		return nil, ErrInternal
	}

	s.log.Info("user logged in",
		zap.String("email", user.Email),
		zap.String("tenant_id", tenant.ID.String()))

	return &AuthResult{
		User:         summarizeUser(user),
		Tenant:       TenantSummary{ID: tenant.ID, Name: tenant.Name},
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh mints a new access token from a valid refresh token. The
// role is re-fetched from the credential store rather than trusted
// from the refresh token's claims, so a role change takes effect at
// the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	user, err := s.store.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidToken
		}
		s.log.Error("user lookup failed during refresh", zap.Error(err))
		return "", ErrInternal
	}

	access, err := s.issuer.IssueAccess(user.ID, user.TenantID, user.Role)
	if err != nil {
		s.log.Error("token issuance failed", zap.Error(err))
		return "", ErrInternal
	}
	return access, nil
}

// Me returns the user/tenant summary for an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserSummary, *TenantSummary, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		s.log.Error("user lookup failed", zap.Error(err))
		return nil, nil, ErrInternal
	}

	tenant, err := s.store.FindTenantByID(ctx, user.TenantID)
	if err != nil {
		s.log.Error("tenant lookup failed", zap.Error(err))
		return nil, nil, ErrInternal
	}

	userSummary := summarizeUser(user)
	tenantSummary := TenantSummary{ID: tenant.ID, Name: tenant.Name}
	return &userSummary, &tenantSummary, nil
}

func summarizeUser(u *model.User) UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// normalizeEmail lowercases and trims so the same address never shows
// up as two distinct accounts.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
