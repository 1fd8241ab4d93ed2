package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the signed claim set for both token kinds. Access tokens
// carry the role; refresh tokens deliberately omit it so a stale
// refresh token cannot mint an access token with an outdated role —
// the refresh handler re-derives the role from storage.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Role      string    `json:"role,omitempty"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies the session token pair.
type Issuer struct {
	signer     Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(signer Signer, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{signer: signer, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssuePair mints a short-lived access token and a long-lived refresh
// token for (user, tenant, role).
func (i *Issuer) IssuePair(userID, tenantID uuid.UUID, role string) (access string, refresh string, err error) {
	access, err = i.IssueAccess(userID, tenantID, role)
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	refreshClaims := Claims{
		UserID:    userID,
		TenantID:  tenantID,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	refresh, err = i.signer.Sign(refreshClaims)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// IssueAccess mints a fresh access token.
func (i *Issuer) IssueAccess(userID, tenantID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		TenantID:  tenantID,
		Role:      role,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	return i.signer.Sign(claims)
}

// ParseAccess verifies an access token's signature and expiry and
// rejects tokens of the wrong type.
func (i *Issuer) ParseAccess(tokenString string) (*Claims, error) {
	return i.parse(tokenString, TokenTypeAccess)
}

// ParseRefresh verifies a refresh token's signature and expiry and
// rejects tokens of the wrong type.
func (i *Issuer) ParseRefresh(tokenString string) (*Claims, error) {
	return i.parse(tokenString, TokenTypeRefresh)
}

func (i *Issuer) parse(tokenString, tokenType string) (*Claims, error) {
	claims, err := i.signer.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
