package auth

import (
	"context"
	"time"

	"github.com/drivelink/backoffice/internal/authz"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Credentials is what login needs from an admin_users row.
type Credentials struct {
	AdminID      int64
	Email        string
	PasswordHash string
	IsActive     bool
}

// CredentialStore returns nil, nil when no admin has the email.
type CredentialStore interface {
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	TouchLastLogin(ctx context.Context, adminID int64, at time.Time) error
}

// PrincipalLoader resolves an active admin into the principal used for authorization.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, adminID int64) (*authz.Principal, error)
}

type TokenGenerator interface {
	GenerateAccessToken(adminID int64, email string) (string, error)
	GenerateRefreshToken(adminID int64, email string) (string, error)
	ValidateToken(tokenString, tokenType string) (*Claims, error)
	AccessTTL() time.Duration
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Claims represents JWT token claims
type Claims struct {
	AdminID   int64  `json:"admin_id"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Issuer             string
}
