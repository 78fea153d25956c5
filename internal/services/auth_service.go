package services

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"restobill/internal/common"
)

const tokenIssuer = "restobill-auth"

// AuthService issues and verifies access tokens and hashes passwords
type AuthService interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
	IssueToken(userID, organizationID, role string) (*TokenResponse, error)
	ParseToken(tokenString string) (*TokenClaims, error)
	Close()
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IdentityProvider describes an external issuer of super-admin tokens.
// Issuer and Audience are enforced when set.
type IdentityProvider struct {
	JWKSURL  string
	Issuer   string
	Audience string
}

// asymmetric algorithms accepted from the identity provider
var identityProviderMethods = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512", "ES256", "ES384", "ES512", "EdDSA"}

type authService struct {
	jwtSecret []byte
	tokenTTL  time.Duration
	jwks      *keyfunc.JWKS
	idp       IdentityProvider
	logger    *logrus.Entry
}

// NewAuthService creates the token service. When idp.JWKSURL is set, super-admin
// tokens signed by that identity provider are accepted as well.
func NewAuthService(jwtSecret string, tokenTTL time.Duration, idp IdentityProvider, logger *logrus.Logger) (AuthService, error) {
	s := &authService{
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		idp:       idp,
		logger:    logger.WithField("component", "auth_service"),
	}
	if idp.JWKSURL != "" {
		jwks, err := keyfunc.Get(idp.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				s.logger.WithError(err).Warn("failed to refresh JWKS")
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load JWKS: %w", err)
		}
		s.jwks = jwks
	}
	return s, nil
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *authService) IssueToken(userID, organizationID, role string) (*TokenResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	claims := TokenClaims{
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}
	return &TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		ExpiresAt:   expiresAt.UTC(),
	}, nil
}

// ParseToken verifies locally issued HS256 tokens, then falls back to the
// identity provider's key set for super-admin tokens.
func (s *authService) ParseToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err == nil {
		return claims, nil
	}
	if s.jwks == nil {
		return nil, fmt.Errorf("invalid token: %w", common.ErrUnauthorized)
	}

	external := &TokenClaims{}
	if _, jwksErr := jwt.ParseWithClaims(tokenString, external, s.jwks.Keyfunc, s.identityProviderOptions()...); jwksErr != nil {
		return nil, fmt.Errorf("invalid token: %w", common.ErrUnauthorized)
	}
	if external.Role != common.RoleSuperAdmin {
		return nil, fmt.Errorf("identity provider token is not a super admin: %w", common.ErrUnauthorized)
	}
	if external.UserID == "" {
		external.UserID = external.Subject
	}
	// operators never act inside a tenant
	external.OrganizationID = ""
	return external, nil
}

func (s *authService) identityProviderOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(identityProviderMethods),
		jwt.WithExpirationRequired(),
	}
	if s.idp.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.idp.Issuer))
	}
	if s.idp.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.idp.Audience))
	}
	return opts
}

func (s *authService) Close() {
	if s.jwks != nil {
		s.jwks.EndBackground()
	}
}
