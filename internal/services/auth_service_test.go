package services

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"restobill/internal/common"
	"restobill/internal/logging"
)

const (
	idpKeyID    = "panel-key"
	idpIssuer   = "https://id.example.com/"
	idpAudience = "restobill-panel"
)

type AuthServiceTestSuite struct {
	suite.Suite
	key     *rsa.PrivateKey
	service AuthService
}

func (s *AuthServiceTestSuite) SetupSuite() {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	s.Require().NoError(err)
	s.key = key

	jwks := keyfunc.NewGiven(map[string]keyfunc.GivenKey{
		idpKeyID: keyfunc.NewGivenRSA(&key.PublicKey, keyfunc.GivenKeyOptions{Algorithm: jwt.SigningMethodRS256.Alg()}),
	})
	s.service = &authService{
		jwtSecret: []byte("tenant-secret"),
		tokenTTL:  time.Hour,
		jwks:      jwks,
		idp:       IdentityProvider{Issuer: idpIssuer, Audience: idpAudience},
		logger:    logging.Discard().WithField("component", "auth_service"),
	}
}

func (s *AuthServiceTestSuite) idpToken(mutate func(*TokenClaims)) string {
	claims := &TokenClaims{
		Role: common.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    idpIssuer,
			Subject:   "operator-7",
			Audience:  jwt.ClaimStrings{idpAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	if mutate != nil {
		mutate(claims)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = idpKeyID
	signed, err := token.SignedString(s.key)
	s.Require().NoError(err)
	return signed
}

func (s *AuthServiceTestSuite) TestIdentityProviderToken_DropsOrganization() {
	claims, err := s.service.ParseToken(s.idpToken(func(c *TokenClaims) {
		c.OrganizationID = "org-of-someone-else"
	}))
	s.Require().NoError(err)
	s.Equal("operator-7", claims.UserID)
	s.Equal(common.RoleSuperAdmin, claims.Role)
	s.Empty(claims.OrganizationID)
}

func (s *AuthServiceTestSuite) TestIdentityProviderToken_Rejections() {
	tests := []struct {
		name   string
		mutate func(*TokenClaims)
	}{
		{"wrong issuer", func(c *TokenClaims) { c.Issuer = "https://evil.example.com/" }},
		{"wrong audience", func(c *TokenClaims) { c.Audience = jwt.ClaimStrings{"another-app"} }},
		{"missing expiry", func(c *TokenClaims) { c.ExpiresAt = nil }},
		{"expired", func(c *TokenClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) }},
		{"not a super admin", func(c *TokenClaims) { c.Role = common.RoleAdmin }},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.ParseToken(s.idpToken(tt.mutate))
			s.ErrorIs(err, common.ErrUnauthorized)
		})
	}
}

func (s *AuthServiceTestSuite) TestIdentityProviderToken_SymmetricAlgorithmRejected() {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &TokenClaims{
		Role: common.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    idpIssuer,
			Audience:  jwt.ClaimStrings{idpAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token.Header["kid"] = idpKeyID
	signed, err := token.SignedString([]byte("guessed-secret"))
	s.Require().NoError(err)

	_, err = s.service.ParseToken(signed)
	s.ErrorIs(err, common.ErrUnauthorized)
}

func (s *AuthServiceTestSuite) TestLocalTokenKeepsOrganization() {
	issued, err := s.service.IssueToken("user-1", "org-1", common.RoleAdmin)
	s.Require().NoError(err)

	claims, err := s.service.ParseToken(issued.AccessToken)
	s.Require().NoError(err)
	s.Equal("org-1", claims.OrganizationID)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func TestNewAuthService_WithoutIdentityProvider(t *testing.T) {
	svc, err := NewAuthService("secret", time.Hour, IdentityProvider{}, logging.Discard())
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
