package middleware

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"restobill/internal/common"
	"restobill/internal/services"
)

// ClaimsContextKey is where the verified claims are stored on the echo context
const ClaimsContextKey = "claims"

// TokenParser is the part of the auth service the middleware needs
type TokenParser interface {
	ParseToken(tokenString string) (*services.TokenClaims, error)
}

// JWTMiddleware verifies the bearer token and puts the caller identity on the
// request context. Browsers opening a websocket pass the token as ?token=.
func JWTMiddleware(parser TokenParser) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ,query:token",
		ContextKey:  ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return parser.ParseToken(auth)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(ClaimsContextKey).(*services.TokenClaims)
			if !ok {
				return
			}
			ctx := common.WithIdentity(c.Request().Context(), claims.UserID, claims.OrganizationID, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, echojwt.ErrJWTMissing) {
				return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Missing token", nil))
			}
			return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Invalid or expired token", nil))
		},
	})
}

// ClaimsFromContext returns the verified claims of the current request
func ClaimsFromContext(c echo.Context) (*services.TokenClaims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*services.TokenClaims)
	return claims, ok
}
