package middleware

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const ownerIDContextKey = "ownerID"

// JWTAuth validates HS256 bearer tokens and resolves the token subject into
// the owner ID for downstream handlers. Token issuance happens outside this
// service.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorizedError(c, "Authorization header required")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthorizedError(c, "Authorization header format must be Bearer {token}")
			}

			token, err := jwt.ParseWithClaims(parts[1], &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "Token has expired"
				}
				log.Debug().Err(err).Msg("token validation failed")
				return unauthorizedError(c, msg)
			}

			claims, ok := token.Claims.(*jwt.RegisteredClaims)
			if !ok || !token.Valid {
				return unauthorizedError(c, "Invalid token")
			}

			ownerID, err := uuid.Parse(claims.Subject)
			if err != nil {
				log.Warn().Str("subject", claims.Subject).Msg("token subject is not a valid owner id")
				return unauthorizedError(c, "Invalid token claims")
			}

			c.Set(ownerIDContextKey, ownerID)
			return next(c)
		}
	}
}

// OwnerIDFromContext returns the authenticated owner resolved by JWTAuth.
func OwnerIDFromContext(c echo.Context) (uuid.UUID, bool) {
	ownerID, ok := c.Get(ownerIDContextKey).(uuid.UUID)
	return ownerID, ok
}

// SetOwnerID stores the owner in the request context; exported for tests.
func SetOwnerID(c echo.Context, ownerID uuid.UUID) {
	c.Set(ownerIDContextKey, ownerID)
}
