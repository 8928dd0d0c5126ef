package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-manager/internal/core/domain"
	"github.com/taskhub/task-manager/internal/core/ports"
)

// ContextUserKey and ContextTokenKey are the echo context keys under which
// Auth stores the resolved user and the raw bearer token of the request.
const (
	ContextUserKey  = "user"
	ContextTokenKey = "token"
)

// Auth validates the bearer token and injects the resolved user into the
// context. A token must both verify as an HS256 JWT signed with jwtSecret and
// still be present in the user's token list; logging out removes it from the
// list and immediately invalidates it even though the signature stays valid.
//
// Every failure mode yields the same 401 body: {"error":"Please authenticate."}.
func Auth(jwtSecret string, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthenticated()
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthenticated()
			}
			raw := parts[1]

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return unauthenticated()
			}

			userID, _ := claims["_id"].(string)
			if userID == "" {
				return unauthenticated()
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil {
				return unauthenticated()
			}
			if !user.HasToken(raw) {
				return unauthenticated()
			}

			c.Set(ContextUserKey, user)
			c.Set(ContextTokenKey, raw)

			return next(c)
		}
	}
}

func unauthenticated() error {
	return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
}
