package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/farellandr/eventpass/internal/helpers"
	"github.com/farellandr/eventpass/internal/services"
)

// JWTAuthMiddleware verifies HS256 bearer tokens issued by the identity
// provider and stores user_id and role in the context.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authorization token required.")
			return
		}
		if len(key) == 0 {
			helpers.RespondWithError(c, http.StatusInternalServerError, "JWT_SECRET not configured.")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				helpers.RespondWithError(c, http.StatusUnauthorized, "Token expired.")
				return
			}
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid token.")
			return
		}

		userID := claimString(claims, "user_id")
		if userID == "" {
			userID, _ = claims.GetSubject()
		}
		if userID == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
			return
		}

		c.Set("user_id", userID)
		c.Set("role", claimString(claims, "role"))
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, r := range roles {
			if strings.EqualFold(role, r) {
				c.Next()
				return
			}
		}
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to access this resource.")
	}
}

// GetActor returns the authenticated caller set by JWTAuthMiddleware.
func GetActor(c *gin.Context) services.Actor {
	return services.Actor{UserID: c.GetString("user_id"), Role: c.GetString("role")}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) >= 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	// browsers cannot set headers on a websocket handshake
	if c.IsWebsocket() {
		return c.Query("access_token")
	}
	return ""
}

func claimString(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
