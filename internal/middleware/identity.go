package middleware

import (
	"strings"

	"prompt-sharing-service/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Identity resolves the calling user. The caller-supplied identity is trusted
// input: it either arrives as signed JWT claims (user_id, user_name) or as
// plain X-User-Id / X-User-Name headers from an upstream that already
// authenticated the user. When required is false, unidentified callers
// proceed as "anonymous" (share-link consumption only needs the token).
func Identity(jwtSecret string, required bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var userID, userName string

		authHeader := ctx.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			claims := jwt.MapClaims{}
			parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !parsed.Valid {
				ctx.Error(errors.Unauthorized("Invalid identity token!", err))
				ctx.Abort()
				return
			}

			if v, ok := claims["user_id"].(string); ok {
				userID = v
			}
			if v, ok := claims["user_name"].(string); ok {
				userName = v
			}
		}

		if userID == "" {
			userID = ctx.GetHeader("X-User-Id")
			userName = ctx.GetHeader("X-User-Name")
		}

		if userID == "" {
			if required {
				ctx.Error(errors.Unauthorized("Caller identity is not found!", nil))
				ctx.Abort()
				return
			}
			userID = "anonymous"
		}
		if userName == "" {
			userName = userID
		}

		ctx.Set("user_id", userID)
		ctx.Set("user_name", userName)
		ctx.Next()
	}
}

// InternalAuth guards internal routes with a shared secret.
func InternalAuth(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := strings.TrimPrefix(
			ctx.GetHeader("Authorization"),
			"Bearer ",
		)

		if token != secret {
			ctx.Error(errors.Unauthorized("Unauthorized internal call!", nil))
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}
