package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func identityRouter(required bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/whoami", Identity(testSecret, required), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		userName, _ := c.Get("user_name")
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "user_name": userName})
	})
	return router
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestIdentity_FromJWT(t *testing.T) {
	router := identityRouter(true)

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id":   "alice",
		"user_name": "Alice",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"alice"`)
	assert.Contains(t, w.Body.String(), `"user_name":"Alice"`)
}

func TestIdentity_BadSignature(t *testing.T) {
	router := identityRouter(true)

	token := signToken(t, "wrong-secret", jwt.MapClaims{"user_id": "alice"})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentity_FromHeaders(t *testing.T) {
	router := identityRouter(true)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-User-Id", "bob")
	req.Header.Set("X-User-Name", "Bob")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"bob"`)
}

func TestIdentity_MissingAndRequired(t *testing.T) {
	router := identityRouter(true)

	req := httptest.NewRequest("GET", "/whoami", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentity_MissingAndOptional(t *testing.T) {
	router := identityRouter(false)

	req := httptest.NewRequest("GET", "/whoami", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"anonymous"`)
}
