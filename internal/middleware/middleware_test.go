package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.Use(JWTAuthMiddleware(testSecret))
	r.GET("/me", func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role})
	})
	r.GET("/staff", RequireRole("organizer", "admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := authRouter()

	token := signed(t, jwt.MapClaims{"user_id": "org-1", "role": "organizer", "exp": time.Now().Add(time.Hour).Unix()})
	w := get(r, "/me", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"org-1","role":"organizer"}`, w.Body.String())

	sub := signed(t, jwt.MapClaims{"sub": "org-2", "exp": time.Now().Add(time.Hour).Unix()})
	w = get(r, "/me", sub)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "org-2")

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)

	expired := signed(t, jwt.MapClaims{"user_id": "org-1", "exp": time.Now().Add(-time.Hour).Unix()})
	w = get(r, "/me", expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired.")

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "x"}).SignedString([]byte("other"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", other).Code)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", none).Code)
}

func TestRequireRole(t *testing.T) {
	r := authRouter()
	organizer := signed(t, jwt.MapClaims{"user_id": "org-1", "role": "Organizer"})
	attendee := signed(t, jwt.MapClaims{"user_id": "att-1", "role": "attendee"})

	assert.Equal(t, http.StatusNoContent, get(r, "/staff", organizer).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/staff", attendee).Code)
}

func TestRequestLoggerRedactsSecrets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.POST("/redeem", func(c *gin.Context) {
		var body map[string]interface{}
		require.NoError(t, c.ShouldBindJSON(&body))
		assert.Equal(t, "482913", body["pin"], "handler still sees the body")
		c.Status(http.StatusOK)
	})

	body := `{"benefit":"Lunch","pin":"482913","scan":{"qr_payload":"{\"pinCode\":\"482913\"}"}}`
	req := httptest.NewRequest(http.MethodPost, "/redeem", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http request completed", entry.Message)

	logged := entry.ContextMap()["request_body"].(map[string]interface{})
	assert.Equal(t, "Lunch", logged["benefit"])
	assert.Equal(t, "***", logged["pin"])
	assert.Equal(t, "***", logged["scan"].(map[string]interface{})["qr_payload"])
}
