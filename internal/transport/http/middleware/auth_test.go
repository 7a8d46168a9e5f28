package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carematch/carematch/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "auth-middleware-secret-32-chars!"

func init() {
	gin.SetMode(gin.TestMode)
}

// protectedEngine mounts Auth in front of a handler that echoes the
// userID the middleware stored in the context.
func protectedEngine() *gin.Engine {
	r := gin.New()
	r.GET("/me", middleware.Auth([]byte(testSecret)), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userID"))
	})
	return r
}

func signToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func doRequest(authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	protectedEngine().ServeHTTP(w, req)
	return w
}

func TestAuth_RejectsMissingHeader(t *testing.T) {
	if w := doRequest(""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_RejectsNonBearerScheme(t *testing.T) {
	if w := doRequest("Basic dXNlcjpwYXNz"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_RejectsMalformedToken(t *testing.T) {
	if w := doRequest("Bearer not.a.token"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_RejectsExpiredToken(t *testing.T) {
	tok := signToken(t, []byte(testSecret), jwt.MapClaims{
		"sub": "user-1",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	if w := doRequest("Bearer " + tok); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_RejectsWrongKey(t *testing.T) {
	tok := signToken(t, []byte("some-other-signing-key-32-chars!"), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if w := doRequest("Bearer " + tok); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_RejectsMissingSubject(t *testing.T) {
	tok := signToken(t, []byte(testSecret), jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if w := doRequest("Bearer " + tok); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_AcceptsValidTokenAndSetsUserID(t *testing.T) {
	tok := signToken(t, []byte(testSecret), jwt.MapClaims{
		"sub": "user-abc",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := doRequest("Bearer " + tok)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "user-abc" {
		t.Errorf("userID = %q, want user-abc", got)
	}
}
