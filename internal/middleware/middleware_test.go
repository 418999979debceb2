package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/models"
	"studyhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubChecker struct {
	active bool
	err    error
	calls  int
}

func (s *stubChecker) HasActiveSubscription(db *gorm.DB, userID string) (bool, error) {
	s.calls++
	return s.active, s.err
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	all := append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	r.GET("/protected", all...)
	return r
}

func withIdentity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetIdentity(c, &auth.Identity{UserID: userID, Role: role})
		c.Next()
	}
}

func do(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Minute)
	r := newEngine(AuthMiddleware(auth.NewResolver(tokens)))

	w, body := do(t, r, get("/protected"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization header missing or invalid", body["error"])

	req := get("/protected")
	req.Header.Set("Authorization", "Bearer garbage")
	w, body = do(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", body["error"])

	token, err := tokens.GenerateToken("u1", "u1@test.com", auth.RoleTeacher)
	require.NoError(t, err)
	req = get("/protected")
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
	w, body = do(t, r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", body["user_id"])
	assert.Equal(t, auth.RoleTeacher, body["role"])
}

func TestRequireRoles(t *testing.T) {
	r := gin.New()
	gate := RequireRoles(models.UserRoleTeacher, models.UserRoleAdmin)
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/student", withIdentity("s", auth.RoleStudent), gate, ok)
	r.GET("/teacher", withIdentity("t", auth.RoleTeacher), gate, ok)
	r.GET("/anon", gate, ok)

	w, body := do(t, r, get("/student"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(apperrors.CodeForbidden), body["code"])

	w, _ = do(t, r, get("/teacher"))
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, get("/anon"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermission(t *testing.T) {
	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/teacher", withIdentity("t", auth.RoleTeacher), RequirePermission(auth.PermPaymentsRead), ok)
	r.GET("/admin", withIdentity("a", auth.RoleAdmin), RequirePermission(auth.PermPaymentsRead), ok)

	w, _ := do(t, r, get("/teacher"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = do(t, r, get("/admin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireSubscription(t *testing.T) {
	db := &gorm.DB{}

	t.Run("student without subscription gets 402", func(t *testing.T) {
		checker := &stubChecker{active: false}
		r := newEngine(DBMiddleware(db), withIdentity("s", auth.RoleStudent), RequireSubscription(checker))

		w, body := do(t, r, get("/protected"))
		assert.Equal(t, http.StatusPaymentRequired, w.Code)
		assert.Equal(t, string(apperrors.CodeSubscriptionRequired), body["code"])
	})

	t.Run("student with subscription passes", func(t *testing.T) {
		checker := &stubChecker{active: true}
		r := newEngine(DBMiddleware(db), withIdentity("s", auth.RoleStudent), RequireSubscription(checker))

		w, _ := do(t, r, get("/protected"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, checker.calls)
	})

	for _, role := range []string{auth.RoleTeacher, auth.RoleAdmin} {
		t.Run(role+" bypasses check", func(t *testing.T) {
			checker := &stubChecker{active: false}
			r := newEngine(withIdentity("x", role), RequireSubscription(checker))

			w, _ := do(t, r, get("/protected"))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Zero(t, checker.calls)
		})
	}

	t.Run("checker error", func(t *testing.T) {
		checker := &stubChecker{err: apperrors.NewDataStoreError(errors.New("boom"), "subscription", "Failed to load profile")}
		r := newEngine(DBMiddleware(db), withIdentity("s", auth.RoleStudent), RequireSubscription(checker))

		w, _ := do(t, r, get("/protected"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no identity", func(t *testing.T) {
		r := newEngine(DBMiddleware(db), RequireSubscription(&stubChecker{active: true}))

		w, _ := do(t, r, get("/protected"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("no database", func(t *testing.T) {
		r := newEngine(withIdentity("s", auth.RoleStudent), RequireSubscription(&stubChecker{active: true}))

		w, _ := do(t, r, get("/protected"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newEngine(RequestIDMiddleware())

	req := get("/protected")
	req.Header.Set("X-Request-ID", "abc-123")
	w, _ := do(t, r, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w, _ = do(t, r, get("/protected"))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestCORSMiddleware(t *testing.T) {
	r := newEngine(CORSMiddleware([]string{"https://app.test"}))

	req := get("/protected")
	req.Header.Set("Origin", "https://app.test")
	w, _ := do(t, r, req)
	assert.Equal(t, "https://app.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = get("/protected")
	req.Header.Set("Origin", "https://evil.test")
	w, _ = do(t, r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	preflight := gin.New()
	preflight.Use(CORSMiddleware([]string{"*"}))
	preflight.OPTIONS("/api/pay", func(c *gin.Context) { c.Status(http.StatusOK) })
	req = httptest.NewRequest(http.MethodOptions, "/api/pay", nil)
	req.Header.Set("Origin", "https://any.test")
	w, _ = do(t, preflight, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://any.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/echo", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(data))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "small", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("way too large body")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
