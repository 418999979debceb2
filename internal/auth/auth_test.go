package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)

	token, err := m.GenerateToken("u1", "a@test.com", RoleTeacher)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@test.com", claims.Email)
	assert.Equal(t, RoleTeacher, claims.Role)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	token, err := m.GenerateToken("u1", "a@test.com", RoleStudent)
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Minute).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseToken("")
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = m.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("", time.Minute).GenerateToken("u1", "", RoleStudent)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func testContext(t *testing.T, header, cookie string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/api/pay", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: cookie})
	}
	c.Request = req
	return c
}

func TestResolver_SourcePriority(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	r := NewResolver(m)
	bearer, _ := m.GenerateToken("bearer-user", "", RoleStudent)
	cookie, _ := m.GenerateToken("cookie-user", "", RoleStudent)
	explicit, _ := m.GenerateToken("explicit-user", "", RoleStudent)

	id, err := r.Resolve(testContext(t, "Bearer "+bearer, cookie), explicit)
	require.NoError(t, err)
	assert.Equal(t, "bearer-user", id.UserID)
	assert.Equal(t, "bearer", id.Source)

	id, err = r.Resolve(testContext(t, "", cookie), explicit)
	require.NoError(t, err)
	assert.Equal(t, "cookie-user", id.UserID)

	id, err = r.Resolve(testContext(t, "", ""), explicit)
	require.NoError(t, err)
	assert.Equal(t, "explicit", id.Source)

	// невалидный bearer не мешает валидной cookie
	id, err = r.Resolve(testContext(t, "bearer garbage", cookie), "")
	require.NoError(t, err)
	assert.Equal(t, "cookie-user", id.UserID)
}

func TestResolver_NoCredentials(t *testing.T) {
	r := NewResolver(NewTokenManager("secret", time.Minute))

	_, err := r.Resolve(testContext(t, "", ""), "  ")
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = r.Resolve(testContext(t, "Basic abc", ""), "")
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = r.Resolve(testContext(t, "Bearer garbage", ""), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("password123", hash))
	assert.False(t, CheckPasswordHash("password124", hash))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(strings.Repeat("a", 73)))
	assert.NoError(t, ValidatePassword("long enough"))
}

func TestPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleTeacher, PermMaterialsUpload))
	assert.False(t, HasPermission(RoleStudent, PermMaterialsUpload))
	assert.True(t, HasPermission(RoleAdmin, PermPaymentsRead))
	assert.False(t, HasPermission("guest", PermMaterialsRead))

	assert.True(t, BypassesSubscription(RoleTeacher))
	assert.True(t, BypassesSubscription(RoleAdmin))
	assert.False(t, BypassesSubscription(RoleStudent))

	assert.NoError(t, ValidateRole(RoleStudent))
	assert.Error(t, ValidateRole("owner"))
}
