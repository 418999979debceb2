package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookie - имя cookie с access токеном, ставится при логине
const AccessTokenCookie = "access_token"

var ErrNoCredentials = errors.New("no credentials provided")

// Identity - кто вызывает API
type Identity struct {
	UserID string
	Email  string
	Role   string
	Source string // bearer, cookie, explicit
}

type tokenSource struct {
	name    string
	extract func(c *gin.Context) string
}

// Resolver - единая точка определения вызывающего.
// Источники проверяются по порядку: заголовок Authorization, cookie, явный токен.
// Побеждает первый источник с валидным токеном.
type Resolver struct {
	tokens  *TokenManager
	sources []tokenSource
}

func NewResolver(tokens *TokenManager) *Resolver {
	return &Resolver{
		tokens: tokens,
		sources: []tokenSource{
			{name: "bearer", extract: bearerToken},
			{name: "cookie", extract: cookieToken},
		},
	}
}

// Tokens - менеджер токенов, которым пользуется резолвер
func (r *Resolver) Tokens() *TokenManager {
	return r.tokens
}

// Resolve определяет вызывающего. explicit - токен из тела запроса, может быть пустым.
func (r *Resolver) Resolve(c *gin.Context, explicit string) (*Identity, error) {
	var lastErr error
	tried := false

	type candidate struct{ name, token string }
	candidates := make([]candidate, 0, len(r.sources)+1)
	for _, src := range r.sources {
		candidates = append(candidates, candidate{src.name, src.extract(c)})
	}
	candidates = append(candidates, candidate{"explicit", strings.TrimSpace(explicit)})

	for _, cand := range candidates {
		if cand.token == "" {
			continue
		}
		tried = true
		claims, err := r.tokens.ParseToken(cand.token)
		if err != nil {
			lastErr = err
			continue
		}
		return &Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
			Source: cand.name,
		}, nil
	}

	if !tried {
		return nil, ErrNoCredentials
	}
	return nil, lastErr
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func cookieToken(c *gin.Context) string {
	v, err := c.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return v
}
