package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dukaanlabs/dukaan/pkg/auth"
	"github.com/dukaanlabs/dukaan/pkg/cache"
	"github.com/dukaanlabs/dukaan/pkg/response"
)

type claimsKey struct{}
type tokenKey struct{}

// DenylistKey is the cache key under which a revoked token ID is parked
// until the token's natural expiry.
func DenylistKey(tokenID string) string {
	return "token_denylist_" + tokenID
}

// Auth is the bearer-token gate in front of protected routes. Requests with
// a missing, invalid, expired, or revoked token get the structured 401 body;
// everything else passes through with the claims stored in the context.
func Auth(c *cache.Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Unauthenticated(w)
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Unauthenticated(w)
				return
			}

			if revoked(c, claims.ID) {
				response.Unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			ctx = context.WithValue(ctx, tokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func revoked(c *cache.Cache, tokenID string) bool {
	if c == nil || tokenID == "" {
		return false
	}
	var parked bool
	return c.Get(DenylistKey(tokenID), &parked)
}

// ClaimsFromCtx returns the verified claims stored by Auth, or nil.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// TokenFromCtx returns the raw bearer token stored by Auth, or "".
func TokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
