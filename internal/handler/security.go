package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/fornace/kitchen-panel/internal/domain/order"
	"github.com/fornace/kitchen-panel/internal/orderstore"
)

type tokenKey struct{}
type roleKey struct{}

// WithToken stores the caller's bearer token; the order-store client reads
// it back to forward credentials upstream.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the caller's bearer token, or "".
func TokenFromContext(ctx context.Context) string {
	if tok, ok := ctx.Value(tokenKey{}).(string); ok {
		return tok
	}
	return ""
}

// RoleFromContext returns the authenticated role, or "".
func RoleFromContext(ctx context.Context) order.Role {
	if r, ok := ctx.Value(roleKey{}).(order.Role); ok {
		return r
	}
	return ""
}

// RoleLookup resolves a role from the auth collaborator when the token does
// not carry one; see orderstore.Client.Me.
type RoleLookup interface {
	Me(ctx context.Context) (order.Role, error)
}

// Auth gates the panel to kitchen roles. The bearer token is verified
// locally against the shared HMAC secret; when the token has no role claim
// (or no secret is configured) the role comes from the auth collaborator.
// Dashboard visibility only: admin, administrator, and cook pass.
func Auth(secret []byte, lookup RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			ctx := WithToken(r.Context(), token)

			role, err := resolveRole(ctx, token, secret, lookup)
			if err != nil {
				if errors.Is(err, orderstore.ErrSessionExpired) {
					writeError(w, http.StatusUnauthorized, "session expired")
					return
				}
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			if !role.Allowed() {
				writeError(w, http.StatusForbidden, "kitchen access requires admin or cook role")
				return
			}

			ctx = context.WithValue(ctx, roleKey{}, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func resolveRole(ctx context.Context, token string, secret []byte, lookup RoleLookup) (order.Role, error) {
	if len(secret) > 0 {
		role, err := roleFromToken(token, secret)
		if err != nil {
			return "", err
		}
		if role != "" {
			return role, nil
		}
		// Valid token without a role claim: ask the collaborator.
	}

	if lookup == nil {
		return "", errors.New("no role in token")
	}
	return lookup.Me(ctx)
}

// roleFromToken validates the HMAC signature and returns the role claim,
// which may be empty on tokens that only carry identity.
func roleFromToken(token string, secret []byte) (order.Role, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid or expired token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	role, _ := claims["role"].(string)
	return order.Role(role), nil
}
