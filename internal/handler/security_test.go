package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fornace/kitchen-panel/internal/domain/order"
	"github.com/fornace/kitchen-panel/internal/orderstore"
)

var testSecret = []byte("panel-test-secret")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return tok
}

type fakeRoleLookup struct {
	role order.Role
	err  error
}

func (f *fakeRoleLookup) Me(context.Context) (order.Role, error) {
	return f.role, f.err
}

func authProbe(t *testing.T, mw func(http.Handler) http.Handler, token string) (*httptest.ResponseRecorder, order.Role) {
	t.Helper()

	var gotRole order.Role
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mw(inner).ServeHTTP(rec, req)
	return rec, gotRole
}

func TestAuthAllowsKitchenRoles(t *testing.T) {
	mw := Auth(testSecret, nil)

	for _, role := range []string{"admin", "administrator", "cook"} {
		t.Run(role, func(t *testing.T) {
			rec, gotRole := authProbe(t, mw, signToken(t, jwt.MapClaims{"role": role}))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, order.Role(role), gotRole)
		})
	}
}

func TestAuthRejectsOtherRoles(t *testing.T) {
	mw := Auth(testSecret, nil)

	rec, _ := authProbe(t, mw, signToken(t, jwt.MapClaims{"role": "customer"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	mw := Auth(testSecret, nil)

	rec, _ := authProbe(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsBadSignature(t *testing.T) {
	mw := Auth(testSecret, nil)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	rec, _ := authProbe(t, mw, other)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	mw := Auth(testSecret, nil)

	rec, _ := authProbe(t, mw, signToken(t, jwt.MapClaims{
		"role": "cook",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthFallsBackToRoleLookup(t *testing.T) {
	// Token validates but carries no role claim: the collaborator decides.
	mw := Auth(testSecret, &fakeRoleLookup{role: order.RoleCook})

	rec, gotRole := authProbe(t, mw, signToken(t, jwt.MapClaims{"sub": "user-1"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.RoleCook, gotRole)
}

func TestAuthLookupSessionExpired(t *testing.T) {
	mw := Auth(testSecret, &fakeRoleLookup{err: orderstore.ErrSessionExpired})

	rec, _ := authProbe(t, mw, signToken(t, jwt.MapClaims{"sub": "user-1"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthWithoutSecretDelegatesEntirely(t *testing.T) {
	// No shared secret configured: the collaborator validates the token.
	mw := Auth(nil, &fakeRoleLookup{role: order.RoleAdmin})

	rec, gotRole := authProbe(t, mw, "opaque-upstream-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.RoleAdmin, gotRole)
}

func TestAuthWithoutSecretLookupFailure(t *testing.T) {
	mw := Auth(nil, &fakeRoleLookup{err: errors.New("auth service down")})

	rec, _ := authProbe(t, mw, "opaque-upstream-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenRoundTrip(t *testing.T) {
	ctx := WithToken(context.Background(), "tok-1")
	assert.Equal(t, "tok-1", TokenFromContext(ctx))
	assert.Empty(t, TokenFromContext(context.Background()))
}
