package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestResolvePrincipal(t *testing.T) {
	const secret = "s3cret"
	valid := signToken(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "alice"})

	cases := []struct {
		name    string
		secret  string
		auth    string
		forward string
		want    string
	}{
		{name: "header without secret", forward: "bob", want: "bob"},
		{name: "nothing without secret"},
		{name: "valid token", secret: secret, auth: "Bearer " + valid, want: "alice"},
		{name: "header ignored with secret", secret: secret, forward: "bob"},
		{name: "expired token", secret: secret, auth: "Bearer " + expired},
		{name: "wrong key", secret: secret, auth: "Bearer " + wrongKey},
		{name: "not a bearer", secret: secret, auth: "Basic abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.auth)
			}
			if tc.forward != "" {
				req.Header.Set(HeaderForwardedUser, tc.forward)
			}
			assert.Equal(t, tc.want, resolvePrincipal(req, tc.secret))
		})
	}
}

func TestPrincipalMiddleware(t *testing.T) {
	e := echo.New()
	var seen string
	h := Principal("")(func(c echo.Context) error {
		seen = domain.PrincipalFrom(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderForwardedUser, "carol")
	require.NoError(t, h(e.NewContext(req, httptest.NewRecorder())))
	assert.Equal(t, "carol", seen)
}
