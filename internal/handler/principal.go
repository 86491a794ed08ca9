package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/service/serviceutils"
)

// HeaderForwardedUser carries the caller identity set by an upstream proxy.
const HeaderForwardedUser = "X-Forwarded-User"

// Principal resolves the caller identity and stores it in the request
// context. With a secret, only a valid HMAC bearer token counts and its
// "sub" claim names the caller. Without one, the forwarded user header is
// trusted. Requests without an identity pass through unchanged.
func Principal(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			name := resolvePrincipal(c.Request(), secret)
			if name != "" {
				req := c.Request()
				ctx := domain.WithPrincipal(req.Context(), name)
				ctx = logger.WithLogger(ctx, map[string]interface{}{"principal": name})
				c.SetRequest(req.WithContext(ctx))
			}
			return next(c)
		}
	}
}

func resolvePrincipal(r *http.Request, secret string) string {
	if secret == "" {
		return strings.TrimSpace(r.Header.Get(HeaderForwardedUser))
	}

	auth := r.Header.Get(echo.HeaderAuthorization)
	raw := strings.TrimPrefix(auth, "Bearer ")
	if raw == auth || raw == "" {
		return ""
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		logger.DebugLog(r.Context(), "rejected bearer token: %v", err)
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

// requirePrincipal answers with status and returns false when the request
// carries no caller identity.
func requirePrincipal(c echo.Context, status int) (string, bool) {
	name := domain.PrincipalFrom(c.Request().Context())
	if name == "" {
		_ = serviceutils.ResponseError(c, status, "Authentication required", nil)
		return "", false
	}
	return name, true
}
