package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearguard/pkg/service"
	"gearguard/pkg/utils"
)

func newProtectedServer(t *testing.T, roles ...string) (*echo.Echo, service.JWTService) {
	t.Helper()
	jwt := service.NewJWTService("secret", time.Hour, time.Hour)
	mw := NewAuthMiddleware(jwt, zap.NewNop())

	e := echo.New()
	handlers := []echo.MiddlewareFunc{mw.Auth}
	if len(roles) > 0 {
		handlers = append(handlers, mw.RequireRoles(roles...))
	}
	e.GET("/secure", func(c echo.Context) error {
		userID, err := utils.GetUserIDFromCtx(c.Request().Context())
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, userID)
	}, handlers...)
	return e, jwt
}

func doGet(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	e, jwt := newProtectedServer(t)
	access, refresh, err := jwt.GenerateTokens("user-1", "technician")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"без заголовка", "", http.StatusUnauthorized},
		{"неверная схема", "Basic " + access, http.StatusUnauthorized},
		{"мусорный токен", "Bearer not-a-token", http.StatusUnauthorized},
		{"refresh вместо access", "Bearer " + refresh, http.StatusUnauthorized},
		{"валидный токен", "Bearer " + access, http.StatusOK},
		{"схема в нижнем регистре", "bearer " + access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(e, tt.header)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1", rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"status":false`)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	e, jwt := newProtectedServer(t, "admin", "manager")

	manager, _, err := jwt.GenerateTokens("m1", "manager")
	require.NoError(t, err)
	technician, _, err := jwt.GenerateTokens("t1", "technician")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doGet(e, "Bearer "+manager).Code)

	rec := doGet(e, "Bearer "+technician)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
}
