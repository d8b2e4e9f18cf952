package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"go-agrofleet/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(skipAuth bool, roles ...string) *fiber.App {
	app := fiber.New()
	h := []fiber.Handler{AuthMiddleware(skipAuth)}
	if len(roles) > 0 {
		h = append(h, RequireRole(roles...))
	}
	h = append(h, func(c *fiber.Ctx) error {
		return c.SendString(CurrentUserID(c))
	})
	app.Get("/", h...)
	return app
}

func TestAuthMiddleware(t *testing.T) {
	utils.SetSecret("mw-secret")
	valid, err := utils.GenerateToken("user-7", []string{RoleOperator}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		skipAuth   bool
		header     string
		roles      []string
		wantStatus int
	}{
		{name: "skip auth", skipAuth: true, wantStatus: fiber.StatusOK},
		{name: "missing header", wantStatus: fiber.StatusUnauthorized},
		{name: "bad format", header: "Token abc", wantStatus: fiber.StatusUnauthorized},
		{name: "bad token", header: "Bearer abc", wantStatus: fiber.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + valid, wantStatus: fiber.StatusOK},
		{name: "missing role", header: "Bearer " + valid, roles: []string{RoleAdmin}, wantStatus: fiber.StatusForbidden},
		{name: "matching role", header: "Bearer " + valid, roles: []string{RoleAdmin, RoleOperator}, wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tt.skipAuth, tt.roles...)
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
