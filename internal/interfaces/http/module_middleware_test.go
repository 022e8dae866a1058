package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	apphttp "github.com/jhoicas/backoffice-api/internal/interfaces/http"
)

// stubChecker responde HasActiveModule con valores fijos y guarda el tier consultado.
type stubChecker struct {
	active bool
	err    error
	asked  entity.ModuleType
}

func (s *stubChecker) HasActiveModule(_ context.Context, _, _ string, moduleType entity.ModuleType) (bool, error) {
	s.asked = moduleType
	return s.active, s.err
}

func buildModuleApp(checker *stubChecker) *fiber.App {
	app := fiber.New()
	app.Get("/pos",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireModule(entity.ModuleTypePos, checker),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	return app
}

func getPos(t *testing.T, app *fiber.App, authHeader string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/pos", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, string(body)
}

func TestRequireModule_ModuloActivo_Pasa(t *testing.T) {
	checker := &stubChecker{active: true}
	resp, _ := getPos(t, buildModuleApp(checker), tokenForRole(t, "admin"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.ModuleTypePos, checker.asked)
}

func TestRequireModule_ModuloInactivo_403(t *testing.T) {
	resp, body := getPos(t, buildModuleApp(&stubChecker{active: false}), tokenForRole(t, "admin"))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "MODULE_DISABLED")
	assert.Contains(t, body, "Pos")
}

func TestRequireModule_FalloDeInfraestructura_503(t *testing.T) {
	resp, body := getPos(t, buildModuleApp(&stubChecker{err: errors.New("db caída")}), tokenForRole(t, "admin"))

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "MODULE_CHECK_FAILED")
}

func TestRequireModule_SinAuth_401(t *testing.T) {
	app := fiber.New()
	app.Get("/pos", apphttp.RequireModule(entity.ModuleTypePos, &stubChecker{active: true}),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/pos", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
