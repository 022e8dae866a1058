package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/infrastructure/metrics"
)

func TestMetrics_ContadoresDeOrdenes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.OrderCreated(3)
	m.OrderCreated(2)
	m.OrderFailed("permission_denied")

	expected := `
# HELP backoffice_credits_provisioned_total Créditos de módulo abiertos
# TYPE backoffice_credits_provisioned_total counter
backoffice_credits_provisioned_total 5
# HELP backoffice_orders_created_total Órdenes confirmadas (orden + suscripción + créditos en una sola transacción)
# TYPE backoffice_orders_created_total counter
backoffice_orders_created_total 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"backoffice_orders_created_total", "backoffice_credits_provisioned_total"))

	n, err := testutil.GatherAndCount(reg, "backoffice_order_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "una serie por motivo")
}

func TestMetrics_EntitlementsPorResultado(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.EntitlementResolved(nil)
	m.EntitlementResolved(nil)
	m.EntitlementResolved(errors.New("db"))

	n, err := testutil.GatherAndCount(reg, "backoffice_entitlement_resolutions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "series ok y error")
}

func TestMetrics_ReceptorNil(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.OrderCreated(1)
		m.OrderFailed("validation")
		m.EntitlementResolved(nil)
		m.MigrationNotified(metrics.MigrationResultSent)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New(nil)
	m.MigrationNotified(metrics.MigrationResultSent)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `backoffice_migration_notifications_total{result="sent"} 1`)
	assert.Contains(t, string(body), "go_goroutines", "el registry por defecto incluye el collector de Go")
}
