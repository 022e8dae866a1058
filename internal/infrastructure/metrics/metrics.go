// Package metrics expone los contadores Prometheus del flujo de órdenes,
// suscripciones, entitlements y notificaciones de migración.
//
// Todos los métodos aceptan receptor nil para que los casos de uso funcionen
// sin métricas (tests, herramientas de línea de comandos).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backoffice"

// Resultados de notificación de migración.
const (
	MigrationResultSent    = "sent"
	MigrationResultFailed  = "failed"
	MigrationResultDropped = "dropped"
	MigrationResultSkipped = "skipped"
)

// Metrics agrupa los collectors de la aplicación sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	ordersCreated          prometheus.Counter
	orderFailures          *prometheus.CounterVec
	creditsProvisioned     prometheus.Counter
	entitlementResolutions *prometheus.CounterVec
	migrationNotifications *prometheus.CounterVec
}

// New crea y registra los collectors. Con registry nil crea uno nuevo que además
// incluye los collectors de proceso y runtime de Go.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: registry,
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Órdenes confirmadas (orden + suscripción + créditos en una sola transacción)",
		}),
		orderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_failures_total",
			Help:      "Órdenes rechazadas o fallidas por motivo",
		}, []string{"reason"}), // permission_denied|not_found|validation|persistence
		creditsProvisioned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_provisioned_total",
			Help:      "Créditos de módulo abiertos",
		}),
		entitlementResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entitlement_resolutions_total",
			Help:      "Resoluciones de módulos activos por resultado",
		}, []string{"result"}), // ok|error
		migrationNotifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_notifications_total",
			Help:      "Notificaciones al servicio de migración por resultado",
		}, []string{"result"}), // sent|failed|dropped|skipped
	}

	registry.MustRegister(
		m.ordersCreated,
		m.orderFailures,
		m.creditsProvisioned,
		m.entitlementResolutions,
		m.migrationNotifications,
	)
	return m
}

// OrderCreated registra una orden confirmada con sus créditos.
func (m *Metrics) OrderCreated(credits int) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.creditsProvisioned.Add(float64(credits))
}

// OrderFailed registra una orden fallida.
func (m *Metrics) OrderFailed(reason string) {
	if m == nil {
		return
	}
	m.orderFailures.WithLabelValues(reason).Inc()
}

// EntitlementResolved registra una resolución de entitlements.
func (m *Metrics) EntitlementResolved(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.entitlementResolutions.WithLabelValues(result).Inc()
}

// MigrationNotified registra el resultado de una notificación de migración.
func (m *Metrics) MigrationNotified(result string) {
	if m == nil {
		return
	}
	m.migrationNotifications.WithLabelValues(result).Inc()
}

// Registry devuelve el registry subyacente (tests y exporters adicionales).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler devuelve el handler HTTP para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
