package migration_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/metrics"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/migration"
)

// scriptedNotifier falla las primeras failures llamadas; block detiene cada llamada hasta que se cierre.
type scriptedNotifier struct {
	mu       sync.Mutex
	calls    int
	failures int
	started  chan struct{}
	block    chan struct{}
	got      []string
}

func (n *scriptedNotifier) Notify(ctx context.Context, companyID string, _ []entity.ModuleType) error {
	n.mu.Lock()
	n.calls++
	call := n.calls
	n.got = append(n.got, companyID)
	n.mu.Unlock()

	if n.started != nil {
		select {
		case n.started <- struct{}{}:
		default:
		}
	}
	if n.block != nil {
		select {
		case <-n.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if call <= n.failures {
		return errors.New("servicio no disponible")
	}
	return nil
}

func (n *scriptedNotifier) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func migrationCount(t *testing.T, reg *prometheus.Registry, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "backoffice_migration_notifications_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestDispatcher_ReintentaHastaEntregar(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	n := &scriptedNotifier{failures: 2}
	d := migration.NewDispatcher(n, migration.Options{MaxAttempts: 3, Backoff: time.Millisecond, Metrics: m})

	require.NoError(t, d.Trigger(context.Background(), "company-1", []entity.ModuleType{entity.ModuleTypeBasic}))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 3, n.Calls(), "dos fallos y un éxito")
	assert.Equal(t, float64(1), migrationCount(t, reg, metrics.MigrationResultSent))
	assert.Equal(t, float64(0), migrationCount(t, reg, metrics.MigrationResultFailed))
}

func TestDispatcher_AgotaReintentos(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	n := &scriptedNotifier{failures: 100}
	d := migration.NewDispatcher(n, migration.Options{MaxAttempts: 2, Backoff: time.Millisecond, Metrics: m})

	require.NoError(t, d.Trigger(context.Background(), "company-1", nil))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 2, n.Calls())
	assert.Equal(t, float64(1), migrationCount(t, reg, metrics.MigrationResultFailed))
}

func TestDispatcher_EntregaEnOrden(t *testing.T) {
	n := &scriptedNotifier{}
	d := migration.NewDispatcher(n, migration.Options{QueueSize: 10})

	for _, c := range []string{"a", "b", "c"} {
		require.NoError(t, d.Trigger(context.Background(), c, nil))
	}
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, []string{"a", "b", "c"}, n.got)
}

func TestDispatcher_ColaLlena(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	n := &scriptedNotifier{started: make(chan struct{}, 1), block: make(chan struct{})}
	d := migration.NewDispatcher(n, migration.Options{QueueSize: 1, Metrics: m})

	require.NoError(t, d.Trigger(context.Background(), "en-curso", nil))
	<-n.started // el worker tomó la primera y quedó bloqueado

	require.NoError(t, d.Trigger(context.Background(), "en-cola", nil))
	err := d.Trigger(context.Background(), "descartada", nil)
	assert.ErrorIs(t, err, migration.ErrQueueFull)
	assert.Equal(t, float64(1), migrationCount(t, reg, metrics.MigrationResultDropped))

	close(n.block)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 2, n.Calls())
}

func TestDispatcher_TriggerTrasClose(t *testing.T) {
	d := migration.NewDispatcher(&scriptedNotifier{}, migration.Options{})
	require.NoError(t, d.Close(context.Background()))

	assert.ErrorIs(t, d.Trigger(context.Background(), "c", nil), migration.ErrClosed)
	assert.NoError(t, d.Close(context.Background()), "Close es idempotente")
}

func TestDispatcher_CloseConPlazoVencidoAbortaReintentos(t *testing.T) {
	n := &scriptedNotifier{failures: 100, started: make(chan struct{}, 1)}
	d := migration.NewDispatcher(n, migration.Options{MaxAttempts: 5, Backoff: time.Hour})

	require.NoError(t, d.Trigger(context.Background(), "c", nil))
	<-n.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := d.Close(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second, "no espera el backoff completo")
	assert.Equal(t, 1, n.Calls())
}

func TestLogTrigger_RegistraOmitida(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	err := migration.LogTrigger{Metrics: m}.Trigger(context.Background(), "c", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(1), migrationCount(t, reg, metrics.MigrationResultSkipped))
}
