package migration

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/metrics"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

var (
	// ErrQueueFull la notificación se descartó porque la cola está llena.
	ErrQueueFull = errors.New("migration: cola de notificaciones llena")
	// ErrClosed el dispatcher ya no acepta notificaciones.
	ErrClosed = errors.New("migration: dispatcher cerrado")
)

var _ ports.MigrationTrigger = (*Dispatcher)(nil)

type event struct {
	companyID   string
	moduleTypes []entity.ModuleType
}

// Options parámetros del Dispatcher. Los valores cero toman los defaults.
type Options struct {
	QueueSize   int           // default 100
	MaxAttempts int           // default 3
	Backoff     time.Duration // espera base entre intentos (lineal: Backoff * intento); default 1 s
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
}

// Dispatcher implementa ports.MigrationTrigger: Trigger encola y retorna de inmediato,
// un único worker entrega en orden con reintentos acotados.
type Dispatcher struct {
	notifier    Notifier
	maxAttempts int
	backoff     time.Duration
	log         *logger.Logger
	metrics     *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	queue  chan event
	abort  chan struct{}
	done   chan struct{}
}

// NewDispatcher arranca el worker.
func NewDispatcher(notifier Notifier, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	d := &Dispatcher{
		notifier:    notifier,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		log:         opts.Logger.Component("migration"),
		metrics:     opts.Metrics,
		queue:       make(chan event, opts.QueueSize),
		abort:       make(chan struct{}),
		done:        make(chan struct{}),
	}
	go d.run()
	return d
}

// Trigger encola la notificación. No bloquea: con la cola llena la descarta y devuelve ErrQueueFull.
func (d *Dispatcher) Trigger(_ context.Context, companyID string, moduleTypes []entity.ModuleType) error {
	ev := event{companyID: companyID, moduleTypes: slices.Clone(moduleTypes)}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.MigrationNotified(metrics.MigrationResultDropped)
		return ErrClosed
	}
	select {
	case d.queue <- ev:
		return nil
	default:
		d.metrics.MigrationNotified(metrics.MigrationResultDropped)
		d.log.Warn().Str("company_id", companyID).Msg("cola de migración llena, notificación descartada")
		return ErrQueueFull
	}
}

// Close deja de aceptar notificaciones y espera a que el worker vacíe la cola.
// Si ctx vence antes, aborta los reintentos pendientes y devuelve ctx.Err().
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.stop()
		<-d.done
		return ctx.Err()
	}
}

func (d *Dispatcher) stop() {
	select {
	case <-d.abort:
	default:
		close(d.abort)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev event) {
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if attempt > 1 {
			wait := d.backoff * time.Duration(attempt-1)
			select {
			case <-time.After(wait):
			case <-d.abort:
				d.metrics.MigrationNotified(metrics.MigrationResultFailed)
				d.log.Warn().Str("company_id", ev.companyID).Int("attempt", attempt).
					Msg("apagado: notificación de migración abandonada")
				return
			}
		}

		ctx, cancel := d.attemptContext()
		err := d.notifier.Notify(ctx, ev.companyID, ev.moduleTypes)
		cancel()
		if err == nil {
			d.metrics.MigrationNotified(metrics.MigrationResultSent)
			d.log.Debug().Str("company_id", ev.companyID).Int("attempt", attempt).
				Interface("module_types", ev.moduleTypes).Msg("servicio de migración notificado")
			return
		}
		lastErr = err
		d.log.Warn().Err(err).Str("company_id", ev.companyID).Int("attempt", attempt).
			Msg("intento de notificación de migración fallido")
	}

	d.metrics.MigrationNotified(metrics.MigrationResultFailed)
	d.log.Error().Err(lastErr).Str("company_id", ev.companyID).Int("attempts", d.maxAttempts).
		Msg("notificación de migración agotó los reintentos")
}

// attemptContext se cancela si Close aborta; el timeout por intento lo pone el http.Client.
func (d *Dispatcher) attemptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-d.abort:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
