package migration

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/metrics"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

var _ ports.MigrationTrigger = LogTrigger{}

// LogTrigger se usa cuando MIGRATION_URL está vacío: solo registra la notificación.
type LogTrigger struct {
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// Trigger implementa ports.MigrationTrigger.
func (t LogTrigger) Trigger(_ context.Context, companyID string, moduleTypes []entity.ModuleType) error {
	t.Metrics.MigrationNotified(metrics.MigrationResultSkipped)
	if t.Logger != nil {
		t.Logger.Info().Str("company_id", companyID).Interface("module_types", moduleTypes).
			Msg("MIGRATION_URL vacío: notificación de migración omitida")
	}
	return nil
}
