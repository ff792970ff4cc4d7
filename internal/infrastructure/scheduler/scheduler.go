// Package scheduler dispara la importación periódica con una expresión cron (con segundos).
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/stock-api/internal/application/importer"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// DefaultSpec cada 10 minutos (segundo 0 de los minutos 00, 10, 20...).
const DefaultSpec = "0 */10 * * * *"

// Runner ejecuta una importación completa.
type Runner interface {
	Run(ctx context.Context, source importer.RowSource) (importer.Report, error)
}

// ImportScheduler programa ejecuciones de importación.
type ImportScheduler struct {
	cron    *cron.Cron
	runner  Runner
	source  importer.RowSource
	timeout time.Duration
	log     *logger.Logger
}

// New construye el scheduler y registra la tarea. spec vacío usa DefaultSpec.
// timeout acota cada ejecución; <= 0 significa sin límite.
func New(spec string, runner Runner, source importer.RowSource, timeout time.Duration, log *logger.Logger) (*ImportScheduler, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &ImportScheduler{
		cron:    cron.New(cron.WithSeconds()),
		runner:  runner,
		source:  source,
		timeout: timeout,
		log:     log.Named("scheduler"),
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("expresión cron inválida %q: %w", spec, err)
	}
	return s, nil
}

// Start arranca el scheduler en segundo plano.
func (s *ImportScheduler) Start() {
	s.cron.Start()
	s.log.Info().Time("next", s.Next()).Msg("importación programada")
}

// Stop detiene el scheduler y espera a que termine la ejecución en curso o a que ctx expire.
func (s *ImportScheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("importación en curso no terminó antes del apagado")
	}
}

// Next próxima ejecución programada.
func (s *ImportScheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// tick ejecuta una importación. Si otra sigue en curso, la salta.
func (s *ImportScheduler) tick() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	report, err := s.runner.Run(ctx, s.source)
	switch {
	case errors.Is(err, domain.ErrImportInProgress):
		s.log.Warn().Msg("importación anterior aún en curso, se omite esta ejecución")
	case err != nil:
		s.log.Error().Err(err).Str("run_id", report.RunID).Msg("importación programada fallida")
	default:
		s.log.Info().Str("run_id", report.RunID).Int("rows", report.Rows).Msg("importación programada completada")
	}
}
