package audit

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

// DefaultLimit cantidad de entradas devueltas cuando el filtro no indica límite.
const DefaultLimit = 100

// MaxExportRows tope de filas de una exportación.
const MaxExportRows = 10000

// Service consulta el historial.
type Service struct {
	repo repository.AuditLogRepository
}

// NewService construye el servicio de consulta.
func NewService(repo repository.AuditLogRepository) *Service {
	return &Service{repo: repo}
}

// List devuelve las entradas más recientes primero.
func (s *Service) List(ctx context.Context, filter repository.AuditFilter) ([]*entity.AuditLogEntry, error) {
	if filter.Action != nil && !filter.Action.Valid() {
		return nil, domain.Invalid("action", "acción desconocida")
	}
	if filter.Location != nil && !filter.Location.Valid() {
		return nil, domain.Invalid("location", "ubicación desconocida")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.Invalid("to", "debe ser posterior a from")
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("audit.list", err)
	}
	return entries, nil
}

// ExportRows lista sin paginar (hasta MaxExportRows) y convierte a filas de exportación.
func (s *Service) ExportRows(ctx context.Context, filter repository.AuditFilter) ([]Row, error) {
	filter.Limit = MaxExportRows
	filter.Offset = 0
	entries, err := s.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ToRow(e))
	}
	return rows, nil
}
