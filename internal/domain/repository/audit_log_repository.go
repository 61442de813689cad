package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// AuditFilter filtro del historial. Limit 0 usa el valor por defecto del caso de uso.
type AuditFilter struct {
	Action   *entity.AuditAction
	UserID   string
	Location *entity.Location
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// AuditLogRepository almacenamiento append-only del historial.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entity.AuditLogEntry) error
	// List devuelve las entradas más recientes primero, con UserName poblado.
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditLogEntry, error)
}
