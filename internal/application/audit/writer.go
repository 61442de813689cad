// Package audit registra el historial append-only de mutaciones.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

// Writer agrega entradas al historial. Un fallo de escritura se registra en el log y se descarta:
// la mutación principal ya fue confirmada y no se revierte.
type Writer struct {
	repo repository.AuditLogRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewWriter construye el escritor de auditoría.
func NewWriter(repo repository.AuditLogRepository, log zerolog.Logger) *Writer {
	return &Writer{repo: repo, log: log, now: time.Now}
}

// SetClock reemplaza la fuente de tiempo (tests).
func (w *Writer) SetClock(now func() time.Time) { w.now = now }

// Record agrega una entrada para la acción declarada por details. Devuelve la entrada construida
// aunque no haya podido persistirse.
func (w *Writer) Record(ctx context.Context, actor entity.Actor, entityType, entityID string, location *entity.Location, details entity.AuditDetails) *entity.AuditLogEntry {
	entry := &entity.AuditLogEntry{
		ID:         uuid.New().String(),
		UserID:     actor.UserID,
		Action:     details.AuditAction(),
		EntityType: entityType,
		EntityID:   entityID,
		Location:   location,
		Details:    details,
		CreatedAt:  w.now(),
		UserName:   actor.Name,
	}
	if err := w.repo.Append(ctx, entry); err != nil {
		w.log.Error().Err(err).
			Str("action", string(entry.Action)).
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("no se pudo registrar la auditoría")
	}
	return entry
}
