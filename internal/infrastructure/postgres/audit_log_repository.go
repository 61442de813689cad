package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo historial append-only sobre PostgreSQL; el detalle tipado se guarda como JSONB.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador del historial.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

func (r *AuditLogRepo) Append(ctx context.Context, e *entity.AuditLogEntry) error {
	details := []byte("{}")
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = raw
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, location, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UserID, string(e.Action), e.EntityType, e.EntityID, fromLocation(e.Location), details, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List devuelve las entradas más recientes primero, con el nombre del usuario.
func (r *AuditLogRepo) List(ctx context.Context, filter repository.AuditFilter) ([]*entity.AuditLogEntry, error) {
	var w whereBuilder
	if filter.Action != nil {
		w.add("l.action = $%d", string(*filter.Action))
	}
	if filter.UserID != "" {
		w.add("l.user_id = $%d", filter.UserID)
	}
	if filter.Location != nil {
		w.add("l.location = $%d", string(*filter.Location))
	}
	if filter.From != nil {
		w.add("l.created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("l.created_at <= $%d", *filter.To)
	}
	query := `
		SELECT l.id, l.user_id, l.action, l.entity_type, l.entity_id, l.location, l.details, l.created_at,
		       COALESCE(u.full_name, '')
		FROM audit_logs l
		LEFT JOIN users u ON u.id = l.user_id` + w.sql() + `
		ORDER BY l.created_at DESC` + w.page(filter.Limit, filter.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLogEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanAuditEntry(row pgx.Row) (*entity.AuditLogEntry, error) {
	var e entity.AuditLogEntry
	var action string
	var loc *string
	var raw []byte
	if err := row.Scan(&e.ID, &e.UserID, &action, &e.EntityType, &e.EntityID, &loc, &raw, &e.CreatedAt, &e.UserName); err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}
	e.Action = entity.AuditAction(action)
	e.Location = toLocation(loc)
	details, err := entity.DecodeAuditDetails(e.Action, raw)
	if err != nil {
		return nil, err
	}
	e.Details = details
	return &e, nil
}
