package dto

import (
	"time"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// AuditLogResponse entrada del historial.
type AuditLogResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	UserName   string              `json:"user_name,omitempty"`
	Action     string              `json:"action"`
	ActionName string              `json:"action_label"`
	EntityType string              `json:"entity_type"`
	EntityID   string              `json:"entity_id"`
	Location   *string             `json:"location,omitempty"`
	Details    entity.AuditDetails `json:"details"`
	CreatedAt  time.Time           `json:"created_at"`
}

// AuditLogListResponse lista paginada del historial.
type AuditLogListResponse struct {
	Items []AuditLogResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// AuditLogFromEntity construye la respuesta de una entrada.
func AuditLogFromEntity(e *entity.AuditLogEntry) AuditLogResponse {
	var loc *string
	if e.Location != nil {
		s := string(*e.Location)
		loc = &s
	}
	return AuditLogResponse{
		ID:         e.ID,
		UserID:     e.UserID,
		UserName:   e.UserName,
		Action:     string(e.Action),
		ActionName: e.Action.Label(),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Location:   loc,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}
