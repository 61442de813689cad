package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// RequestFilter filtro del listado de solicitudes.
type RequestFilter struct {
	Status      *entity.RequestStatus
	Location    *entity.Location
	RequesterID string
	Limit       int
	Offset      int
}

// RequestRepository puerto de persistencia de solicitudes y sus ítems.
type RequestRepository interface {
	// Create inserta la solicitud y sus ítems.
	Create(ctx context.Context, request *entity.Request) error
	// GetByID devuelve la solicitud con ítems, productos y solicitante; nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]*entity.Request, error)
	// UpdateStatus aplica from → to solo si el estado actual es from (UPDATE ... WHERE status = from).
	// approved/rejected sellan approved_by/at; delivered sella delivered_by/at.
	// Devuelve domain.ErrInvalidTransition si ninguna fila cambió.
	UpdateStatus(ctx context.Context, id string, from, to entity.RequestStatus, actorID string, at time.Time) error
	SetItemAvailability(ctx context.Context, requestID, itemID string, available bool) error
	// CountByStatus con location != nil cuenta solo las solicitudes de ese destino.
	CountByStatus(ctx context.Context, status entity.RequestStatus, location *entity.Location) (int, error)
}
