package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// TransferFilter filtro del listado de traspasos. Location coincide con origen o destino.
type TransferFilter struct {
	Status   *entity.TransferStatus
	Location *entity.Location
	Limit    int
	Offset   int
}

// TransferRepository puerto de persistencia de traspasos y sus ítems.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	// GetByID devuelve el traspaso con ítems y productos; nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)
	// UpdateStatus aplica from → to solo si el estado actual es from y sella confirmed_by/at.
	// Devuelve domain.ErrInvalidTransition si ninguna fila cambió.
	UpdateStatus(ctx context.Context, id string, from, to entity.TransferStatus, actorID string, at time.Time) error
}
