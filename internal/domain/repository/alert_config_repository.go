package repository

import (
	"context"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// AlertConfigRepository puerto de persistencia de umbrales configurados.
type AlertConfigRepository interface {
	Create(ctx context.Context, config *entity.AlertConfig) error
	Update(ctx context.Context, config *entity.AlertConfig) error
	Delete(ctx context.Context, id string) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.AlertConfig, error)
	// List devuelve las configuraciones con Product poblado.
	List(ctx context.Context, activeOnly bool) ([]*entity.AlertConfig, error)
	ListActiveFor(ctx context.Context, productID string, location entity.Location) ([]*entity.AlertConfig, error)
}
