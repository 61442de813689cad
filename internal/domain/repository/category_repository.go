package repository

import (
	"context"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	// UpsertByName crea la categoría si no existe y completa category.ID.
	UpsertByName(ctx context.Context, category *entity.Category) error
	List(ctx context.Context) ([]*entity.Category, error)
}
