package repository

import (
	"context"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// ProductFilter criterios de búsqueda del catálogo.
type ProductFilter struct {
	CategoryID string
	Search     string // coincide con nombre o código
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetByIDs devuelve los productos encontrados indexados por ID.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	// UpsertByCode inserta o actualiza por código único. created indica si la fila es nueva.
	UpsertByCode(ctx context.Context, product *entity.Product) (created bool, err error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	CountActive(ctx context.Context) (int, error)
}
