package repository

import (
	"context"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	// GetByID y GetByEmail devuelven nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	// ListActiveEmails correos de usuarios activos con alguno de los roles.
	// Con location != nil, los roles distintos de admin se limitan a esa ubicación o a usuarios sin ubicación asignada.
	ListActiveEmails(ctx context.Context, roles []entity.Role, location *entity.Location) ([]string, error)
}
