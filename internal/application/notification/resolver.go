package notification

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

// Resolver traduce una Audience a correos usando el repositorio de usuarios.
type Resolver struct {
	users repository.UserRepository
}

// NewResolver construye el resolver.
func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// Resolve devuelve los correos de la audiencia (sin validar formato; eso lo hace el Notifier).
func (r *Resolver) Resolve(ctx context.Context, a Audience) ([]string, error) {
	switch a.Kind {
	case AudienceEmails:
		return a.Emails, nil
	case AudienceAdmins:
		return r.users.ListActiveEmails(ctx, []entity.Role{entity.RoleAdmin}, nil)
	case AudienceLocationStaff:
		return r.users.ListActiveEmails(ctx, []entity.Role{entity.RoleAdmin, entity.RoleBodeguero}, a.Location)
	case AudienceUser:
		u, err := r.users.GetByID(ctx, a.UserID)
		if err != nil {
			return nil, fmt.Errorf("resolver usuario %s: %w", a.UserID, err)
		}
		if u == nil || !u.IsActive {
			return nil, nil
		}
		return []string{u.Email}, nil
	}
	return nil, fmt.Errorf("audiencia desconocida: %q", a.Kind)
}
