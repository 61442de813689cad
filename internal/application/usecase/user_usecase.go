package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/policy"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

// MinPasswordLength largo mínimo de contraseña.
const MinPasswordLength = 8

// UserUseCase administración de usuarios (solo admin).
type UserUseCase struct {
	repo  repository.UserRepository
	audit *audit.Writer
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, auditWriter *audit.Writer) *UserUseCase {
	return &UserUseCase{repo: repo, audit: auditWriter}
}

// Create crea un usuario activo; la contraseña se guarda con bcrypt.
func (uc *UserUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !policy.CanManageUsers(actor.Role) {
		return nil, domain.ErrForbidden
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !notification.IsValidEmail(email) {
		return nil, domain.Invalid("email", "formato inválido")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, domain.Invalid("password", "mínimo 8 caracteres")
	}
	role := entity.Role(in.Role)
	if !role.Valid() {
		return nil, domain.Invalid("role", "rol desconocido")
	}
	loc, err := parseOptionalLocation(in.Location)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.Persistence("user.get", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		name = email
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     name,
		Role:         role,
		Location:     loc,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, domain.Persistence("user.create", err)
	}
	uc.audit.Record(ctx, actor, entity.EntityUser, user.ID, loc, entity.NewUserDetails(entity.ActionUserCreated, user))
	return dto.UserFromEntity(user), nil
}

// Update modifica nombre, rol, ubicación, estado o contraseña.
func (uc *UserUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !policy.CanManageUsers(actor.Role) {
		return nil, domain.ErrForbidden
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("user.get", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Role != nil {
		role := entity.Role(*in.Role)
		if !role.Valid() {
			return nil, domain.Invalid("role", "rol desconocido")
		}
		user.Role = role
	}
	if in.ClearLocation {
		user.Location = nil
	} else if in.Location != nil {
		loc, err := parseOptionalLocation(in.Location)
		if err != nil {
			return nil, err
		}
		user.Location = loc
	}
	if in.IsActive != nil {
		if !*in.IsActive && user.ID == actor.UserID {
			return nil, domain.Invalid("is_active", "no puedes desactivar tu propio usuario")
		}
		user.IsActive = *in.IsActive
	}
	if in.Password != nil {
		if len(*in.Password) < MinPasswordLength {
			return nil, domain.Invalid("password", "mínimo 8 caracteres")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, domain.Persistence("user.update", err)
	}
	uc.audit.Record(ctx, actor, entity.EntityUser, user.ID, user.Location, entity.NewUserDetails(entity.ActionUserUpdated, user))
	return dto.UserFromEntity(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("user.get", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return dto.UserFromEntity(user), nil
}

// List lista usuarios con paginación.
func (uc *UserUseCase) List(ctx context.Context, actor entity.Actor, page dto.PageRequest) (*dto.UserListResponse, error) {
	if !policy.CanManageUsers(actor.Role) {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.Persistence("user.list", err)
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *dto.UserFromEntity(u))
	}
	return &dto.UserListResponse{Items: items, Page: page.Response()}, nil
}

func parseOptionalLocation(s *string) (*entity.Location, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	loc, ok := entity.ParseLocation(strings.TrimSpace(*s))
	if !ok {
		return nil, domain.Invalid("location", "ubicación desconocida")
	}
	return &loc, nil
}
