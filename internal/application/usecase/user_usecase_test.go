package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/application/usecase"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/memory"
)

func strPtr(s string) *string { return &s }

func TestUserCreate_HasheaYAudita(t *testing.T) {
	repos := memory.NewStore().Repos()
	uc := usecase.NewUserUseCase(repos.Users, audit.NewWriter(repos.Audit, zerolog.Nop()))
	ctx := context.Background()

	u, err := uc.Create(ctx, admin, dto.CreateUserRequest{
		Email: "Ana@Bar.cl", Password: "clave-segura", FullName: "Ana", Role: "bartender", Location: strPtr("bar_a"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@bar.cl", u.Email)
	require.NotNil(t, u.Location)
	assert.Equal(t, "bar_a", *u.Location)

	stored, err := repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave-segura")))

	_, err = uc.Create(ctx, admin, dto.CreateUserRequest{Email: "ana@bar.cl", Password: "clave-segura", Role: "admin"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	action := entity.ActionUserCreated
	entries, err := repos.Audit.List(ctx, repository.AuditFilter{Action: &action})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUserCreate_Validaciones(t *testing.T) {
	repos := memory.NewStore().Repos()
	uc := usecase.NewUserUseCase(repos.Users, audit.NewWriter(repos.Audit, zerolog.Nop()))
	ctx := context.Background()

	_, err := uc.Create(ctx, bodeguero, dto.CreateUserRequest{Email: "a@b.cl", Password: "clave-segura", Role: "admin"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.Create(ctx, admin, dto.CreateUserRequest{Email: "a@b", Password: "clave-segura", Role: "admin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, admin, dto.CreateUserRequest{Email: "a@b.cl", Password: "corta", Role: "admin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, admin, dto.CreateUserRequest{Email: "a@b.cl", Password: "clave-segura", Role: "cajero"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, admin, dto.CreateUserRequest{Email: "a@b.cl", Password: "clave-segura", Role: "bartender", Location: strPtr("terraza")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserUpdate(t *testing.T) {
	repos := memory.NewStore().Repos()
	uc := usecase.NewUserUseCase(repos.Users, audit.NewWriter(repos.Audit, zerolog.Nop()))
	ctx := context.Background()
	u, err := uc.Create(ctx, admin, dto.CreateUserRequest{Email: "b@bar.cl", Password: "clave-segura", Role: "bodeguero", Location: strPtr("bar_b")})
	require.NoError(t, err)

	off := false
	updated, err := uc.Update(ctx, admin, u.ID, dto.UpdateUserRequest{ClearLocation: true, IsActive: &off, Role: strPtr("bartender")})
	require.NoError(t, err)
	assert.Nil(t, updated.Location)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "bartender", updated.Role)

	_, err = uc.Update(ctx, admin, admin.UserID, dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	list, err := uc.List(ctx, admin, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)
}
