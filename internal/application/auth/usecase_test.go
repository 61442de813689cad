package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-bares/internal/application/auth"
	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-bares/pkg/jwt"
)

func setup(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	repos := memory.NewStore().Repos()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave-segura"), bcrypt.MinCost)
	require.NoError(t, err)
	barA := entity.LocationBarA
	require.NoError(t, repos.Users.Create(context.Background(), &entity.User{
		ID: "u1", Email: "ana@bar.cl", PasswordHash: string(hash), FullName: "Ana", Role: entity.RoleBartender, Location: &barA, IsActive: true,
	}))
	require.NoError(t, repos.Users.Create(context.Background(), &entity.User{
		ID: "u2", Email: "baja@bar.cl", PasswordHash: string(hash), FullName: "Baja", Role: entity.RoleAdmin, IsActive: false,
	}))
	return auth.NewAuthUseCase(repos.Users, auth.JWTConfig{Secret: "s3cret", ExpMinutes: 10, Issuer: "test"})
}

func TestLogin_TokenConRolYUbicacion(t *testing.T) {
	uc := setup(t)
	res, err := uc.Login(context.Background(), dto.LoginRequest{Email: " ANA@bar.cl", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)

	claims, err := jwt.Parse("s3cret", res.Token)
	require.NoError(t, err)
	assert.Equal(t, "bartender", claims.Role)
	assert.Equal(t, "bar_a", claims.Location)
	assert.Equal(t, "Ana", claims.Name)
}

func TestLogin_Fallos(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@bar.cl", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@bar.cl", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "baja@bar.cl", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Login(ctx, dto.LoginRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
