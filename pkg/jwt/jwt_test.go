package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-bares/pkg/jwt"
)

func TestGenerateYParse(t *testing.T) {
	token, err := jwt.Generate("secreto", jwt.Identity{UserID: "u1", Name: "Ana", Role: "bartender", Location: "bar_a"}, "inventario-bares", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, "bartender", claims.Role)
	assert.Equal(t, "bar_a", claims.Location)
	assert.Equal(t, "inventario-bares", claims.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("secreto", jwt.Identity{UserID: "u1", Role: "admin"}, "x", 5)
	require.NoError(t, err)
	_, err = jwt.Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate("secreto", jwt.Identity{UserID: "u1", Role: "admin"}, "x", -1)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", jwt.Identity{UserID: "u1"}, "x", 5)
	assert.Error(t, err)
}
