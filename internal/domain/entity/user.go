package entity

import "time"

// Role rol del usuario dentro de la operación.
type Role string

// Roles válidos para User.
const (
	RoleAdmin     Role = "admin"
	RoleBodeguero Role = "bodeguero"
	RoleBartender Role = "bartender"
)

// Valid indica si el rol es conocido.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleBodeguero || r == RoleBartender
}

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FullName     string
	Role         Role
	Location     *Location // ubicación asignada (nil para admin o bodeguero general)
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identidad explícita de quien ejecuta una operación del núcleo.
// Reemplaza la sesión global: cada caso de uso la recibe como parámetro.
type Actor struct {
	UserID   string
	Name     string
	Role     Role
	Location *Location
}
