package dto

import (
	"time"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
	Location *string `json:"location,omitempty"`
}

// UpdateUserRequest campos editables; nil no modifica.
type UpdateUserRequest struct {
	FullName      *string `json:"full_name,omitempty"`
	Role          *string `json:"role,omitempty"`
	Location      *string `json:"location,omitempty"`
	ClearLocation bool    `json:"clear_location,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
	Password      *string `json:"password,omitempty"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Location  *string   `json:"location,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserFromEntity construye la respuesta pública del usuario.
func UserFromEntity(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	var loc *string
	if u.Location != nil {
		s := string(*u.Location)
		loc = &s
	}
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		Location:  loc,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
