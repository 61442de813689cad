package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrNoRecipients       = errors.New("sin destinatarios válidos")
)

// ValidationError describe un dato de entrada rechazado antes de cualquier mutación.
// errors.Is(err, ErrInvalidInput) es verdadero para cualquier ValidationError.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Reason
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError envuelve una falla del almacenamiento. La transacción que la produjo
// se revierte completa, por lo que el ledger queda sin cambios.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistencia: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence envuelve err como PersistenceError salvo que ya sea un error de dominio conocido.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	var ve *ValidationError
	if errors.As(err, &pe) || errors.As(err, &ve) {
		return err
	}
	for _, known := range []error{ErrNotFound, ErrInvalidTransition, ErrForbidden, ErrDuplicate, ErrConflict, ErrInvalidInput} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &PersistenceError{Op: op, Err: err}
}
