package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrImportInProgress  = errors.New("ya hay una importación en curso")
	ErrUnauthorized      = errors.New("no autorizado")
)

// ValidationKind distingue un EAN inválido de cualquier otro campo inválido.
type ValidationKind string

const (
	InvalidKey   ValidationKind = "INVALID_KEY"
	InvalidField ValidationKind = "INVALID_FIELD"
)

// ValidationError rechazo de la capa de validación. Nunca llega al store.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewKeyError construye un rechazo de EAN.
func NewKeyError(msg string) *ValidationError {
	return &ValidationError{Kind: InvalidKey, Field: "ean", Message: msg}
}

// NewFieldError construye un rechazo de campo.
func NewFieldError(field, msg string) *ValidationError {
	return &ValidationError{Kind: InvalidField, Field: field, Message: msg}
}
