package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE que el adaptador traduce a errores de dominio.
const (
	sqlStateUniqueViolation = "23505"
	sqlStateCheckViolation  = "23514"
	sqlStateOutOfRange      = "22003"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (PK de EAN).
func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == sqlStateUniqueViolation
}

// isCheckViolation verifica si un error viola un CHECK (quantity >= 0, price > 0, ean > 0)
// o un valor numérico fuera del rango de la columna.
func isCheckViolation(err error) bool {
	switch pgErrorCode(err) {
	case sqlStateCheckViolation, sqlStateOutOfRange:
		return true
	}
	return false
}
