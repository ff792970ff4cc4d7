package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	check := &pgconn.PgError{Code: "23514"}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isCheckViolation(unique))
	assert.True(t, isCheckViolation(check))
	assert.True(t, isCheckViolation(&pgconn.PgError{Code: "22003"}))
	assert.False(t, isUniqueViolation(errors.New("otro")))
	assert.Equal(t, "", pgErrorCode(nil))
}
