package product_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/product"
)

func ptr[T any](v T) *T { return &v }

func validInput() product.Input {
	return product.Input{
		EAN:         ptr(int64(111)),
		Name:        ptr("Apple"),
		Description: ptr("Fruta fresca"),
		Price:       ptr(decimal.RequireFromString("2.50")),
		Quantity:    ptr(int64(10)),
	}
}

func validationErr(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	return ve
}

func TestValidateNewProduct_Valid(t *testing.T) {
	in := validInput()
	in.Name = ptr("  Apple  ")
	p, err := product.ValidateNewProduct(in, product.DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, int64(111), p.EAN)
	assert.Equal(t, "Apple", p.Name)
	assert.Equal(t, "Fruta fresca", p.Description)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, int64(10), p.Quantity)
}

func TestValidateNewProduct_PriceBoundaries(t *testing.T) {
	for _, raw := range []string{"0.01", "2.500", "9999999999.99"} {
		t.Run(raw, func(t *testing.T) {
			in := validInput()
			in.Price = ptr(decimal.RequireFromString(raw))
			p, err := product.ValidateNewProduct(in, product.DefaultLimits())
			require.NoError(t, err)
			assert.True(t, p.Price.Equal(decimal.RequireFromString(raw)))
		})
	}
}

func TestValidateNewProduct_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*product.Input)
		kind   domain.ValidationKind
		field  string
	}{
		{"ean ausente", func(in *product.Input) { in.EAN = nil }, domain.InvalidKey, "ean"},
		{"ean cero", func(in *product.Input) { in.EAN = ptr(int64(0)) }, domain.InvalidKey, "ean"},
		{"ean negativo", func(in *product.Input) { in.EAN = ptr(int64(-4)) }, domain.InvalidKey, "ean"},
		{"name ausente", func(in *product.Input) { in.Name = nil }, domain.InvalidField, "name"},
		{"name en blanco", func(in *product.Input) { in.Name = ptr("   ") }, domain.InvalidField, "name"},
		{"name corto", func(in *product.Input) { in.Name = ptr("ab") }, domain.InvalidField, "name"},
		{"name largo", func(in *product.Input) { in.Name = ptr(strings.Repeat("a", 51)) }, domain.InvalidField, "name"},
		{"description ausente", func(in *product.Input) { in.Description = nil }, domain.InvalidField, "description"},
		{"description corta", func(in *product.Input) { in.Description = ptr("abcd") }, domain.InvalidField, "description"},
		{"description larga", func(in *product.Input) { in.Description = ptr(strings.Repeat("d", 51)) }, domain.InvalidField, "description"},
		{"price ausente", func(in *product.Input) { in.Price = nil }, domain.InvalidField, "price"},
		{"price cero", func(in *product.Input) { in.Price = ptr(decimal.Zero) }, domain.InvalidField, "price"},
		{"price negativo", func(in *product.Input) { in.Price = ptr(decimal.NewFromInt(-1)) }, domain.InvalidField, "price"},
		{"price con tres decimales", func(in *product.Input) { in.Price = ptr(decimal.RequireFromString("2.999")) }, domain.InvalidField, "price"},
		{"price en el límite", func(in *product.Input) { in.Price = ptr(decimal.RequireFromString("1e10")) }, domain.InvalidField, "price"},
		{"price sobre el límite", func(in *product.Input) { in.Price = ptr(decimal.RequireFromString("12345678901.50")) }, domain.InvalidField, "price"},
		{"quantity ausente", func(in *product.Input) { in.Quantity = nil }, domain.InvalidField, "quantity"},
		{"quantity cero", func(in *product.Input) { in.Quantity = ptr(int64(0)) }, domain.InvalidField, "quantity"},
		{"quantity sobre el techo", func(in *product.Input) { in.Quantity = ptr(int64(1001)) }, domain.InvalidField, "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := product.ValidateNewProduct(in, product.DefaultLimits())
			ve := validationErr(t, err)
			assert.Equal(t, tt.kind, ve.Kind)
			assert.Equal(t, tt.field, ve.Field)
			assert.NotEmpty(t, ve.Message)
		})
	}
}

func TestValidateNewProduct_Boundaries(t *testing.T) {
	in := validInput()
	in.Name = ptr(strings.Repeat("ñ", 50))
	in.Description = ptr("abcde")
	in.Quantity = ptr(int64(1000))
	_, err := product.ValidateNewProduct(in, product.DefaultLimits())
	require.NoError(t, err)

	in.Quantity = ptr(int64(1))
	in.Name = ptr("abc")
	_, err = product.ValidateNewProduct(in, product.DefaultLimits())
	require.NoError(t, err)
}

func TestValidateNewProduct_FirstFailureWins(t *testing.T) {
	in := product.Input{}
	_, err := product.ValidateNewProduct(in, product.DefaultLimits())
	assert.Equal(t, domain.InvalidKey, validationErr(t, err).Kind)

	in.EAN = ptr(int64(5))
	in.Name = ptr("x")
	_, err = product.ValidateNewProduct(in, product.DefaultLimits())
	assert.Equal(t, "name", validationErr(t, err).Field)

	in.Name = ptr("Apple")
	_, err = product.ValidateNewProduct(in, product.DefaultLimits())
	assert.Equal(t, "description", validationErr(t, err).Field)

	in.Description = ptr("Fruta fresca")
	_, err = product.ValidateNewProduct(in, product.DefaultLimits())
	assert.Equal(t, "price", validationErr(t, err).Field)

	in.Price = ptr(decimal.NewFromInt(3))
	_, err = product.ValidateNewProduct(in, product.DefaultLimits())
	assert.Equal(t, "quantity", validationErr(t, err).Field)
}

func TestValidateNewProduct_CustomCeiling(t *testing.T) {
	in := validInput()
	in.Quantity = ptr(int64(60))
	_, err := product.ValidateNewProduct(in, product.Limits{MaxQuantity: 50})
	assert.Equal(t, "quantity", validationErr(t, err).Field)

	_, err = product.ValidateNewProduct(in, product.Limits{})
	require.NoError(t, err, "sin techo configurado se usa el valor por defecto")
}
