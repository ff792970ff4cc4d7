package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStockDirection(t *testing.T) {
	tests := []struct {
		in   string
		want StockDirection
		ok   bool
	}{
		{"DEBIT", StockDebit, true},
		{"credit", StockCredit, true},
		{" RETIRA_DO_ESTOQUE ", StockDebit, true},
		{"VOLTA_PARA_O_ESTOQUE", StockCredit, true},
		{"", "", false},
		{"TRANSFER", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStockDirection(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
