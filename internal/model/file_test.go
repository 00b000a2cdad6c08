package model_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-builder/internal/model"
)

func TestDraftFile_Build(t *testing.T) {
	f, err := model.ReadDraftFile(strings.NewReader(`{
		"invoice_number": "A99",
		"cashier_name": "Ana",
		"customer_name": "Bo",
		"date": "2026-10-18",
		"tax_percent": 10,
		"items": [
			{"name": "Widget", "quantity": 3, "price": "2.00"},
			{"name": "Gadget"},
			{"name": "", "quantity": 9, "price": 9}
		]
	}`))
	require.NoError(t, err)

	d, err := f.Build()
	require.NoError(t, err)

	snap := d.Snapshot()
	assert.Equal(t, "A99", snap.Number)
	assert.Equal(t, "Ana", snap.CashierName)
	assert.Equal(t, "Bo", snap.CustomerName)
	assert.Equal(t, "18/10/2026", snap.FormattedDate())

	require.Len(t, snap.Items, 3)
	assert.Equal(t, 3, snap.Items[0].Quantity)
	assert.Equal(t, 1, snap.Items[1].Quantity, "defaults kept")
	assert.True(t, snap.Items[2].IsBlank())

	// 6.00 + 1.00, blank row excluded
	assert.True(t, decimal.RequireFromString("7.00").Equal(snap.Summary.Subtotal))
	assert.True(t, decimal.RequireFromString("7.70").Equal(snap.Summary.Total))
}

func TestDraftFile_Empty(t *testing.T) {
	f, err := model.ReadDraftFile(strings.NewReader(`{}`))
	require.NoError(t, err)

	d, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultInvoiceNumber, d.Number())
	assert.Len(t, d.Items(), 1)
}

func TestDraftFile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"bad date", `{"date": "18/10/2026"}`, model.FieldDate},
		{"negative tax", `{"tax_percent": -1}`, model.FieldTaxPercent},
		{"fractional quantity", `{"items": [{"name": "A", "quantity": 1.5}]}`, model.FieldQuantity},
		{"negative price", `{"items": [{"name": "A", "price": -2}]}`, model.FieldPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := model.ReadDraftFile(strings.NewReader(tt.input))
			require.NoError(t, err)

			_, err = f.Build()
			var fe *model.InvalidFieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestReadDraftFile_UnknownKey(t *testing.T) {
	_, err := model.ReadDraftFile(strings.NewReader(`{"seller": "x"}`))
	require.Error(t, err)
}
