package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-builder/internal/model"
)

func item(name string, qty int, price string) model.LineItem {
	return model.LineItem{
		ID:        name,
		Name:      name,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func TestComputeSummary_WidgetScenario(t *testing.T) {
	items := []model.LineItem{
		item("Widget", 3, "2.00"),
		{ID: "blank", Name: "", Quantity: 5, UnitPrice: decimal.RequireFromString("9.99")},
	}

	s := model.ComputeSummary(items, decimal.NewFromInt(10), decimal.Zero)

	assert.Equal(t, "6.00", s.Subtotal.StringFixed(2))
	assert.Equal(t, "0.60", s.TaxRate.StringFixed(2))
	assert.Equal(t, "0.00", s.DiscountRate.StringFixed(2))
	assert.Equal(t, "6.60", s.Total.StringFixed(2))
}

func TestComputeSummary_ExcludesBlankNames(t *testing.T) {
	tests := []struct {
		name     string
		items    []model.LineItem
		expected string
	}{
		{
			name:     "empty name",
			items:    []model.LineItem{{Name: "", Quantity: 100, UnitPrice: decimal.NewFromInt(100)}},
			expected: "0",
		},
		{
			name:     "whitespace name",
			items:    []model.LineItem{{Name: " \t\n", Quantity: 2, UnitPrice: decimal.NewFromInt(7)}},
			expected: "0",
		},
		{
			name: "mixed",
			items: []model.LineItem{
				item("Bolt", 4, "0.25"),
				{Name: "  ", Quantity: 9, UnitPrice: decimal.NewFromInt(9)},
				item("Nut", 2, "0.10"),
			},
			expected: "1.2",
		},
		{
			name:     "no items",
			items:    nil,
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := model.ComputeSummary(tt.items, decimal.Zero, decimal.Zero)
			assert.True(t, s.Subtotal.Equal(decimal.RequireFromString(tt.expected)),
				"got %s, want %s", s.Subtotal, tt.expected)
		})
	}
}

func TestComputeSummary_TotalIsExact(t *testing.T) {
	items := []model.LineItem{
		item("A", 3, "0.33"),
		item("B", 7, "19.99"),
		item("C", 1, "0.01"),
	}

	rates := []struct{ tax, discount string }{
		{"0", "0"},
		{"7.25", "0"},
		{"0", "12.5"},
		{"18", "3.333"},
		{"100", "100"},
	}

	for _, r := range rates {
		t.Run(r.tax+"/"+r.discount, func(t *testing.T) {
			s := model.ComputeSummary(items, decimal.RequireFromString(r.tax), decimal.RequireFromString(r.discount))
			expected := s.Subtotal.Sub(s.DiscountRate).Add(s.TaxRate)
			assert.True(t, s.Total.Equal(expected), "total %s != %s", s.Total, expected)
		})
	}
}

func TestComputeSummary_Deterministic(t *testing.T) {
	items := []model.LineItem{item("A", 2, "3.10"), item("B", 1, "4.05")}
	first := model.ComputeSummary(items, decimal.NewFromInt(5), decimal.NewFromInt(2))
	second := model.ComputeSummary(items, decimal.NewFromInt(5), decimal.NewFromInt(2))
	assert.Equal(t, first, second)
}

func TestLineItem_Amount(t *testing.T) {
	li := item("Widget", 3, "2.50")
	assert.True(t, li.Amount().Equal(decimal.RequireFromString("7.5")))
}

func TestIncrementString(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1", "2"},
		{"9", "10"},
		{"99", "100"},
		{"A99", "A100"},
		{"A009", "A010"},
		{"INV-0041", "INV-0042"},
		{"2026-12", "2026-13"},
		{"ABC", "ABC1"},
		{"", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.IncrementString(tt.in))
		})
	}
}

func TestParseItemUpdate(t *testing.T) {
	u, err := model.ParseItemUpdate("qty", "4")
	require.NoError(t, err)
	assert.Equal(t, model.SetQty{Raw: "4"}, u)

	u, err = model.ParseItemUpdate("price", "1.5")
	require.NoError(t, err)
	assert.Equal(t, model.SetPrice{Raw: "1.5"}, u)

	u, err = model.ParseItemUpdate("name", "Gear")
	require.NoError(t, err)
	assert.Equal(t, model.SetName{Value: "Gear"}, u)

	_, err = model.ParseItemUpdate("colour", "red")
	var fe *model.InvalidFieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "colour", fe.Field)
}

func TestParsePercent(t *testing.T) {
	pct, err := model.ParsePercent(model.FieldTaxPercent, "")
	require.NoError(t, err)
	assert.True(t, pct.IsZero())

	pct, err = model.ParsePercent(model.FieldTaxPercent, " 12.5 ")
	require.NoError(t, err)
	assert.True(t, pct.Equal(decimal.RequireFromString("12.5")))

	_, err = model.ParsePercent(model.FieldDiscountPercent, "ten")
	var fe *model.InvalidFieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, model.FieldDiscountPercent, fe.Field)

	_, err = model.ParsePercent(model.FieldDiscountPercent, "-1")
	require.ErrorAs(t, err, &fe)
}

func TestSnapshot_FormattedDate(t *testing.T) {
	s := model.Snapshot{Date: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)}
	assert.Equal(t, "05/03/2026", s.FormattedDate())
}

func TestInvalidFieldError(t *testing.T) {
	err := model.NewInvalidFieldError("abc123", model.FieldQuantity, "x", "must be a whole number", nil)

	require.Contains(t, err.Error(), "quantity[abc123]")
	require.Contains(t, err.Error(), "value=x")
	require.Contains(t, err.Error(), "whole number")
}

func TestCaptureError_WithCause(t *testing.T) {
	cause := assert.AnError
	err := model.NewCaptureError("render preview", cause)

	require.Contains(t, err.Error(), "capture failed")
	require.ErrorIs(t, err, cause)
}

func TestExportError_WithCause(t *testing.T) {
	cause := errors.New("disk full")
	err := model.NewExportError("writing", "save document", cause)

	require.Contains(t, err.Error(), "[writing]")
	require.ErrorIs(t, err, cause)
}
