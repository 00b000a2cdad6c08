package model_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-builder/internal/ids"
	"github.com/rezonia/invoice-builder/internal/model"
)

// sequentialIDs hands out id-1, id-2, ...
func sequentialIDs() *ids.Generator {
	n := 0
	return ids.NewGenerator(ids.WithSource(func(int) string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
}

func TestNewDraft_Defaults(t *testing.T) {
	d := model.NewDraft()

	assert.Equal(t, "1", d.Number())
	items := d.Items()
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Name)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "1.00", items[0].UnitPrice.StringFixed(2))
	assert.Len(t, items[0].ID, ids.DefaultLength)
}

func TestDraft_AddItem(t *testing.T) {
	d := model.NewDraft(model.WithIDGenerator(sequentialIDs()))

	added := d.AddItem()
	assert.Equal(t, "id-2", added.ID)
	assert.Equal(t, 1, added.Quantity)
	assert.True(t, added.UnitPrice.Equal(decimal.NewFromInt(1)))

	items := d.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "id-1", items[0].ID)
	assert.Equal(t, "id-2", items[1].ID)
}

func TestDraft_AddItem_UniqueIDs(t *testing.T) {
	d := model.NewDraft()
	for i := 0; i < 200; i++ {
		d.AddItem()
	}

	seen := make(map[string]bool)
	for _, it := range d.Items() {
		assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
		seen[it.ID] = true
	}
}

func TestDraft_RemoveItem(t *testing.T) {
	d := model.NewDraft(model.WithIDGenerator(sequentialIDs()))
	d.AddItem()
	d.AddItem()

	d.RemoveItem("id-2")

	items := d.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "id-1", items[0].ID)
	assert.Equal(t, "id-3", items[1].ID)
}

func TestDraft_RemoveItem_Missing(t *testing.T) {
	d := model.NewDraft()

	assert.NotPanics(t, func() {
		d.RemoveItem("does-not-exist")
	})
	assert.Len(t, d.Items(), 1)
}

func TestDraft_EditItem(t *testing.T) {
	d := model.NewDraft(model.WithIDGenerator(sequentialIDs()))

	_, err := d.EditItem("id-1", model.SetName{Value: "Widget"})
	require.NoError(t, err)
	_, err = d.EditItem("id-1", model.SetQty{Raw: "3"})
	require.NoError(t, err)
	edited, err := d.EditItem("id-1", model.SetPrice{Raw: "2.00"})
	require.NoError(t, err)

	assert.Equal(t, "Widget", edited.Name)
	assert.Equal(t, 3, edited.Quantity)
	assert.Equal(t, "id-1", edited.ID)
	assert.Equal(t, "6.00", d.Summary().Subtotal.StringFixed(2))
}

func TestDraft_EditItem_RejectsInvalidNumbers(t *testing.T) {
	tests := []struct {
		name   string
		update model.ItemUpdate
		field  string
	}{
		{"non-numeric quantity", model.SetQty{Raw: "three"}, model.FieldQuantity},
		{"fractional quantity", model.SetQty{Raw: "1.5"}, model.FieldQuantity},
		{"zero quantity", model.SetQty{Raw: "0"}, model.FieldQuantity},
		{"empty quantity", model.SetQty{Raw: ""}, model.FieldQuantity},
		{"non-numeric price", model.SetPrice{Raw: "abc"}, model.FieldPrice},
		{"negative price", model.SetPrice{Raw: "-2"}, model.FieldPrice},
		{"empty price", model.SetPrice{Raw: " "}, model.FieldPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := model.NewDraft(model.WithIDGenerator(sequentialIDs()))
			_, err := d.EditItem("id-1", model.SetQty{Raw: "4"})
			require.NoError(t, err)
			_, err = d.EditItem("id-1", model.SetPrice{Raw: "2.5"})
			require.NoError(t, err)

			kept, err := d.EditItem("id-1", tt.update)

			var fe *model.InvalidFieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, "id-1", fe.ItemID)

			assert.Equal(t, 4, kept.Quantity)
			assert.True(t, kept.UnitPrice.Equal(decimal.RequireFromString("2.5")))
			assert.Equal(t, kept, d.Items()[0])
		})
	}
}

func TestDraft_EditItem_UnknownID(t *testing.T) {
	d := model.NewDraft()
	_, err := d.EditItem("nope", model.SetName{Value: "x"})
	require.ErrorIs(t, err, model.ErrItemNotFound)
}

func TestDraft_AdvanceToNextInvoice(t *testing.T) {
	d := model.NewDraft()
	d.SetCashier("Ana")
	require.NoError(t, d.SetTaxPercent("10"))
	first := d.Items()[0]
	_, err := d.EditItem(first.ID, model.SetName{Value: "Widget"})
	require.NoError(t, err)
	d.AddItem()
	d.AddItem()

	number := d.AdvanceToNextInvoice()
	assert.Equal(t, "2", number)
	assert.Equal(t, "2", d.Number())

	items := d.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].IsBlank())
	assert.Equal(t, 1, items[0].Quantity)
	assert.True(t, d.Summary().Subtotal.IsZero())

	snap := d.Snapshot()
	assert.Equal(t, "Ana", snap.CashierName)
	assert.True(t, snap.Summary.TaxPercent.Equal(decimal.NewFromInt(10)))
}

func TestDraft_AdvanceToNextInvoice_Rollover(t *testing.T) {
	d := model.NewDraft()
	require.NoError(t, d.SetInvoiceNumber("9"))
	assert.Equal(t, "10", d.AdvanceToNextInvoice())

	require.NoError(t, d.SetInvoiceNumber("A99"))
	assert.Equal(t, "A100", d.AdvanceToNextInvoice())
}

func TestDraft_SetInvoiceNumber_Empty(t *testing.T) {
	d := model.NewDraft()
	err := d.SetInvoiceNumber("  ")

	var fe *model.InvalidFieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, model.FieldInvoiceNumber, fe.Field)
	assert.Equal(t, "1", d.Number())
}

func TestDraft_Rates(t *testing.T) {
	d := model.NewDraft()
	require.NoError(t, d.SetTaxPercent("10"))
	require.NoError(t, d.SetDiscountPercent("5"))

	require.Error(t, d.SetTaxPercent("lots"))

	s := d.Summary()
	assert.True(t, s.TaxPercent.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.DiscountPercent.Equal(decimal.NewFromInt(5)))

	require.NoError(t, d.SetDiscountPercent(""))
	assert.True(t, d.Summary().DiscountPercent.IsZero())
}

func TestDraft_ImportItems(t *testing.T) {
	d := model.NewDraft(model.WithIDGenerator(sequentialIDs()))

	added, err := d.ImportItems([]model.ItemDraft{
		{Name: " Coffee ", Quantity: 2, UnitPrice: decimal.RequireFromString("3.50")},
		{Name: "Bagel", Quantity: 1, UnitPrice: decimal.RequireFromString("2.25")},
	})
	require.NoError(t, err)
	require.Len(t, added, 2)

	items := d.Items()
	require.Len(t, items, 2, "the lone blank row is replaced")
	assert.Equal(t, "Coffee", items[0].Name)
	assert.Equal(t, "9.25", d.Summary().Subtotal.StringFixed(2))
}

func TestDraft_ImportItems_AllOrNothing(t *testing.T) {
	d := model.NewDraft()

	_, err := d.ImportItems([]model.ItemDraft{
		{Name: "Ok", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		{Name: "Bad", Quantity: 0, UnitPrice: decimal.NewFromInt(1)},
	})

	var fe *model.InvalidFieldError
	require.ErrorAs(t, err, &fe)
	assert.Len(t, d.Items(), 1)
}

func TestDraft_Snapshot_IsCopy(t *testing.T) {
	date := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	d := model.NewDraft(model.WithDate(date))
	d.SetCustomer("Bob")
	id := d.Items()[0].ID
	_, err := d.EditItem(id, model.SetName{Value: "Widget"})
	require.NoError(t, err)

	snap := d.Snapshot()
	_, err = d.EditItem(id, model.SetName{Value: "Changed"})
	require.NoError(t, err)
	d.AddItem()

	assert.Equal(t, "Widget", snap.Items[0].Name)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, "Bob", snap.CustomerName)
	assert.Equal(t, "18/10/2026", snap.FormattedDate())
	assert.Equal(t, "1.00", snap.Summary.Total.StringFixed(2))
}

func TestDraft_ConcurrentCommands(t *testing.T) {
	d := model.NewDraft()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item := d.AddItem()
			_, _ = d.EditItem(item.ID, model.SetName{Value: "x"})
			_ = d.Summary()
		}()
	}
	wg.Wait()

	assert.Len(t, d.Items(), 51)
	assert.Equal(t, "50.00", d.Summary().Subtotal.StringFixed(2))
}

func BenchmarkDraftSummary(b *testing.B) {
	d := model.NewDraft()
	for i := 0; i < 100; i++ {
		item := d.AddItem()
		_, _ = d.EditItem(item.ID, model.SetName{Value: "item"})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Summary()
	}
}
