package model

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/invoice-builder/internal/decimal"
	"github.com/rezonia/invoice-builder/internal/ids"
)

// Draft holds the mutable state of one invoice editing session.
// All methods are safe for concurrent use.
type Draft struct {
	mu sync.RWMutex

	number          string
	cashierName     string
	customerName    string
	date            time.Time
	taxPercent      decimal.Decimal
	discountPercent decimal.Decimal
	items           []LineItem

	ids *ids.Generator
}

// DraftOption configures a Draft
type DraftOption func(*Draft)

// WithIDGenerator sets the generator used for new line item ids
func WithIDGenerator(g *ids.Generator) DraftOption {
	return func(d *Draft) {
		d.ids = g
	}
}

// WithDate sets the invoice date. Defaults to today.
func WithDate(t time.Time) DraftOption {
	return func(d *Draft) {
		d.date = t
	}
}

// NewDraft creates a session with invoice number 1 and one blank item
func NewDraft(opts ...DraftOption) *Draft {
	d := &Draft{
		number:          DefaultInvoiceNumber,
		date:            time.Now(),
		taxPercent:      money.Zero,
		discountPercent: money.Zero,
		ids:             ids.NewGenerator(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.items = []LineItem{newLineItem(d.nextID())}
	return d
}

// nextID must be called with d.mu held for writing (or before d is shared)
func (d *Draft) nextID() string {
	return d.ids.Next(func(id string) bool {
		return d.indexOf(id) >= 0
	})
}

func (d *Draft) indexOf(id string) int {
	for i := range d.items {
		if d.items[i].ID == id {
			return i
		}
	}
	return -1
}

// AddItem appends a row with quantity 1 and price 1.00
func (d *Draft) AddItem() LineItem {
	d.mu.Lock()
	defer d.mu.Unlock()

	item := newLineItem(d.nextID())
	d.items = append(d.items, item)
	return item
}

// RemoveItem deletes the row with the given id. Unknown ids are ignored.
func (d *Draft) RemoveItem(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(id)
	if idx < 0 {
		return
	}
	d.items = append(d.items[:idx], d.items[idx+1:]...)
}

// EditItem applies one field update to the row with the given id.
// A rejected update leaves the row unchanged.
func (d *Draft) EditItem(id string, update ItemUpdate) (LineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(id)
	if idx < 0 {
		return LineItem{}, ErrItemNotFound
	}

	edited := d.items[idx]
	if err := update.apply(&edited); err != nil {
		return d.items[idx], err
	}
	d.items[idx] = edited
	return edited, nil
}

// ImportItems appends already parsed rows. Every row is validated first and
// nothing is added if one of them is invalid. A lone blank row is replaced.
func (d *Draft) ImportItems(drafts []ItemDraft) ([]LineItem, error) {
	for _, in := range drafts {
		if in.Quantity < 1 {
			return nil, NewInvalidFieldError("", FieldQuantity, in.Quantity, "must be at least 1", nil)
		}
		if !money.IsNonNegative(in.UnitPrice) {
			return nil, NewInvalidFieldError("", FieldPrice, in.UnitPrice.String(), "must not be negative", nil)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.items) == 1 && d.items[0].IsBlank() && len(drafts) > 0 {
		d.items = d.items[:0]
	}

	added := make([]LineItem, 0, len(drafts))
	for _, in := range drafts {
		item := LineItem{
			ID:        d.nextID(),
			Name:      strings.TrimSpace(in.Name),
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		}
		d.items = append(d.items, item)
		added = append(added, item)
	}
	return added, nil
}

// AdvanceToNextInvoice increments the invoice number and resets the rows
// to a single blank item. Names and rates are kept.
func (d *Draft) AdvanceToNextInvoice() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.number = IncrementString(d.number)
	d.items = []LineItem{newLineItem(d.nextID())}
	return d.number
}

// SetInvoiceNumber replaces the invoice number
func (d *Draft) SetInvoiceNumber(raw string) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NewInvalidFieldError("", FieldInvoiceNumber, raw, "must not be empty", nil)
	}

	d.mu.Lock()
	d.number = s
	d.mu.Unlock()
	return nil
}

// SetCashier sets the cashier name
func (d *Draft) SetCashier(name string) {
	d.mu.Lock()
	d.cashierName = name
	d.mu.Unlock()
}

// SetCustomer sets the customer name
func (d *Draft) SetCustomer(name string) {
	d.mu.Lock()
	d.customerName = name
	d.mu.Unlock()
}

// SetTaxPercent sets the tax percentage from form input
func (d *Draft) SetTaxPercent(raw string) error {
	pct, err := ParsePercent(FieldTaxPercent, raw)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.taxPercent = pct
	d.mu.Unlock()
	return nil
}

// SetDiscountPercent sets the discount percentage from form input
func (d *Draft) SetDiscountPercent(raw string) error {
	pct, err := ParsePercent(FieldDiscountPercent, raw)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.discountPercent = pct
	d.mu.Unlock()
	return nil
}

// Number returns the current invoice number
func (d *Draft) Number() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.number
}

// Items returns a copy of the current rows
func (d *Draft) Items() []LineItem {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]LineItem(nil), d.items...)
}

// Summary derives totals from the current state
func (d *Draft) Summary() Summary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return ComputeSummary(d.items, d.taxPercent, d.discountPercent)
}

// Snapshot copies the current state for rendering and export
func (d *Draft) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	items := append([]LineItem(nil), d.items...)
	return &Snapshot{
		Number:       d.number,
		CashierName:  d.cashierName,
		CustomerName: d.customerName,
		Date:         d.date,
		Items:        items,
		Summary:      ComputeSummary(items, d.taxPercent, d.discountPercent),
	}
}
