package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/invoice-builder/internal/decimal"
)

// Currency symbols used by the editing summary and the printed preview
const (
	FormCurrencySymbol    = "₹"
	PreviewCurrencySymbol = "$"
)

// DateLayout renders the invoice date as day/month/year
const DateLayout = "02/01/2006"

// DefaultInvoiceNumber is the number every new session starts from
const DefaultInvoiceNumber = "1"

// Field names used in validation errors
const (
	FieldName            = "name"
	FieldQuantity        = "quantity"
	FieldPrice           = "price"
	FieldInvoiceNumber   = "invoice_number"
	FieldTaxPercent      = "tax"
	FieldDiscountPercent = "discount"
	FieldDate            = "date"
)

// defaultUnitPrice is the price a freshly added row starts with
var defaultUnitPrice = decimal.RequireFromString("1.00")

// LineItem represents one invoice row
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Amount returns unit price times quantity
func (li LineItem) Amount() decimal.Decimal {
	return money.LineAmount(li.UnitPrice, li.Quantity)
}

// IsBlank reports whether the row has no name. Blank rows never count
// towards the subtotal.
func (li LineItem) IsBlank() bool {
	return strings.TrimSpace(li.Name) == ""
}

func newLineItem(id string) LineItem {
	return LineItem{
		ID:        id,
		Quantity:  1,
		UnitPrice: defaultUnitPrice,
	}
}

// ItemDraft is a validated-on-import row, e.g. from the LLM extractor
type ItemDraft struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Summary holds the derived totals of an invoice
type Summary struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	DiscountRate    decimal.Decimal `json:"discount_rate"`
	Total           decimal.Decimal `json:"total"`
}

// ComputeSummary derives totals from the items and the two percentages.
// It is pure: the same input always yields the same Summary.
func ComputeSummary(items []LineItem, taxPercent, discountPercent decimal.Decimal) Summary {
	amounts := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		if item.IsBlank() {
			continue
		}
		amounts = append(amounts, item.Amount())
	}

	subtotal := money.Sum(amounts)
	taxRate := money.Percentage(subtotal, taxPercent)
	discountRate := money.Percentage(subtotal, discountPercent)

	return Summary{
		Subtotal:        subtotal,
		TaxPercent:      taxPercent,
		DiscountPercent: discountPercent,
		TaxRate:         taxRate,
		DiscountRate:    discountRate,
		Total:           subtotal.Sub(discountRate).Add(taxRate),
	}
}

// ItemUpdate is a single field edit applied to a LineItem
type ItemUpdate interface {
	apply(item *LineItem) error
}

// SetName replaces the item name. Any text is accepted.
type SetName struct {
	Value string
}

func (u SetName) apply(item *LineItem) error {
	item.Name = u.Value
	return nil
}

// SetQty parses Raw as a whole quantity of at least one
type SetQty struct {
	Raw string
}

func (u SetQty) apply(item *LineItem) error {
	qty, err := ParseQuantity(u.Raw)
	if err != nil {
		if fe, ok := err.(*InvalidFieldError); ok {
			fe.ItemID = item.ID
		}
		return err
	}
	item.Quantity = qty
	return nil
}

// SetPrice parses Raw as a non-negative decimal price
type SetPrice struct {
	Raw string
}

func (u SetPrice) apply(item *LineItem) error {
	price, err := ParsePrice(u.Raw)
	if err != nil {
		if fe, ok := err.(*InvalidFieldError); ok {
			fe.ItemID = item.ID
		}
		return err
	}
	item.UnitPrice = price
	return nil
}

// ParseItemUpdate maps a form field name to its typed update
func ParseItemUpdate(field, value string) (ItemUpdate, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "name":
		return SetName{Value: value}, nil
	case "qty", "quantity":
		return SetQty{Raw: value}, nil
	case "price", "unit_price":
		return SetPrice{Raw: value}, nil
	default:
		return nil, NewInvalidFieldError("", field, nil, "unknown field", nil)
	}
}

// ParseQuantity validates a quantity entered as text
func ParseQuantity(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	qty, err := strconv.Atoi(s)
	if err != nil {
		return 0, NewInvalidFieldError("", FieldQuantity, raw, "must be a whole number", err)
	}
	if qty < 1 {
		return 0, NewInvalidFieldError("", FieldQuantity, raw, "must be at least 1", nil)
	}
	return qty, nil
}

// ParsePrice validates a unit price entered as text
func ParsePrice(raw string) (decimal.Decimal, error) {
	price, err := money.FromString(strings.TrimSpace(raw))
	if err != nil {
		return money.Zero, NewInvalidFieldError("", FieldPrice, raw, "must be a number", err)
	}
	if !money.IsNonNegative(price) {
		return money.Zero, NewInvalidFieldError("", FieldPrice, raw, "must not be negative", nil)
	}
	return price, nil
}

// ParsePercent validates a tax or discount percentage. Empty input means zero.
func ParsePercent(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return money.Zero, nil
	}
	pct, err := money.FromString(s)
	if err != nil {
		return money.Zero, NewInvalidFieldError("", field, raw, "must be a number", err)
	}
	if !money.IsNonNegative(pct) {
		return money.Zero, NewInvalidFieldError("", field, raw, "must not be negative", nil)
	}
	return pct, nil
}

// Snapshot is an immutable copy of a draft and its totals, the input to
// preview rendering and export.
type Snapshot struct {
	Number       string     `json:"invoice_number"`
	CashierName  string     `json:"cashier_name"`
	CustomerName string     `json:"customer_name"`
	Date         time.Time  `json:"date"`
	Items        []LineItem `json:"items"`
	Summary      Summary    `json:"summary"`
}

// FormattedDate returns the invoice date as shown on the form
func (s *Snapshot) FormattedDate() string {
	return s.Date.Format(DateLayout)
}
