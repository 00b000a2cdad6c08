package model

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// FileDateLayout is the date format accepted in draft files
const FileDateLayout = "2006-01-02"

// DraftFile is the on-disk form of an invoice draft. Values are kept as
// text and go through the same parsing as form input.
type DraftFile struct {
	InvoiceNumber   string          `json:"invoice_number"`
	CashierName     string          `json:"cashier_name"`
	CustomerName    string          `json:"customer_name"`
	Date            string          `json:"date,omitempty"`
	TaxPercent      json.Number     `json:"tax_percent,omitempty"`
	DiscountPercent json.Number     `json:"discount_percent,omitempty"`
	Items           []DraftFileItem `json:"items"`
}

// DraftFileItem is one line item row. Empty quantity or price keeps the
// defaults of a new row.
type DraftFileItem struct {
	Name     string      `json:"name"`
	Quantity json.Number `json:"quantity,omitempty"`
	Price    json.Number `json:"price,omitempty"`
}

// ReadDraftFile decodes a draft file, rejecting unknown keys
func ReadDraftFile(r io.Reader) (*DraftFile, error) {
	var f DraftFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &f, nil
}

// Build replays the file onto a new Draft
func (f *DraftFile) Build(opts ...DraftOption) (*Draft, error) {
	if f.Date != "" {
		date, err := time.Parse(FileDateLayout, f.Date)
		if err != nil {
			return nil, NewInvalidFieldError("", FieldDate, f.Date, "must be YYYY-MM-DD", err)
		}
		opts = append(opts, WithDate(date))
	}

	d := NewDraft(opts...)

	if f.InvoiceNumber != "" {
		if err := d.SetInvoiceNumber(f.InvoiceNumber); err != nil {
			return nil, err
		}
	}
	d.SetCashier(f.CashierName)
	d.SetCustomer(f.CustomerName)
	if err := d.SetTaxPercent(f.TaxPercent.String()); err != nil {
		return nil, err
	}
	if err := d.SetDiscountPercent(f.DiscountPercent.String()); err != nil {
		return nil, err
	}

	for i, in := range f.Items {
		var row LineItem
		if i == 0 {
			row = d.Items()[0]
		} else {
			row = d.AddItem()
		}

		updates := []ItemUpdate{SetName{Value: in.Name}}
		if in.Quantity != "" {
			updates = append(updates, SetQty{Raw: in.Quantity.String()})
		}
		if in.Price != "" {
			updates = append(updates, SetPrice{Raw: in.Price.String()})
		}
		for _, u := range updates {
			if _, err := d.EditItem(row.ID, u); err != nil {
				return nil, fmt.Errorf("item %d: %w", i+1, err)
			}
		}
	}

	return d, nil
}
