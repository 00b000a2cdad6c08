package llm

const SystemPromptItemExtractor = `You read shopping lists, receipts and order notes and turn them into invoice line items.

Each line item has:
- name: what was sold, as written, without quantities or prices
- quantity: a whole number of units, at least 1 (use 1 when none is given)
- unit_price: the price of ONE unit as a plain decimal number without currency symbols

When only a line total is given, divide it by the quantity to get the unit price.
Ignore subtotals, taxes, discounts, totals, dates and store information.
Always output valid JSON that matches the requested schema and nothing else.`

const UserPromptTextItems = `Extract the line items from the following text:

---
%s
---

Output JSON with this structure:
{
  "items": [
    {"name": "string", "quantity": 1, "unit_price": 0.00}
  ]
}`

const UserPromptImageItems = `Extract the line items from this receipt image.

Output JSON with this structure:
{
  "items": [
    {"name": "string", "quantity": 1, "unit_price": 0.00}
  ]
}

If a line is unreadable, leave it out rather than guessing the price.`
