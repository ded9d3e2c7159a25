package procurement

import (
	"encoding/json"
	"fmt"
)

// FinancialBreakdown is the parsed form of the financial_breakdown column.
// The stored value may be a JSON object or a JSON-encoded string holding the
// same object; both encodings are resolved here, at the data-access boundary,
// so downstream logic always receives a typed structure.
type FinancialBreakdown struct {
	Totals BreakdownTotals `json:"totals"`
}

// BreakdownTotals carries the monetary totals of an order.
type BreakdownTotals struct {
	TotalPOAmount float64 `json:"total_po_amount"`
	TaxAmount     float64 `json:"tax_amount,omitempty"`
	Subtotal      float64 `json:"subtotal,omitempty"`
}

// ParseFinancialBreakdown decodes the raw column value. A NULL or empty
// column yields the zero value without error.
func ParseFinancialBreakdown(raw []byte) (FinancialBreakdown, error) {
	// Decode via an alias so the custom UnmarshalJSON on FinancialBreakdown
	// is not re-entered recursively.
	type alias FinancialBreakdown
	if len(raw) == 0 {
		return FinancialBreakdown{}, nil
	}
	// String-encoded form: the column holds a JSON string whose content is
	// the breakdown object.
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if encoded == "" {
			return FinancialBreakdown{}, nil
		}
		var fb alias
		if err := json.Unmarshal([]byte(encoded), &fb); err != nil {
			return FinancialBreakdown{}, fmt.Errorf("procurement: parse financial breakdown string: %w", err)
		}
		return FinancialBreakdown(fb), nil
	}
	var fb alias
	if err := json.Unmarshal(raw, &fb); err != nil {
		return FinancialBreakdown{}, fmt.Errorf("procurement: parse financial breakdown: %w", err)
	}
	return FinancialBreakdown(fb), nil
}

// MarshalJSON renders the breakdown as a plain object regardless of how it
// was stored.
func (f FinancialBreakdown) MarshalJSON() ([]byte, error) {
	type alias FinancialBreakdown
	return json.Marshal(alias(f))
}

// UnmarshalJSON accepts either encoding on the way in as well, so API
// payloads may carry the legacy string form.
func (f *FinancialBreakdown) UnmarshalJSON(data []byte) error {
	parsed, err := ParseFinancialBreakdown(data)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
