package procurement

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFinancialBreakdownObject(t *testing.T) {
	raw := []byte(`{"totals":{"total_po_amount":20000,"tax_amount":1200,"subtotal":18800}}`)
	fb, err := ParseFinancialBreakdown(raw)
	require.NoError(t, err)
	require.Equal(t, 20000.0, fb.Totals.TotalPOAmount)
	require.Equal(t, 1200.0, fb.Totals.TaxAmount)
}

func TestParseFinancialBreakdownStringEncoded(t *testing.T) {
	// Legacy rows store the object as a JSON string.
	raw := []byte(`"{\"totals\":{\"total_po_amount\":20000}}"`)
	fb, err := ParseFinancialBreakdown(raw)
	require.NoError(t, err)
	require.Equal(t, 20000.0, fb.Totals.TotalPOAmount)
}

func TestParseFinancialBreakdownBothEncodingsAgree(t *testing.T) {
	object := []byte(`{"totals":{"total_po_amount":20000}}`)
	encoded := []byte(`"{\"totals\":{\"total_po_amount\":20000}}"`)

	fromObject, err := ParseFinancialBreakdown(object)
	require.NoError(t, err)
	fromString, err := ParseFinancialBreakdown(encoded)
	require.NoError(t, err)
	require.Equal(t, fromObject, fromString)
}

func TestParseFinancialBreakdownEmpty(t *testing.T) {
	for _, raw := range [][]byte{nil, {}, []byte(`""`)} {
		fb, err := ParseFinancialBreakdown(raw)
		require.NoError(t, err)
		require.Zero(t, fb.Totals.TotalPOAmount)
	}
}

func TestParseFinancialBreakdownMalformed(t *testing.T) {
	_, err := ParseFinancialBreakdown([]byte(`"{not json"`))
	require.Error(t, err)

	_, err = ParseFinancialBreakdown([]byte(`[1,2,3`))
	require.Error(t, err)
}

func TestFinancialBreakdownMarshalAlwaysObject(t *testing.T) {
	var fb FinancialBreakdown
	require.NoError(t, json.Unmarshal([]byte(`"{\"totals\":{\"total_po_amount\":500}}"`), &fb))

	out, err := json.Marshal(fb)
	require.NoError(t, err)
	require.JSONEq(t, `{"totals":{"total_po_amount":500}}`, string(out))
}
