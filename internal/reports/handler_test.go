package reports

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(orders *fakeOrders) http.Handler {
	svc := NewService(slog.Default(), &fakeNotes{}, &fakeMaster{}, orders, NewCache(nil, 0))
	h := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	r.Route("/reports", func(r chi.Router) { h.MountRoutes(r) })
	return r
}

func TestStockEndpointMissingParams(t *testing.T) {
	router := newTestRouter(&fakeOrders{})

	req := httptest.NewRequest(http.MethodGet, "/reports/stock?project_uuid="+testProject, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		StatusMessage string `json:"statusMessage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.StatusMessage, "corporation_uuid")
}

func TestStockEndpointRejectsNonGET(t *testing.T) {
	router := newTestRouter(&fakeOrders{})

	req := httptest.NewRequest(http.MethodPost, "/reports/stock", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	var body struct {
		StatusMessage string `json:"statusMessage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.StatusMessage)
}

func TestStockEndpointEnvelope(t *testing.T) {
	notes, master, orders := stockFixture()
	svc := NewService(slog.Default(), notes, master, orders, NewCache(nil, 0))
	h := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	r.Route("/reports", func(r chi.Router) { h.MountRoutes(r) })

	req := httptest.NewRequest(http.MethodGet, "/reports/stock?corporation_uuid="+testCorp+"&project_uuid="+testProject, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data   []StockRow  `json:"data"`
		Totals StockTotals `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	require.NotZero(t, body.Totals.CurrentStock)
}

func TestInvoiceSummaryEndpointUnknownPO(t *testing.T) {
	router := newTestRouter(&fakeOrders{})

	req := httptest.NewRequest(http.MethodGet, "/reports/invoice-summary?purchase_order_uuid=po-missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		StatusMessage string `json:"statusMessage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "purchase order not found", body.StatusMessage)
}

func TestInvoiceSummaryEndpointMissingParam(t *testing.T) {
	router := newTestRouter(&fakeOrders{})

	req := httptest.NewRequest(http.MethodGet, "/reports/invoice-summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPOWiseEndpointEmptyData(t *testing.T) {
	router := newTestRouter(&fakeOrders{})

	req := httptest.NewRequest(http.MethodGet, "/reports/stock/po-wise?corporation_uuid="+testCorp+"&project_uuid="+testProject, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []POWiseGroup `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Empty(t, body.Data)
}
