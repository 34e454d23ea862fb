package web

import (
	"net/http"

	"stockroom/internal/core"
)

// apiSalesReport handles GET /api/reports/sales.
// Query parameters: from, to (YYYY-MM-DD; start_date/end_date accepted as
// aliases), product_id, supplier_id, group_by
// (none|product|supplier|day|month), cost_basis (current|order_time).
func (h *Handler) apiSalesReport(w http.ResponseWriter, r *http.Request) {
	params, err := reportParamsFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	report, err := h.svc.GetSalesReport(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

func reportParamsFromQuery(r *http.Request) (core.SalesReportParams, error) {
	q := r.URL.Query()

	groupBy, err := core.ParseGroupBy(q.Get("group_by"))
	if err != nil {
		return core.SalesReportParams{}, err
	}
	costBasis, err := core.ParseCostBasis(q.Get("cost_basis"))
	if err != nil {
		return core.SalesReportParams{}, err
	}

	fromDate := q.Get("from")
	if fromDate == "" {
		fromDate = q.Get("start_date")
	}
	toDate := q.Get("to")
	if toDate == "" {
		toDate = q.Get("end_date")
	}

	return core.SalesReportParams{
		FromDate:   fromDate,
		ToDate:     toDate,
		ProductID:  queryInt(r, "product_id"),
		SupplierID: queryInt(r, "supplier_id"),
		GroupBy:    groupBy,
		CostBasis:  costBasis,
	}, nil
}
