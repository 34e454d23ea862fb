package web

import (
	"net/http/httptest"
	"testing"

	"stockroom/internal/core"
)

func TestReportParamsFromQuery(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		wantFrom string
		wantTo   string
	}{
		{"short names", "from=2026-03-01&to=2026-03-31", "2026-03-01", "2026-03-31"},
		{"long aliases", "start_date=2026-03-01&end_date=2026-03-31", "2026-03-01", "2026-03-31"},
		{"short names win", "from=2026-01-01&start_date=2026-02-01", "2026-01-01", ""},
		{"absent", "", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/reports/sales?"+tc.query, nil)
			params, err := reportParamsFromQuery(r)
			if err != nil {
				t.Fatalf("reportParamsFromQuery failed: %v", err)
			}
			if params.FromDate != tc.wantFrom {
				t.Errorf("Expected FromDate %q, got %q", tc.wantFrom, params.FromDate)
			}
			if params.ToDate != tc.wantTo {
				t.Errorf("Expected ToDate %q, got %q", tc.wantTo, params.ToDate)
			}
		})
	}
}

func TestReportParamsFromQueryRejectsBadGrouping(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/reports/sales?group_by=week", nil)
	_, err := reportParamsFromQuery(r)
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeValidation {
		t.Errorf("Expected validation error for unknown grouping, got %v", err)
	}
}
