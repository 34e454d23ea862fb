package core_test

import (
	"testing"

	"stockroom/internal/core"
)

func TestParseGroupBy(t *testing.T) {
	cases := []struct {
		in      string
		want    core.ReportGroupBy
		wantErr bool
	}{
		{"", core.GroupNone, false},
		{"none", core.GroupNone, false},
		{"product", core.GroupByProduct, false},
		{"supplier", core.GroupBySupplier, false},
		{"day", core.GroupByDay, false},
		{"month", core.GroupByMonth, false},
		{"week", core.GroupNone, true},
		{"Product", core.GroupNone, true},
	}
	for _, c := range cases {
		got, err := core.ParseGroupBy(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseGroupBy(%q): expected error", c.in)
			}
			derr, ok := core.AsDomainError(err)
			if !ok || derr.Code != core.ErrCodeValidation {
				t.Errorf("ParseGroupBy(%q): expected validation error, got %v", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGroupBy(%q): unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseGroupBy(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseCostBasis(t *testing.T) {
	cases := []struct {
		in      string
		want    core.CostBasis
		wantErr bool
	}{
		{"", core.CostBasisCurrent, false},
		{"current", core.CostBasisCurrent, false},
		{"order_time", core.CostBasisOrderTime, false},
		{"historical", core.CostBasisCurrent, true},
	}
	for _, c := range cases {
		got, err := core.ParseCostBasis(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseCostBasis(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCostBasis(%q): unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseCostBasis(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestGroupByRoundTripsThroughString(t *testing.T) {
	groups := []core.ReportGroupBy{
		core.GroupNone, core.GroupByProduct, core.GroupBySupplier, core.GroupByDay, core.GroupByMonth,
	}
	for _, g := range groups {
		parsed, err := core.ParseGroupBy(g.String())
		if err != nil {
			t.Errorf("ParseGroupBy(%q): unexpected error %v", g.String(), err)
		}
		if parsed != g {
			t.Errorf("Round trip of %v came back as %v", g, parsed)
		}
	}
}

func TestSalesReportRowLabel(t *testing.T) {
	sku, name := "WID-001", "Widget, small"
	day := "2026-03-01"
	year, month := 2026, 3
	supplier := "Acme Wholesale"

	cases := []struct {
		name string
		row  core.SalesReportRow
		want string
	}{
		{"product", core.SalesReportRow{SKU: &sku, ProductName: &name}, "WID-001 · Widget, small"},
		{"day", core.SalesReportRow{Day: &day}, "2026-03-01"},
		{"month", core.SalesReportRow{Year: &year, Month: &month}, "2026-03"},
		{"supplier", core.SalesReportRow{SupplierName: &supplier}, "Acme Wholesale"},
		{"no supplier", core.SalesReportRow{}, "(no supplier)"},
	}
	for _, c := range cases {
		if got := c.row.Label(); got != c.want {
			t.Errorf("%s: Label() = %q, want %q", c.name, got, c.want)
		}
	}
}
