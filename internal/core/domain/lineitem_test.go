package domain

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{"empty", "", 0},
		{"whitespace", "   ", 0},
		{"garbage", "abc", 0},
		{"trailing garbage", "12abc", 0},
		{"integer", "42", 42},
		{"decimal", "19.99", 19.99},
		{"padded", "  7.5 ", 7.5},
		{"negative passes through", "-3", -3},
		{"nan literal", "NaN", 0},
		{"zero", "0", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseAmount(tc.input)
			if got != tc.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseAmountNeverNaN(t *testing.T) {
	for _, input := range []string{"", "x", "NaN", "nan", "1e999999"} {
		if v := ParseAmount(input); math.IsNaN(v) {
			t.Errorf("ParseAmount(%q) returned NaN", input)
		}
	}
}

func TestLineItemDraftTotal(t *testing.T) {
	d := LineItemDraft{
		Name:         "steel rod",
		Quantity:     "4",
		Unit:         UnitPieces,
		UnitPrice:    "25",
		TransportFee: "10",
		Taxes:        "5",
	}
	if got := d.Total(); got != 115 {
		t.Errorf("Total() = %v, want 115", got)
	}
}

func TestLineItemDraftTotalWithBlankOptionals(t *testing.T) {
	// Mid-edit a field may be empty; it counts as zero, never as an error.
	d := LineItemDraft{Quantity: "2", UnitPrice: "50", TransportFee: "", Taxes: ""}
	if got := d.Total(); got != 100 {
		t.Errorf("Total() = %v, want 100", got)
	}
}

func TestTotalRecomputedFromInputs(t *testing.T) {
	d := LineItemDraft{Quantity: "1", UnitPrice: "10", TransportFee: "0", Taxes: "0"}
	if d.Total() != 10 {
		t.Fatalf("Total() = %v, want 10", d.Total())
	}
	d.Quantity = "3"
	if d.Total() != 30 {
		t.Errorf("Total() after edit = %v, want 30", d.Total())
	}
}

func TestAggregateTotal(t *testing.T) {
	a := LineItemDraft{Quantity: "2", UnitPrice: "30", TransportFee: "5", Taxes: "5"}
	b := LineItemDraft{Quantity: "1", UnitPrice: "70", TransportFee: "0", Taxes: "10"}

	if got := AggregateTotal(nil); got != 0 {
		t.Errorf("AggregateTotal(nil) = %v, want 0", got)
	}
	forward := AggregateTotal([]LineItemDraft{a, b})
	reverse := AggregateTotal([]LineItemDraft{b, a})
	if forward != 150 {
		t.Errorf("AggregateTotal = %v, want 150", forward)
	}
	if forward != reverse {
		t.Errorf("AggregateTotal order-dependent: %v vs %v", forward, reverse)
	}
	// Repeated evaluation over unchanged drafts yields the same sum.
	if again := AggregateTotal([]LineItemDraft{a, b}); again != forward {
		t.Errorf("AggregateTotal not stable: %v vs %v", again, forward)
	}
}

func TestCommitCoercesEveryNumericField(t *testing.T) {
	d := LineItemDraft{
		Name:         "  gravel  ",
		Quantity:     "2.5",
		Unit:         UnitKg,
		UnitPrice:    "8",
		TransportFee: "",
		Taxes:        "junk",
	}
	it := d.Commit()
	if it.Name != "gravel" {
		t.Errorf("Name = %q, want trimmed", it.Name)
	}
	if it.Quantity != 2.5 || it.UnitPrice != 8 {
		t.Errorf("numeric coercion wrong: %+v", it)
	}
	if it.TransportFee != 0 || it.Taxes != 0 {
		t.Errorf("absent optionals must commit as 0: %+v", it)
	}
	if it.Total != 20 {
		t.Errorf("Total = %v, want 20", it.Total)
	}
}

func TestNewLineItemDraftDefaults(t *testing.T) {
	d := NewLineItemDraft()
	if d.Unit != UnitPieces {
		t.Errorf("default unit = %q, want %q", d.Unit, UnitPieces)
	}
	if d.Total() != 0 {
		t.Errorf("fresh draft total = %v, want 0", d.Total())
	}
}

func TestValidUnit(t *testing.T) {
	for _, u := range Units {
		if !ValidUnit(u) {
			t.Errorf("ValidUnit(%q) = false", u)
		}
	}
	if ValidUnit("litre") {
		t.Error("ValidUnit accepted an unknown unit")
	}
}
