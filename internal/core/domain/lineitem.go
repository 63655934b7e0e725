package domain

import (
	"math"
	"strconv"
	"strings"
)

// Unit is the measurement unit of a line item.
type Unit string

const (
	UnitPieces Unit = "pcs"
	UnitKg     Unit = "kg"
	UnitMeter  Unit = "m"
	UnitPack   Unit = "pack"
	UnitBox    Unit = "box"
	UnitPair   Unit = "pair"
)

// Units lists every accepted unit, in display order.
var Units = []Unit{UnitPieces, UnitKg, UnitMeter, UnitPack, UnitBox, UnitPair}

// ValidUnit reports whether u is one of the accepted units.
func ValidUnit(u Unit) bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// LineItemDraft is one priced row of a bid form as the user is typing it.
// Numeric fields are kept as raw strings because a field mid-edit may be
// empty or not yet a number; ParseAmount decides what they are worth.
type LineItemDraft struct {
	Name         string `json:"name"`
	Quantity     string `json:"quantity"`
	Unit         Unit   `json:"unit"`
	UnitPrice    string `json:"unitPrice"`
	TransportFee string `json:"transportFee"`
	Taxes        string `json:"taxes"`
}

// NewLineItemDraft returns a zero-valued draft, the result of an "add item"
// action on a bid form.
func NewLineItemDraft() LineItemDraft {
	return LineItemDraft{
		Quantity:     "0",
		Unit:         UnitPieces,
		UnitPrice:    "0",
		TransportFee: "0",
		Taxes:        "0",
	}
}

// ParseAmount converts a raw input string to an amount. Empty, unparseable
// and NaN inputs are worth 0; negatives pass through untouched (rejecting
// them is the validation gate's job, not arithmetic's).
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// Total derives the row total: unitPrice*quantity + transportFee + taxes.
// It is never stored; callers recompute it whenever an input changes.
func (d LineItemDraft) Total() float64 {
	return ParseAmount(d.UnitPrice)*ParseAmount(d.Quantity) +
		ParseAmount(d.TransportFee) + ParseAmount(d.Taxes)
}

// AggregateTotal sums the derived totals of all drafts. The sum is
// commutative and an empty slice is worth 0.
func AggregateTotal(items []LineItemDraft) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Total()
	}
	return sum
}

// LineItem is the committed, numerically typed form of a draft, used on the
// wire and inside stored bids.
type LineItem struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         Unit    `json:"unit"`
	UnitPrice    float64 `json:"unitPrice"`
	TransportFee float64 `json:"transportFee"`
	Taxes        float64 `json:"taxes"`
	Total        float64 `json:"total"`
}

// Commit coerces every numeric field once, so the payload sent to the API
// never carries string-typed numbers. Absent optional fields become 0.
func (d LineItemDraft) Commit() LineItem {
	return LineItem{
		Name:         strings.TrimSpace(d.Name),
		Quantity:     ParseAmount(d.Quantity),
		Unit:         d.Unit,
		UnitPrice:    ParseAmount(d.UnitPrice),
		TransportFee: ParseAmount(d.TransportFee),
		Taxes:        ParseAmount(d.Taxes),
		Total:        d.Total(),
	}
}
