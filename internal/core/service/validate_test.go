package service

import (
	"bytes"
	"testing"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
)

const goodPassword = "Abcdefgh12!@"

func TestGateAccountEmail(t *testing.T) {
	g := NewGate()

	cases := []struct {
		email string
		ok    bool
	}{
		{"a@b.com", true},
		{"first.last@sub.example.org", true},
		{"a@b", false}, // no TLD
		{"plainaddress", false},
		{"@missing.local", false},
		{"", false},
	}
	for _, tc := range cases {
		errs := g.Account(AccountForm{Email: tc.email, Password: goodPassword})
		_, failed := errs["email"]
		if tc.ok && failed {
			t.Errorf("email %q rejected: %v", tc.email, errs)
		}
		if !tc.ok && !failed {
			t.Errorf("email %q accepted", tc.email)
		}
	}
}

func TestStrongPassword(t *testing.T) {
	cases := []struct {
		pwd string
		ok  bool
	}{
		{"Abcdefgh12!@", true},
		{"xYz9!abcdef", true},
		{"Abcdef1!", false},      // too short
		{"abcdefgh12!@", false},  // no upper
		{"ABCDEFGH12!@", false},  // no lower
		{"Abcdefghij!@", false},  // no digit
		{"Abcdefghij12", false},  // no symbol
		{"", false},
	}
	for _, tc := range cases {
		if got := StrongPassword(tc.pwd); got != tc.ok {
			t.Errorf("StrongPassword(%q) = %v, want %v", tc.pwd, got, tc.ok)
		}
	}
}

func TestGateAccountPhone(t *testing.T) {
	g := NewGate()

	cases := []struct {
		phone string
		ok    bool
	}{
		{"0911223344", true},
		{"0711223344", true},
		{"", true}, // optional on login
		{"1234567890", false},
		{"09112233", false},    // too short
		{"091122334455", false}, // too long
		{"+251911223344", false},
	}
	for _, tc := range cases {
		errs := g.Account(AccountForm{Email: "a@b.com", Password: goodPassword, Phone: tc.phone})
		_, failed := errs["phone"]
		if tc.ok && failed {
			t.Errorf("phone %q rejected: %v", tc.phone, errs)
		}
		if !tc.ok && !failed {
			t.Errorf("phone %q accepted", tc.phone)
		}
	}
}

func TestGateBidRequiresItems(t *testing.T) {
	g := NewGate()

	errs := g.Bid(nil, zipAttachment())
	if msg, ok := errs["bidItems"]; !ok || msg == "" {
		t.Errorf("empty item list not rejected: %v", errs)
	}
}

func TestGateBidItemChecks(t *testing.T) {
	g := NewGate()

	bad := domain.LineItemDraft{Name: "  ", Quantity: "abc", Unit: "litre", UnitPrice: "-5"}
	errs := g.Bid([]domain.LineItemDraft{bad}, zipAttachment())

	for _, key := range []string{"items[0].name", "items[0].quantity", "items[0].unit", "items[0].unitPrice"} {
		if _, ok := errs[key]; !ok {
			t.Errorf("missing %q error, got %v", key, errs)
		}
	}

	good := domain.LineItemDraft{Name: "cement", Quantity: "2", Unit: domain.UnitPieces, UnitPrice: "40", TransportFee: "", Taxes: ""}
	if errs := g.Bid([]domain.LineItemDraft{good}, zipAttachment()); len(errs) != 0 {
		t.Errorf("well-formed bid rejected: %v", errs)
	}
}

func TestGateBidFile(t *testing.T) {
	g := NewGate()
	items := []domain.LineItemDraft{{Name: "cement", Quantity: "1", Unit: domain.UnitPieces, UnitPrice: "10"}}

	if errs := g.Bid(items, domain.Attachment{}); errs["bidFile"] == "" {
		t.Errorf("missing file accepted: %v", errs)
	}

	exe := domain.Attachment{FileName: "offer.exe", Content: []byte("MZ")}
	if errs := g.Bid(items, exe); errs["bidFile"] == "" {
		t.Errorf("disallowed extension accepted: %v", errs)
	}

	huge := domain.Attachment{FileName: "offer.zip", Content: bytes.Repeat([]byte("x"), maxUploadSize+1)}
	if errs := g.Bid(items, huge); errs["bidFile"] == "" {
		t.Errorf("oversize file accepted: %v", errs)
	}

	// A stored reference from edit mode passes without content checks.
	ref := domain.Attachment{Existing: &domain.FileRef{FileName: "offer.zip"}}
	if errs := g.Bid(items, ref); len(errs) != 0 {
		t.Errorf("stored reference rejected: %v", errs)
	}
}

func TestGateRFQ(t *testing.T) {
	g := NewGate()

	errs := g.RFQ(RFQFields{}, domain.Attachment{}, domain.Attachment{})
	for _, key := range []string{"title", "purchaseNumber", "quantity", "unit", "deadline", "auctionDoc", "guidelineDoc"} {
		if _, ok := errs[key]; !ok {
			t.Errorf("missing %q error, got %v", key, errs)
		}
	}

	f := validRFQFields()
	if errs := g.RFQ(f, pdfAttachment("a.pdf"), pdfAttachment("g.docx")); len(errs) != 0 {
		t.Errorf("well-formed rfq rejected: %v", errs)
	}

	f.Quantity = "-1"
	if errs := g.RFQ(f, pdfAttachment("a.pdf"), pdfAttachment("g.pdf")); errs["quantity"] == "" {
		t.Errorf("non-positive quantity accepted: %v", errs)
	}

	f = validRFQFields()
	f.Deadline = "30-09-2026"
	if errs := g.RFQ(f, pdfAttachment("a.pdf"), pdfAttachment("g.pdf")); errs["deadline"] == "" {
		t.Errorf("malformed deadline accepted: %v", errs)
	}
}
