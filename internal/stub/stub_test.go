package stub

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
	"github.com/tradebridge/rfq-marketplace/internal/infrastructure/api"
)

const (
	buyerEmail  = "buyer@tradebridge.example"
	sellerEmail = "seller@tradebridge.example"
	password    = "Trader123!@"
)

type fixture struct {
	buyerID  string
	sellerID string
	buyer    *api.Client
	seller   *api.Client
}

// newFixture boots a stub marketplace and logs in one buyer and one seller
// through the real HTTP client.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	server := NewServer(Options{JWTSecret: "test-secret", TokenTTL: time.Hour}, zerolog.Nop())
	buyerID, err := server.Seed(buyerEmail, password, "Bethel", "Alemu", "0911223344", domain.RoleBuyer)
	require.NoError(t, err)
	sellerID, err := server.Seed(sellerEmail, password, "Samuel", "Tesfaye", "0711223344", domain.RoleSeller)
	require.NoError(t, err)

	ts := httptest.NewServer(server.Router(Options{Metrics: false}))
	t.Cleanup(ts.Close)

	f := &fixture{
		buyerID:  buyerID,
		sellerID: sellerID,
		buyer:    api.NewClient(ts.URL, zerolog.Nop()),
		seller:   api.NewClient(ts.URL, zerolog.Nop()),
	}
	f.loginAs(t, f.buyer, buyerEmail)
	f.loginAs(t, f.seller, sellerEmail)
	return f
}

func (f *fixture) loginAs(t *testing.T, c *api.Client, email string) {
	t.Helper()
	creds, err := c.Login(context.Background(), email, password)
	require.NoError(t, err)
	c.SetToken(creds.AccessToken)
}

func (f *fixture) postRFQ(t *testing.T) *domain.RFQ {
	t.Helper()
	rfq, err := f.buyer.CreateRFQ(context.Background(), f.buyerID, ports.RFQPayload{
		Title:          "Office chairs",
		Description:    "Ergonomic, black",
		Quantity:       25,
		Unit:           domain.UnitPieces,
		PurchaseNumber: "PO-2026-014",
		Deadline:       time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	}, []ports.Upload{
		{Field: "auctionDoc", FileName: "auction.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4 auction")},
		{Field: "guidelineDoc", FileName: "guideline.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4 guide")},
	})
	require.NoError(t, err)
	return rfq
}

func (f *fixture) placeBid(t *testing.T, rfqID string, unitPrice float64) *domain.Bid {
	t.Helper()
	items := []domain.LineItem{
		{Name: "chair", Quantity: 25, Unit: domain.UnitPieces, UnitPrice: unitPrice, TransportFee: 50, Taxes: 25, Total: unitPrice*25 + 75},
	}
	bid, err := f.seller.CreateBid(context.Background(), f.sellerID, ports.BidPayload{
		RFQID:      rfqID,
		Items:      items,
		GrandTotal: items[0].Total,
		Notes:      "delivery within two weeks",
	}, []ports.Upload{
		{Field: "bidFiles", FileName: "offer.zip", ContentType: "application/zip", Content: []byte("PK\x03\x04offer")},
	})
	require.NoError(t, err)
	return bid
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.buyer.Login(context.Background(), buyerEmail, "WrongPass1!@")
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestAnonymousCallsRejected(t *testing.T) {
	f := newFixture(t)

	anon := f.buyer
	anon.ClearToken()
	_, err := anon.ListOpenRFQs(context.Background())
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestRFQLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rfq := f.postRFQ(t)
	assert.Equal(t, domain.RFQOpen, rfq.Status)
	require.NotNil(t, rfq.AuctionDoc)
	require.NotNil(t, rfq.GuidelineDoc)

	// Sellers browse the open list; the buyer sees their own.
	open, err := f.seller.ListOpenRFQs(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, rfq.ID, open[0].ID)

	mine, err := f.buyer.ListRFQsByBuyer(ctx, f.buyerID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	// Stored documents come back byte for byte.
	content, err := f.seller.DownloadRFQFile(ctx, rfq.ID, "auction.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 auction"), content)

	// A seller cannot post an RFQ.
	_, err = f.seller.CreateRFQ(ctx, f.sellerID, ports.RFQPayload{Title: "nope"}, nil)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestBidGrandTotalRecomputedServerSide(t *testing.T) {
	f := newFixture(t)
	rfq := f.postRFQ(t)

	items := []domain.LineItem{
		{Name: "chair", Quantity: 2, Unit: domain.UnitPieces, UnitPrice: 40, TransportFee: 10, Taxes: 10, Total: 100},
	}
	bid, err := f.seller.CreateBid(context.Background(), f.sellerID, ports.BidPayload{
		RFQID:      rfq.ID,
		Items:      items,
		GrandTotal: 999, // stale client value, must be ignored
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(100), bid.GrandTotal)
}

func TestBidVisibilityRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rfq := f.postRFQ(t)
	f.placeBid(t, rfq.ID, 100)

	// Only the posting buyer sees the bid list of an RFQ.
	bids, err := f.buyer.ListBidsByRFQ(ctx, rfq.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)

	_, err = f.seller.ListBidsByRFQ(ctx, rfq.ID)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)

	// A seller sees their own bids, nobody else's.
	own, err := f.seller.ListBidsBySeller(ctx, f.sellerID)
	require.NoError(t, err)
	require.Len(t, own, 1)

	_, err = f.buyer.ListBidsBySeller(ctx, f.sellerID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestAwardFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rfq := f.postRFQ(t)
	winner := f.placeBid(t, rfq.ID, 100)
	loser := f.placeBid(t, rfq.ID, 120)

	awarded, err := f.buyer.AwardBid(ctx, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BidAwarded, awarded.Status)

	// Siblings are rejected and the RFQ leaves the open list.
	rejected, err := f.seller.GetBid(ctx, loser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BidRejected, rejected.Status)

	got, err := f.buyer.GetRFQ(ctx, rfq.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RFQAwarded, got.Status)
	assert.Equal(t, winner.ID, got.AwardedBidID)

	open, err := f.seller.ListOpenRFQs(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	// One award per RFQ.
	_, err = f.buyer.AwardBid(ctx, loser.ID)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
}

func TestTransactionAndFeedbackFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rfq := f.postRFQ(t)
	bid := f.placeBid(t, rfq.ID, 100)

	// No transaction before the award.
	_, err := f.buyer.CreateTransaction(ctx, bid.ID)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.Status)

	_, err = f.buyer.AwardBid(ctx, bid.ID)
	require.NoError(t, err)

	tx, err := f.buyer.CreateTransaction(ctx, bid.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPending, tx.Status)
	assert.Equal(t, bid.GrandTotal, tx.Amount)

	// Creating it again returns the existing record.
	again, err := f.buyer.CreateTransaction(ctx, bid.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, again.ID)

	// No feedback before payment.
	_, err = f.buyer.CreateFeedback(ctx, ports.FeedbackPayload{TransactionID: tx.ID, Rating: 5})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.Status)

	checkout, err := f.buyer.InitiatePayment(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(checkout, tx.ID), "checkout URL %q must reference the transaction", checkout)

	paid, err := f.buyer.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// Paying twice is rejected.
	_, err = f.buyer.InitiatePayment(ctx, tx.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.Status)

	// Both participants see the transaction in their lists.
	for _, tc := range []struct {
		client *api.Client
		userID string
	}{
		{f.buyer, f.buyerID},
		{f.seller, f.sellerID},
	} {
		txs, err := tc.client.ListTransactions(ctx, tc.userID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
	}

	fb, err := f.buyer.CreateFeedback(ctx, ports.FeedbackPayload{
		TransactionID: tx.ID,
		Rating:        5,
		Comment:       "fast delivery",
	})
	require.NoError(t, err)
	assert.Equal(t, f.sellerID, fb.SellerID)
	assert.Equal(t, f.buyerID, fb.AuthorID)

	// Out-of-range ratings never land.
	_, err = f.buyer.CreateFeedback(ctx, ports.FeedbackPayload{TransactionID: tx.ID, Rating: 6})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)

	fbs, err := f.seller.ListFeedbackBySeller(ctx, f.sellerID)
	require.NoError(t, err)
	require.Len(t, fbs, 1)
	assert.Equal(t, "fast delivery", fbs[0].Comment)
}

func TestSwitchRoleThenRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Sellers may not post RFQs until they switch and pick up a new token.
	require.NoError(t, f.seller.SwitchRole(ctx, f.sellerID, domain.RoleBuyer))
	token, err := f.seller.Refresh(ctx)
	require.NoError(t, err)
	f.seller.SetToken(token)

	rfq, err := f.seller.CreateRFQ(ctx, f.sellerID, ports.RFQPayload{
		Title:          "Printer paper",
		Quantity:       100,
		Unit:           domain.UnitPack,
		PurchaseNumber: "PO-2026-020",
		Deadline:       time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, f.sellerID, rfq.BuyerID)

	// Switching someone else's account is forbidden.
	err = f.seller.SwitchRole(ctx, f.buyerID, domain.RoleSeller)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestProductCatalogue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.seller.CreateProduct(ctx, f.sellerID, ports.ProductPayload{
		Name:      "Ergonomic chair",
		UnitPrice: 120,
		Unit:      domain.UnitPieces,
	})
	require.NoError(t, err)

	listed, err := f.buyer.ListProducts(ctx, f.sellerID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, product.ID, listed[0].ID)

	// Only the owner deletes.
	err = f.buyer.DeleteProduct(ctx, product.ID)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)

	require.NoError(t, f.seller.DeleteProduct(ctx, product.ID))
	listed, err = f.buyer.ListProducts(ctx, f.sellerID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestBidFileRoundtrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rfq := f.postRFQ(t)
	bid := f.placeBid(t, rfq.ID, 100)

	require.NotNil(t, bid.File)
	content, err := f.buyer.DownloadBidFile(ctx, bid.ID, bid.File.FileName)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04offer"), content)
}
