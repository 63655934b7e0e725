package api

import (
	"context"
	"net/http"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

// CreateBid submits a new bid for a seller as multipart: the "data" JSON
// blob plus the optional bid document under "bidFiles".
func (c *Client) CreateBid(ctx context.Context, sellerID string, p ports.BidPayload, files []ports.Upload) (*domain.Bid, error) {
	var bid domain.Bid
	if err := c.doMultipart(ctx, http.MethodPost, "/bid/seller/"+sellerID+"/create-bid", p, files, &bid); err != nil {
		return nil, err
	}
	return &bid, nil
}

// EditBid replaces the content of an existing bid.
func (c *Client) EditBid(ctx context.Context, bidID string, p ports.BidPayload, files []ports.Upload) (*domain.Bid, error) {
	var bid domain.Bid
	if err := c.doMultipart(ctx, http.MethodPatch, "/bid/"+bidID+"/edit-bid", p, files, &bid); err != nil {
		return nil, err
	}
	return &bid, nil
}

// GetBid fetches a single bid.
func (c *Client) GetBid(ctx context.Context, bidID string) (*domain.Bid, error) {
	var bid domain.Bid
	if err := c.doJSON(ctx, http.MethodGet, "/bid/"+bidID+"/view-bid", nil, &bid); err != nil {
		return nil, err
	}
	return &bid, nil
}

// ListBidsByRFQ returns every bid placed against an RFQ (buyer view).
func (c *Client) ListBidsByRFQ(ctx context.Context, rfqID string) ([]domain.Bid, error) {
	var bids []domain.Bid
	if err := c.doJSON(ctx, http.MethodGet, "/bid/rfq/"+rfqID+"/view-all-bids", nil, &bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// ListBidsBySeller returns every bid a seller has placed (seller view).
func (c *Client) ListBidsBySeller(ctx context.Context, sellerID string) ([]domain.Bid, error) {
	var bids []domain.Bid
	if err := c.doJSON(ctx, http.MethodGet, "/bid/seller/"+sellerID+"/view-all-bids", nil, &bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// DeleteBid withdraws a bid.
func (c *Client) DeleteBid(ctx context.Context, bidID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/bid/"+bidID+"/delete-bid", nil, nil)
}

// AwardBid marks a bid as the RFQ's winner.
func (c *Client) AwardBid(ctx context.Context, bidID string) (*domain.Bid, error) {
	var bid domain.Bid
	if err := c.doJSON(ctx, http.MethodPatch, "/bid/"+bidID+"/award-bid", nil, &bid); err != nil {
		return nil, err
	}
	return &bid, nil
}

// DownloadBidFile fetches a stored bid document as raw bytes.
func (c *Client) DownloadBidFile(ctx context.Context, bidID, fileName string) ([]byte, error) {
	return c.doBytes(ctx, "/bid/"+bidID+"/file/"+fileName)
}
