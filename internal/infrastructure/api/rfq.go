package api

import (
	"context"
	"net/http"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

// CreateRFQ posts a new RFQ for a buyer, documents riding along as multipart
// parts ("auctionDoc", "guidelineDoc").
func (c *Client) CreateRFQ(ctx context.Context, buyerID string, p ports.RFQPayload, files []ports.Upload) (*domain.RFQ, error) {
	var rfq domain.RFQ
	if err := c.doMultipart(ctx, http.MethodPost, "/rfq/buyer/"+buyerID+"/post-rfq", p, files, &rfq); err != nil {
		return nil, err
	}
	return &rfq, nil
}

// EditRFQ replaces the content of an existing RFQ.
func (c *Client) EditRFQ(ctx context.Context, rfqID string, p ports.RFQPayload, files []ports.Upload) (*domain.RFQ, error) {
	var rfq domain.RFQ
	if err := c.doMultipart(ctx, http.MethodPatch, "/rfq/"+rfqID+"/edit-rfq", p, files, &rfq); err != nil {
		return nil, err
	}
	return &rfq, nil
}

// GetRFQ fetches a single RFQ.
func (c *Client) GetRFQ(ctx context.Context, rfqID string) (*domain.RFQ, error) {
	var rfq domain.RFQ
	if err := c.doJSON(ctx, http.MethodGet, "/rfq/"+rfqID+"/view-rfq", nil, &rfq); err != nil {
		return nil, err
	}
	return &rfq, nil
}

// ListOpenRFQs returns the RFQs sellers can currently bid on.
func (c *Client) ListOpenRFQs(ctx context.Context) ([]domain.RFQ, error) {
	var rfqs []domain.RFQ
	if err := c.doJSON(ctx, http.MethodGet, "/rfq/view-all-rfqs", nil, &rfqs); err != nil {
		return nil, err
	}
	return rfqs, nil
}

// ListRFQsByBuyer returns a buyer's own RFQs.
func (c *Client) ListRFQsByBuyer(ctx context.Context, buyerID string) ([]domain.RFQ, error) {
	var rfqs []domain.RFQ
	if err := c.doJSON(ctx, http.MethodGet, "/rfq/buyer/"+buyerID+"/view-all-rfqs", nil, &rfqs); err != nil {
		return nil, err
	}
	return rfqs, nil
}

// DeleteRFQ withdraws an RFQ.
func (c *Client) DeleteRFQ(ctx context.Context, rfqID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/rfq/"+rfqID+"/delete-rfq", nil, nil)
}

// DownloadRFQFile fetches a stored RFQ document as raw bytes.
func (c *Client) DownloadRFQFile(ctx context.Context, rfqID, fileName string) ([]byte, error) {
	return c.doBytes(ctx, "/rfq/"+rfqID+"/file/"+fileName)
}
