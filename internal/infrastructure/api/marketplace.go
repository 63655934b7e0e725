package api

import (
	"context"
	"net/http"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

// CreateProduct adds a catalogue entry for a seller.
func (c *Client) CreateProduct(ctx context.Context, sellerID string, p ports.ProductPayload) (*domain.Product, error) {
	var product domain.Product
	if err := c.doJSON(ctx, http.MethodPost, "/product/seller/"+sellerID+"/create-product", p, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns a seller's catalogue.
func (c *Client) ListProducts(ctx context.Context, sellerID string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.doJSON(ctx, http.MethodGet, "/product/seller/"+sellerID+"/view-all-products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// DeleteProduct removes a catalogue entry.
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/product/"+productID+"/delete-product", nil, nil)
}

// CreateTransaction opens the payment record for an awarded bid.
func (c *Client) CreateTransaction(ctx context.Context, bidID string) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.doJSON(ctx, http.MethodPost, "/transaction/bid/"+bidID+"/create-transaction", nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetTransaction fetches a single transaction.
func (c *Client) GetTransaction(ctx context.Context, txID string) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.doJSON(ctx, http.MethodGet, "/transaction/"+txID+"/view-transaction", nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListTransactions returns the transactions a user participates in, on
// either side.
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := c.doJSON(ctx, http.MethodGet, "/transaction/user/"+userID+"/view-all-transactions", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

type paymentResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

// InitiatePayment starts the payment step and returns the checkout URL the
// caller redirects to.
func (c *Client) InitiatePayment(ctx context.Context, txID string) (string, error) {
	var resp paymentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/transaction/"+txID+"/pay", nil, &resp); err != nil {
		return "", err
	}
	return resp.CheckoutURL, nil
}

// CreateFeedback files a review against a completed transaction.
func (c *Client) CreateFeedback(ctx context.Context, p ports.FeedbackPayload) (*domain.Feedback, error) {
	var fb domain.Feedback
	if err := c.doJSON(ctx, http.MethodPost, "/feedback/create-feedback", p, &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

// ListFeedbackBySeller returns the reviews left for a seller.
func (c *Client) ListFeedbackBySeller(ctx context.Context, sellerID string) ([]domain.Feedback, error) {
	var fbs []domain.Feedback
	if err := c.doJSON(ctx, http.MethodGet, "/feedback/seller/"+sellerID+"/view-all-feedback", nil, &fbs); err != nil {
		return nil, err
	}
	return fbs, nil
}
