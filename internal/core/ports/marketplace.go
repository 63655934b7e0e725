// Package ports declares the contracts the core services depend on. The
// remote marketplace API is an opaque collaborator: these interfaces pin down
// only the shapes the client relies on, not how the backend implements them.
package ports

import (
	"context"
	"time"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
)

// Credentials is what a successful login or token refresh hands back.
type Credentials struct {
	AccessToken string
	FirstName   string
	LastName    string
	UserID      string
	Role        domain.Role
}

// DisplayName renders the identity the way the views show it.
func (c Credentials) DisplayName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// AuthAPI covers login, logout and silent token refresh.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Logout(ctx context.Context) error
	// Refresh requests a fresh bearer token for the currently set token.
	Refresh(ctx context.Context) (string, error)
}

// Upload is one file part of a multipart submission.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Content     []byte
}

// BidPayload is the typed, fully coerced transport form of a bid submission.
// It is built by one pure mapping step from the form session, so every
// numeric coercion happens in a single auditable place.
type BidPayload struct {
	RFQID      string            `json:"rfqId"`
	Items      []domain.LineItem `json:"items"`
	GrandTotal float64           `json:"grandTotal"`
	Notes      string            `json:"notes,omitempty"`
}

// BidAPI covers the bid resource of the marketplace.
type BidAPI interface {
	CreateBid(ctx context.Context, sellerID string, p BidPayload, files []Upload) (*domain.Bid, error)
	EditBid(ctx context.Context, bidID string, p BidPayload, files []Upload) (*domain.Bid, error)
	GetBid(ctx context.Context, bidID string) (*domain.Bid, error)
	ListBidsByRFQ(ctx context.Context, rfqID string) ([]domain.Bid, error)
	ListBidsBySeller(ctx context.Context, sellerID string) ([]domain.Bid, error)
	DeleteBid(ctx context.Context, bidID string) error
	AwardBid(ctx context.Context, bidID string) (*domain.Bid, error)
	DownloadBidFile(ctx context.Context, bidID, fileName string) ([]byte, error)
}

// RFQPayload is the typed transport form of an RFQ submission.
type RFQPayload struct {
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Quantity       float64     `json:"quantity"`
	Unit           domain.Unit `json:"unit"`
	PurchaseNumber string      `json:"purchaseNumber"`
	Deadline       time.Time   `json:"deadline"`
}

// RFQAPI covers the RFQ resource of the marketplace.
type RFQAPI interface {
	CreateRFQ(ctx context.Context, buyerID string, p RFQPayload, files []Upload) (*domain.RFQ, error)
	EditRFQ(ctx context.Context, rfqID string, p RFQPayload, files []Upload) (*domain.RFQ, error)
	GetRFQ(ctx context.Context, rfqID string) (*domain.RFQ, error)
	ListOpenRFQs(ctx context.Context) ([]domain.RFQ, error)
	ListRFQsByBuyer(ctx context.Context, buyerID string) ([]domain.RFQ, error)
	DeleteRFQ(ctx context.Context, rfqID string) error
	DownloadRFQFile(ctx context.Context, rfqID, fileName string) ([]byte, error)
}

// ProductPayload is the typed transport form of a catalogue entry.
type ProductPayload struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	UnitPrice   float64     `json:"unitPrice"`
	Unit        domain.Unit `json:"unit"`
}

// ProductAPI covers the seller catalogue resource.
type ProductAPI interface {
	CreateProduct(ctx context.Context, sellerID string, p ProductPayload) (*domain.Product, error)
	ListProducts(ctx context.Context, sellerID string) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

// TransactionAPI covers the transaction/payment flow that follows an award.
type TransactionAPI interface {
	CreateTransaction(ctx context.Context, bidID string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, txID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	// InitiatePayment returns the checkout URL the caller redirects to.
	InitiatePayment(ctx context.Context, txID string) (string, error)
}

// FeedbackPayload is the typed transport form of a review.
type FeedbackPayload struct {
	TransactionID string `json:"transactionId"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment,omitempty"`
}

// FeedbackAPI covers post-transaction reviews.
type FeedbackAPI interface {
	CreateFeedback(ctx context.Context, p FeedbackPayload) (*domain.Feedback, error)
	ListFeedbackBySeller(ctx context.Context, sellerID string) ([]domain.Feedback, error)
}

// UserAPI covers account-level operations.
type UserAPI interface {
	SwitchRole(ctx context.Context, userID string, role domain.Role) error
}

// MarketplaceAPI is the full remote surface the client consumes.
type MarketplaceAPI interface {
	AuthAPI
	BidAPI
	RFQAPI
	ProductAPI
	TransactionAPI
	FeedbackAPI
	UserAPI
}

// TokenSink receives bearer-token updates from the session service so the
// transport layer always signs requests with the committed token.
type TokenSink interface {
	SetToken(token string)
	ClearToken()
}
