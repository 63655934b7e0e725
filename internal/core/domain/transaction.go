package domain

import "time"

// TransactionStatus represents the payment state of a transaction.
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionPaid    TransactionStatus = "paid"
)

// Transaction is the payment record created after a bid is awarded. It
// references exactly one bid.
type Transaction struct {
	ID        string            `json:"id"`
	BidID     string            `json:"bidId"`
	RFQID     string            `json:"rfqId"`
	BuyerID   string            `json:"buyerId"`
	SellerID  string            `json:"sellerId"`
	Amount    float64           `json:"amount"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	PaidAt    *time.Time        `json:"paidAt,omitempty"`
}

// Feedback is a buyer's or seller's review of a completed transaction. It
// references exactly one transaction and one author identity.
type Feedback struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	AuthorID      string    `json:"authorId"`
	SellerID      string    `json:"sellerId"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
