package domain

import "time"

// BidStatus represents the lifecycle state of a bid.
type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAwarded  BidStatus = "awarded"
	BidRejected BidStatus = "rejected"
)

// bidTransitions defines the allowed bid state machine transitions. Awarding
// one bid rejects its siblings; neither outcome can be reverted.
var bidTransitions = map[BidStatus][]BidStatus{
	BidPending: {BidAwarded, BidRejected},
}

// CanTransitionTo reports whether a transition from the current status to
// next is valid.
func (s BidStatus) CanTransitionTo(next BidStatus) bool {
	for _, allowed := range bidTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Bid is a seller's priced response to an RFQ. GrandTotal is always the sum
// of the item totals; the marketplace recomputes it server-side and the
// client never trusts a stale cached value.
type Bid struct {
	ID         string     `json:"id"`
	RFQID      string     `json:"rfqId"`
	SellerID   string     `json:"sellerId"`
	SellerName string     `json:"sellerName,omitempty"`
	Items      []LineItem `json:"items"`
	GrandTotal float64    `json:"grandTotal"`
	Notes      string     `json:"notes,omitempty"`
	File       *FileRef   `json:"file,omitempty"`
	Status     BidStatus  `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Product is a catalogue entry a seller advertises outside any RFQ.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"sellerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UnitPrice   float64   `json:"unitPrice"`
	Unit        Unit      `json:"unit"`
	CreatedAt   time.Time `json:"createdAt"`
}
