package domain

import "time"

// RFQStatus represents the lifecycle state of a request for quotation.
type RFQStatus string

const (
	RFQOpen    RFQStatus = "open"
	RFQAwarded RFQStatus = "awarded"
	RFQClosed  RFQStatus = "closed"
)

// rfqTransitions defines the allowed RFQ state machine transitions.
var rfqTransitions = map[RFQStatus][]RFQStatus{
	RFQOpen:    {RFQAwarded, RFQClosed},
	RFQAwarded: {RFQClosed},
}

// CanTransitionTo reports whether a transition from the current status to
// next is valid.
func (s RFQStatus) CanTransitionTo(next RFQStatus) bool {
	for _, allowed := range rfqTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FileRef points at a document already stored by the marketplace, addressable
// through the download endpoint of its owning entity.
type FileRef struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// RFQ is a buyer-posted specification sellers bid against.
type RFQ struct {
	ID             string    `json:"id"`
	BuyerID        string    `json:"buyerId"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Quantity       float64   `json:"quantity"`
	Unit           Unit      `json:"unit"`
	PurchaseNumber string    `json:"purchaseNumber"`
	Deadline       time.Time `json:"deadline"`
	Status         RFQStatus `json:"status"`
	AuctionDoc     *FileRef  `json:"auctionDoc,omitempty"`
	GuidelineDoc   *FileRef  `json:"guidelineDoc,omitempty"`
	AwardedBidID   string    `json:"awardedBidId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
