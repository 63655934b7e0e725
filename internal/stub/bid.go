package stub

import (
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

func (s *Server) createBid(c echo.Context) error {
	if callerRole(c) != domain.RoleSeller {
		return domain.ErrForbidden
	}
	sellerID := c.Param("sellerId")
	if sellerID != callerID(c) {
		return domain.ErrForbidden
	}

	var p ports.BidPayload
	if err := decodeDataPart(c, &p); err != nil {
		return err
	}

	s.store.mu.RLock()
	rfq, ok := s.store.rfqs[p.RFQID]
	s.store.mu.RUnlock()
	if !ok {
		return domain.ErrRFQNotFound
	}
	if rfq.Status != domain.RFQOpen {
		return domain.ErrInvalidTransition
	}

	acc, _ := s.store.accountByID(sellerID)
	bid := &domain.Bid{
		ID:         uuid.NewString(),
		RFQID:      p.RFQID,
		SellerID:   sellerID,
		Items:      p.Items,
		GrandTotal: sumItems(p.Items),
		Notes:      p.Notes,
		Status:     domain.BidPending,
		CreatedAt:  now(),
	}
	if acc != nil {
		bid.SellerName = acc.FirstName + " " + acc.LastName
	}
	if err := s.attachBidFile(c, bid); err != nil {
		return err
	}

	s.store.mu.Lock()
	s.store.bids[bid.ID] = bid
	s.store.mu.Unlock()

	bidsCreatedTotal.Inc()
	s.log.Info().Str("bid_id", bid.ID).Str("rfq_id", bid.RFQID).Float64("grand_total", bid.GrandTotal).Msg("bid created")
	return c.JSON(http.StatusCreated, bid)
}

func (s *Server) editBid(c echo.Context) error {
	bidID := c.Param("bidId")

	var p ports.BidPayload
	if err := decodeDataPart(c, &p); err != nil {
		return err
	}

	s.store.mu.Lock()
	bid, ok := s.store.bids[bidID]
	if !ok {
		s.store.mu.Unlock()
		return domain.ErrBidNotFound
	}
	if bid.SellerID != callerID(c) {
		s.store.mu.Unlock()
		return domain.ErrForbidden
	}
	if bid.Status != domain.BidPending {
		s.store.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	bid.Items = p.Items
	bid.GrandTotal = sumItems(p.Items)
	bid.Notes = p.Notes
	s.store.mu.Unlock()

	if err := s.attachBidFile(c, bid); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bid)
}

func (s *Server) attachBidFile(c echo.Context, bid *domain.Bid) error {
	ref, content, ok, err := readFilePart(c, "bidFiles")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	s.store.putFile("bid/"+bid.ID+"/"+ref.FileName, content)
	s.store.mu.Lock()
	bid.File = ref
	s.store.mu.Unlock()
	return nil
}

func (s *Server) viewBid(c echo.Context) error {
	s.store.mu.RLock()
	bid, ok := s.store.bids[c.Param("bidId")]
	s.store.mu.RUnlock()
	if !ok {
		return domain.ErrBidNotFound
	}
	return c.JSON(http.StatusOK, bid)
}

func (s *Server) listBidsByRFQ(c echo.Context) error {
	rfqID := c.Param("rfqId")

	s.store.mu.RLock()
	rfq, ok := s.store.rfqs[rfqID]
	if !ok {
		s.store.mu.RUnlock()
		return domain.ErrRFQNotFound
	}
	// Only the posting buyer sees the full bid list.
	if rfq.BuyerID != callerID(c) {
		s.store.mu.RUnlock()
		return domain.ErrForbidden
	}
	bids := make([]*domain.Bid, 0)
	for _, b := range s.store.bids {
		if b.RFQID == rfqID {
			bids = append(bids, b)
		}
	}
	s.store.mu.RUnlock()

	sortBids(bids)
	return c.JSON(http.StatusOK, bids)
}

func (s *Server) listBidsBySeller(c echo.Context) error {
	sellerID := c.Param("sellerId")
	if sellerID != callerID(c) {
		return domain.ErrForbidden
	}

	s.store.mu.RLock()
	bids := make([]*domain.Bid, 0)
	for _, b := range s.store.bids {
		if b.SellerID == sellerID {
			bids = append(bids, b)
		}
	}
	s.store.mu.RUnlock()

	sortBids(bids)
	return c.JSON(http.StatusOK, bids)
}

func (s *Server) deleteBid(c echo.Context) error {
	bidID := c.Param("bidId")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	bid, ok := s.store.bids[bidID]
	if !ok {
		return domain.ErrBidNotFound
	}
	if bid.SellerID != callerID(c) {
		return domain.ErrForbidden
	}
	if bid.Status != domain.BidPending {
		return domain.ErrInvalidTransition
	}
	delete(s.store.bids, bidID)
	return c.NoContent(http.StatusNoContent)
}

// awardBid marks one bid the winner, rejects its siblings and moves the RFQ
// to awarded. One award per RFQ.
func (s *Server) awardBid(c echo.Context) error {
	bidID := c.Param("bidId")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	bid, ok := s.store.bids[bidID]
	if !ok {
		return domain.ErrBidNotFound
	}
	rfq, ok := s.store.rfqs[bid.RFQID]
	if !ok {
		return domain.ErrRFQNotFound
	}
	if rfq.BuyerID != callerID(c) {
		return domain.ErrForbidden
	}
	if rfq.Status != domain.RFQOpen || rfq.AwardedBidID != "" {
		return domain.ErrAlreadyAwarded
	}
	if !bid.Status.CanTransitionTo(domain.BidAwarded) {
		return domain.ErrInvalidTransition
	}

	bid.Status = domain.BidAwarded
	rfq.Status = domain.RFQAwarded
	rfq.AwardedBidID = bid.ID
	for _, sibling := range s.store.bids {
		if sibling.RFQID == rfq.ID && sibling.ID != bid.ID && sibling.Status == domain.BidPending {
			sibling.Status = domain.BidRejected
		}
	}

	awardsTotal.Inc()
	s.log.Info().Str("bid_id", bid.ID).Str("rfq_id", rfq.ID).Msg("bid awarded")
	return c.JSON(http.StatusOK, bid)
}

func (s *Server) downloadBidFile(c echo.Context) error {
	content, ok := s.store.getFile("bid/" + c.Param("bidId") + "/" + c.Param("filename"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	return c.Blob(http.StatusOK, "application/octet-stream", content)
}

func sumItems(items []domain.LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.UnitPrice*it.Quantity + it.TransportFee + it.Taxes
	}
	return sum
}

func sortBids(bids []*domain.Bid) {
	sort.Slice(bids, func(i, j int) bool {
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})
}
