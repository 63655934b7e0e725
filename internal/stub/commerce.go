package stub

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

func (s *Server) createProduct(c echo.Context) error {
	sellerID := c.Param("sellerId")
	if callerRole(c) != domain.RoleSeller || sellerID != callerID(c) {
		return domain.ErrForbidden
	}

	var p ports.ProductPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	product := &domain.Product{
		ID:          uuid.NewString(),
		SellerID:    sellerID,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		Unit:        p.Unit,
		CreatedAt:   now(),
	}
	s.store.mu.Lock()
	s.store.products[product.ID] = product
	s.store.mu.Unlock()

	return c.JSON(http.StatusCreated, product)
}

func (s *Server) listProducts(c echo.Context) error {
	sellerID := c.Param("sellerId")
	s.store.mu.RLock()
	products := make([]*domain.Product, 0)
	for _, p := range s.store.products {
		if p.SellerID == sellerID {
			products = append(products, p)
		}
	}
	s.store.mu.RUnlock()
	return c.JSON(http.StatusOK, products)
}

func (s *Server) deleteProduct(c echo.Context) error {
	productID := c.Param("productId")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	product, ok := s.store.products[productID]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	if product.SellerID != callerID(c) {
		return domain.ErrForbidden
	}
	delete(s.store.products, productID)
	return c.NoContent(http.StatusNoContent)
}

// createTransaction opens the payment record for an awarded bid. Only the
// buyer who posted the RFQ may open it, and only once per bid.
func (s *Server) createTransaction(c echo.Context) error {
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
	if bid.Status != domain.BidAwarded {
		return domain.ErrInvalidTransition
	}
	for _, existing := range s.store.transactions {
		if existing.BidID == bidID {
			return c.JSON(http.StatusOK, existing)
		}
	}

	tx := &domain.Transaction{
		ID:        uuid.NewString(),
		BidID:     bid.ID,
		RFQID:     rfq.ID,
		BuyerID:   rfq.BuyerID,
		SellerID:  bid.SellerID,
		Amount:    bid.GrandTotal,
		Status:    domain.TransactionPending,
		CreatedAt: now(),
	}
	s.store.transactions[tx.ID] = tx
	return c.JSON(http.StatusCreated, tx)
}

func (s *Server) viewTransaction(c echo.Context) error {
	s.store.mu.RLock()
	tx, ok := s.store.transactions[c.Param("txId")]
	s.store.mu.RUnlock()
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if tx.BuyerID != callerID(c) && tx.SellerID != callerID(c) {
		return domain.ErrForbidden
	}
	return c.JSON(http.StatusOK, tx)
}

func (s *Server) listTransactions(c echo.Context) error {
	userID := c.Param("userId")
	if userID != callerID(c) {
		return domain.ErrForbidden
	}

	s.store.mu.RLock()
	txs := make([]*domain.Transaction, 0)
	for _, tx := range s.store.transactions {
		if tx.BuyerID == userID || tx.SellerID == userID {
			txs = append(txs, tx)
		}
	}
	s.store.mu.RUnlock()
	return c.JSON(http.StatusOK, txs)
}

type paymentResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

// pay marks a pending transaction paid and hands back the checkout URL the
// client redirects to.
func (s *Server) pay(c echo.Context) error {
	txID := c.Param("txId")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	tx, ok := s.store.transactions[txID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if tx.BuyerID != callerID(c) {
		return domain.ErrForbidden
	}
	if tx.Status != domain.TransactionPending {
		return domain.ErrInvalidTransition
	}

	paidAt := now()
	tx.Status = domain.TransactionPaid
	tx.PaidAt = &paidAt
	return c.JSON(http.StatusOK, paymentResponse{
		CheckoutURL: s.checkoutBase + "/" + tx.ID,
	})
}

func (s *Server) createFeedback(c echo.Context) error {
	var p ports.FeedbackPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if p.Rating < 1 || p.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	tx, ok := s.store.transactions[p.TransactionID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if tx.BuyerID != callerID(c) && tx.SellerID != callerID(c) {
		return domain.ErrForbidden
	}
	if tx.Status != domain.TransactionPaid {
		return domain.ErrInvalidTransition
	}

	fb := &domain.Feedback{
		ID:            uuid.NewString(),
		TransactionID: tx.ID,
		AuthorID:      callerID(c),
		SellerID:      tx.SellerID,
		Rating:        p.Rating,
		Comment:       p.Comment,
		CreatedAt:     now(),
	}
	s.store.feedback[fb.ID] = fb
	return c.JSON(http.StatusCreated, fb)
}

func (s *Server) listFeedbackBySeller(c echo.Context) error {
	sellerID := c.Param("sellerId")
	s.store.mu.RLock()
	fbs := make([]*domain.Feedback, 0)
	for _, fb := range s.store.feedback {
		if fb.SellerID == sellerID {
			fbs = append(fbs, fb)
		}
	}
	s.store.mu.RUnlock()
	return c.JSON(http.StatusOK, fbs)
}
