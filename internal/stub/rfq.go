package stub

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

// decodeDataPart parses the "data" JSON blob of a multipart submission.
func decodeDataPart(c echo.Context, out any) error {
	raw := c.FormValue("data")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing data part")
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data part")
	}
	return nil
}

// readFilePart returns the named file part, or ok=false when absent.
func readFilePart(c echo.Context, field string) (*domain.FileRef, []byte, bool, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, false, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, false, echo.NewHTTPError(http.StatusBadRequest, "unreadable file part")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, false, echo.NewHTTPError(http.StatusBadRequest, "unreadable file part")
	}
	ref := &domain.FileRef{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        int64(len(content)),
	}
	return ref, content, true, nil
}

func (s *Server) postRFQ(c echo.Context) error {
	if callerRole(c) != domain.RoleBuyer {
		return domain.ErrForbidden
	}
	buyerID := c.Param("buyerId")
	if buyerID != callerID(c) {
		return domain.ErrForbidden
	}

	var p ports.RFQPayload
	if err := decodeDataPart(c, &p); err != nil {
		return err
	}

	rfq := &domain.RFQ{
		ID:             uuid.NewString(),
		BuyerID:        buyerID,
		Title:          p.Title,
		Description:    p.Description,
		Quantity:       p.Quantity,
		Unit:           p.Unit,
		PurchaseNumber: p.PurchaseNumber,
		Deadline:       p.Deadline,
		Status:         domain.RFQOpen,
		CreatedAt:      now(),
	}
	if err := s.attachRFQDocs(c, rfq); err != nil {
		return err
	}

	s.store.mu.Lock()
	s.store.rfqs[rfq.ID] = rfq
	s.store.mu.Unlock()

	rfqsCreatedTotal.Inc()
	s.log.Info().Str("rfq_id", rfq.ID).Str("buyer_id", buyerID).Msg("rfq posted")
	return c.JSON(http.StatusCreated, rfq)
}

func (s *Server) editRFQ(c echo.Context) error {
	rfqID := c.Param("rfqId")

	var p ports.RFQPayload
	if err := decodeDataPart(c, &p); err != nil {
		return err
	}

	s.store.mu.Lock()
	rfq, ok := s.store.rfqs[rfqID]
	if !ok {
		s.store.mu.Unlock()
		return domain.ErrRFQNotFound
	}
	if rfq.BuyerID != callerID(c) {
		s.store.mu.Unlock()
		return domain.ErrForbidden
	}
	rfq.Title = p.Title
	rfq.Description = p.Description
	rfq.Quantity = p.Quantity
	rfq.Unit = p.Unit
	rfq.PurchaseNumber = p.PurchaseNumber
	rfq.Deadline = p.Deadline
	s.store.mu.Unlock()

	if err := s.attachRFQDocs(c, rfq); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rfq)
}

func (s *Server) attachRFQDocs(c echo.Context, rfq *domain.RFQ) error {
	for _, field := range []string{"auctionDoc", "guidelineDoc"} {
		ref, content, ok, err := readFilePart(c, field)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		s.store.putFile("rfq/"+rfq.ID+"/"+ref.FileName, content)
		s.store.mu.Lock()
		if field == "auctionDoc" {
			rfq.AuctionDoc = ref
		} else {
			rfq.GuidelineDoc = ref
		}
		s.store.mu.Unlock()
	}
	return nil
}

func (s *Server) viewRFQ(c echo.Context) error {
	s.store.mu.RLock()
	rfq, ok := s.store.rfqs[c.Param("rfqId")]
	s.store.mu.RUnlock()
	if !ok {
		return domain.ErrRFQNotFound
	}
	return c.JSON(http.StatusOK, rfq)
}

func (s *Server) listOpenRFQs(c echo.Context) error {
	s.store.mu.RLock()
	rfqs := make([]*domain.RFQ, 0, len(s.store.rfqs))
	for _, r := range s.store.rfqs {
		if r.Status == domain.RFQOpen {
			rfqs = append(rfqs, r)
		}
	}
	s.store.mu.RUnlock()

	sortRFQs(rfqs)
	return c.JSON(http.StatusOK, rfqs)
}

func (s *Server) listRFQsByBuyer(c echo.Context) error {
	buyerID := c.Param("buyerId")
	s.store.mu.RLock()
	rfqs := make([]*domain.RFQ, 0)
	for _, r := range s.store.rfqs {
		if r.BuyerID == buyerID {
			rfqs = append(rfqs, r)
		}
	}
	s.store.mu.RUnlock()

	sortRFQs(rfqs)
	return c.JSON(http.StatusOK, rfqs)
}

func (s *Server) deleteRFQ(c echo.Context) error {
	rfqID := c.Param("rfqId")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	rfq, ok := s.store.rfqs[rfqID]
	if !ok {
		return domain.ErrRFQNotFound
	}
	if rfq.BuyerID != callerID(c) {
		return domain.ErrForbidden
	}
	delete(s.store.rfqs, rfqID)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) downloadRFQFile(c echo.Context) error {
	content, ok := s.store.getFile("rfq/" + c.Param("rfqId") + "/" + c.Param("filename"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	return c.Blob(http.StatusOK, "application/octet-stream", content)
}

func sortRFQs(rfqs []*domain.RFQ) {
	sort.Slice(rfqs, func(i, j int) bool {
		return rfqs[i].CreatedAt.After(rfqs[j].CreatedAt)
	})
}
