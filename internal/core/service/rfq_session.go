package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

// deadlineLayout is the wire and input format for RFQ deadlines.
const deadlineLayout = "2006-01-02"

// RFQFields are the editable fields of the post-RFQ and edit-RFQ forms.
// Numeric and date fields stay raw strings until payload construction, the
// same mid-edit rule the bid line items follow.
type RFQFields struct {
	Title          string
	Description    string
	Quantity       string
	Unit           domain.Unit
	PurchaseNumber string
	Deadline       string
}

// RFQSession is the form session behind posting and editing an RFQ. Unlike a
// bid form it has no line items, but it carries two required documents: the
// auction notice and the bidding guideline.
type RFQSession struct {
	formCore

	api      ports.RFQAPI
	gate     *Gate
	notifier ports.Notifier
	log      zerolog.Logger

	buyerID string
	rfqID   string

	fields       RFQFields
	auctionDoc   domain.Attachment
	guidelineDoc domain.Attachment
}

// NewRFQCreateSession opens a fresh post-RFQ form for the given buyer.
func NewRFQCreateSession(api ports.RFQAPI, gate *Gate, notifier ports.Notifier, log zerolog.Logger, buyerID string) *RFQSession {
	return &RFQSession{
		formCore: newFormCore(ModeCreate, LeaveForm),
		api:      api,
		gate:     gate,
		notifier: notifier,
		log:      log.With().Str("form", "rfq").Logger(),
		buyerID:  buyerID,
		fields:   RFQFields{Quantity: "0", Unit: domain.UnitPieces},
	}
}

// NewRFQEditSession opens an edit form for an existing RFQ; Load must run
// before any mutation.
func NewRFQEditSession(api ports.RFQAPI, gate *Gate, notifier ports.Notifier, log zerolog.Logger, rfqID string) *RFQSession {
	return &RFQSession{
		formCore: newFormCore(ModeEdit, StayOnForm),
		api:      api,
		gate:     gate,
		notifier: notifier,
		log:      log.With().Str("form", "rfq").Str("rfq_id", rfqID).Logger(),
		rfqID:    rfqID,
	}
}

// Load fetches the RFQ being edited and populates the session.
func (s *RFQSession) Load(ctx context.Context) error {
	if s.state != StateLoading {
		return fmt.Errorf("load in state %s: %w", s.state, domain.ErrInvalidTransition)
	}

	rfq, err := s.api.GetRFQ(ctx, s.rfqID)
	if err != nil {
		s.lastError = normalizeAPIError(err)
		s.notifier.Error(s.lastError.Message)
		s.log.Error().Err(err).Msg("rfq fetch failed")
		return err
	}

	s.buyerID = rfq.BuyerID
	s.fields = RFQFields{
		Title:          rfq.Title,
		Description:    rfq.Description,
		Quantity:       formatAmount(rfq.Quantity),
		Unit:           rfq.Unit,
		PurchaseNumber: rfq.PurchaseNumber,
		Deadline:       rfq.Deadline.Format(deadlineLayout),
	}
	if rfq.AuctionDoc != nil {
		s.auctionDoc = domain.Attachment{Existing: rfq.AuctionDoc}
	}
	if rfq.GuidelineDoc != nil {
		s.guidelineDoc = domain.Attachment{Existing: rfq.GuidelineDoc}
	}
	return s.transition(StateEditing)
}

// Fields returns the current committed field values.
func (s *RFQSession) Fields() RFQFields { return s.fields }

// SetFields commits a full field update from the view.
func (s *RFQSession) SetFields(f RFQFields) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.fields = f
	return nil
}

// AttachAuctionDoc replaces the auction notice document.
func (s *RFQSession) AttachAuctionDoc(a domain.Attachment) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.auctionDoc = a
	return nil
}

// AttachGuidelineDoc replaces the bidding guideline document.
func (s *RFQSession) AttachGuidelineDoc(a domain.Attachment) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.guidelineDoc = a
	return nil
}

// Submit validates the form and pushes the RFQ to the marketplace, with the
// same no-data-loss failure contract as bid submission.
func (s *RFQSession) Submit(ctx context.Context) (*domain.RFQ, error) {
	if s.state == StateSubmitting {
		return nil, domain.ErrSubmitInFlight
	}
	if s.state != StateEditing && s.state != StateSubmitFailed {
		return nil, fmt.Errorf("submit in state %s: %w", s.state, domain.ErrInvalidTransition)
	}

	if errs := s.gate.RFQ(s.fields, s.auctionDoc, s.guidelineDoc); len(errs) > 0 {
		s.errors = errs
		if s.state == StateSubmitFailed {
			_ = s.transition(StateEditing)
		}
		return nil, domain.ErrValidationFailed
	}
	s.errors = domain.ErrorMap{}

	if err := s.transition(StateSubmitting); err != nil {
		return nil, err
	}

	payload := s.buildPayload()
	files := s.uploads()

	var rfq *domain.RFQ
	var err error
	if s.mode == ModeCreate {
		rfq, err = s.api.CreateRFQ(ctx, s.buyerID, payload, files)
	} else {
		rfq, err = s.api.EditRFQ(ctx, s.rfqID, payload, files)
	}
	if err != nil {
		s.lastError = normalizeAPIError(err)
		_ = s.transition(StateSubmitFailed)
		s.notifier.Error(s.lastError.Message)
		s.log.Error().Err(err).Msg("rfq submission failed")
		return nil, err
	}

	_ = s.transition(StateSubmitSucceeded)
	if s.mode == ModeCreate {
		s.notifier.Success("rfq posted")
	} else {
		s.notifier.Success("rfq updated")
	}
	s.log.Info().Str("rfq_id", rfq.ID).Msg("rfq submitted")
	return rfq, nil
}

func (s *RFQSession) buildPayload() ports.RFQPayload {
	deadline, _ := time.Parse(deadlineLayout, s.fields.Deadline)
	return ports.RFQPayload{
		Title:          s.fields.Title,
		Description:    s.fields.Description,
		Quantity:       domain.ParseAmount(s.fields.Quantity),
		Unit:           s.fields.Unit,
		PurchaseNumber: s.fields.PurchaseNumber,
		Deadline:       deadline,
	}
}

func (s *RFQSession) uploads() []ports.Upload {
	var files []ports.Upload
	if s.auctionDoc.HasNewContent() {
		files = append(files, ports.Upload{
			Field:       "auctionDoc",
			FileName:    s.auctionDoc.FileName,
			ContentType: s.auctionDoc.ContentType,
			Content:     s.auctionDoc.Content,
		})
	}
	if s.guidelineDoc.HasNewContent() {
		files = append(files, ports.Upload{
			Field:       "guidelineDoc",
			FileName:    s.guidelineDoc.FileName,
			ContentType: s.guidelineDoc.ContentType,
			Content:     s.guidelineDoc.Content,
		})
	}
	return files
}
