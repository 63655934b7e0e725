package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

// ItemField names one editable column of a line item row. The constants
// double as validation error keys.
type ItemField string

const (
	FieldName         ItemField = "name"
	FieldQuantity     ItemField = "quantity"
	FieldUnit         ItemField = "unit"
	FieldUnitPrice    ItemField = "unitPrice"
	FieldTransportFee ItemField = "transportFee"
	FieldTaxes        ItemField = "taxes"
)

// BidSession is the form session behind the create-bid and edit-bid flows:
// the ordered line items, the attached document, validation errors and the
// submission state machine. It is single-caller state; all mutation happens
// through its methods on the event loop of the owning view.
type BidSession struct {
	formCore

	api      ports.BidAPI
	gate     *Gate
	notifier ports.Notifier
	log      zerolog.Logger

	sellerID string
	rfqID    string
	bidID    string
	notes    string

	items          []domain.LineItemDraft
	file           domain.Attachment
	grandTotal     float64
	pendingRemoval int
}

// NewBidCreateSession opens a fresh bid form against the given RFQ. Creation
// flows leave the form for the bid list after success.
func NewBidCreateSession(api ports.BidAPI, gate *Gate, notifier ports.Notifier, log zerolog.Logger, sellerID, rfqID string) *BidSession {
	return &BidSession{
		formCore:       newFormCore(ModeCreate, LeaveForm),
		api:            api,
		gate:           gate,
		notifier:       notifier,
		log:            log.With().Str("form", "bid").Str("rfq_id", rfqID).Logger(),
		sellerID:       sellerID,
		rfqID:          rfqID,
		pendingRemoval: noPendingRemoval,
	}
}

// NewBidEditSession opens an edit form for an existing bid. The session
// starts in Loading until Load populates it; edits stay on the form after a
// successful submission.
func NewBidEditSession(api ports.BidAPI, gate *Gate, notifier ports.Notifier, log zerolog.Logger, bidID string) *BidSession {
	return &BidSession{
		formCore:       newFormCore(ModeEdit, StayOnForm),
		api:            api,
		gate:           gate,
		notifier:       notifier,
		log:            log.With().Str("form", "bid").Str("bid_id", bidID).Logger(),
		bidID:          bidID,
		pendingRemoval: noPendingRemoval,
	}
}

// Load fetches the bid being edited and populates the session. The ctx is
// owned by the view; cancelling it on teardown abandons the fetch instead of
// racing it.
func (s *BidSession) Load(ctx context.Context) error {
	if s.state != StateLoading {
		return fmt.Errorf("load in state %s: %w", s.state, domain.ErrInvalidTransition)
	}

	bid, err := s.api.GetBid(ctx, s.bidID)
	if err != nil {
		s.lastError = normalizeAPIError(err)
		s.notifier.Error(s.lastError.Message)
		s.log.Error().Err(err).Msg("bid fetch failed")
		return err
	}

	s.rfqID = bid.RFQID
	s.sellerID = bid.SellerID
	s.notes = bid.Notes
	s.items = make([]domain.LineItemDraft, 0, len(bid.Items))
	for _, it := range bid.Items {
		s.items = append(s.items, draftFromItem(it))
	}
	if bid.File != nil {
		s.file = domain.Attachment{Existing: bid.File}
	}
	s.recompute()
	return s.transition(StateEditing)
}

// Items returns the current line item drafts in order.
func (s *BidSession) Items() []domain.LineItemDraft { return s.items }

// GrandTotal returns the sum of all derived row totals. It is recomputed on
// every mutation, never served stale.
func (s *BidSession) GrandTotal() float64 { return s.grandTotal }

// RFQID returns the RFQ this bid answers.
func (s *BidSession) RFQID() string { return s.rfqID }

// File returns the current attachment.
func (s *BidSession) File() domain.Attachment { return s.file }

// AddItem appends a zero-valued line item row.
func (s *BidSession) AddItem() error {
	if err := s.touch(); err != nil {
		return err
	}
	s.items = append(s.items, domain.NewLineItemDraft())
	s.recompute()
	return nil
}

// SetItemField commits a single field edit and synchronously recomputes the
// row total and the grand total.
func (s *BidSession) SetItemField(index int, field ItemField, value string) error {
	if err := s.touch(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("line item %d out of range", index)
	}

	item := &s.items[index]
	switch field {
	case FieldName:
		item.Name = value
	case FieldQuantity:
		item.Quantity = value
	case FieldUnit:
		item.Unit = domain.Unit(value)
	case FieldUnitPrice:
		item.UnitPrice = value
	case FieldTransportFee:
		item.TransportFee = value
	case FieldTaxes:
		item.Taxes = value
	default:
		return fmt.Errorf("unknown line item field %q", field)
	}
	s.recompute()
	return nil
}

// SetNotes commits the free-text notes field.
func (s *BidSession) SetNotes(notes string) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.notes = notes
	return nil
}

// AttachFile replaces the bid document. A newly picked file supersedes any
// stored reference.
func (s *BidSession) AttachFile(a domain.Attachment) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.file = a
	return nil
}

// RequestRemoveItem marks the row at index for removal, pending the user's
// confirmation. Nothing is mutated until ConfirmRemoval.
func (s *BidSession) RequestRemoveItem(index int) error {
	if err := s.touch(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("line item %d out of range", index)
	}
	s.pendingRemoval = index
	return nil
}

// PendingRemoval returns the row awaiting removal confirmation, or -1.
func (s *BidSession) PendingRemoval() int { return s.pendingRemoval }

// ConfirmRemoval removes exactly the requested row and recomputes the grand
// total. Without a pending request it is a no-op.
func (s *BidSession) ConfirmRemoval() {
	if s.pendingRemoval == noPendingRemoval {
		return
	}
	i := s.pendingRemoval
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.pendingRemoval = noPendingRemoval
	s.recompute()
}

// CancelRemoval abandons a pending removal without mutating the items.
func (s *BidSession) CancelRemoval() {
	s.pendingRemoval = noPendingRemoval
}

// Submit runs the validation gate and, when it passes, pushes the bid to the
// marketplace. A failure leaves every entered value intact and surfaces an
// error notification; the soft double-submit guard rejects a second Submit
// while one is in flight.
func (s *BidSession) Submit(ctx context.Context) (*domain.Bid, error) {
	if s.state == StateSubmitting {
		return nil, domain.ErrSubmitInFlight
	}
	if s.state != StateEditing && s.state != StateSubmitFailed {
		return nil, fmt.Errorf("submit in state %s: %w", s.state, domain.ErrInvalidTransition)
	}

	if errs := s.gate.Bid(s.items, s.file); len(errs) > 0 {
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

	var bid *domain.Bid
	var err error
	if s.mode == ModeCreate {
		bid, err = s.api.CreateBid(ctx, s.sellerID, payload, files)
	} else {
		bid, err = s.api.EditBid(ctx, s.bidID, payload, files)
	}
	if err != nil {
		s.lastError = normalizeAPIError(err)
		_ = s.transition(StateSubmitFailed)
		s.notifier.Error(s.lastError.Message)
		s.log.Error().Err(err).Float64("grand_total", s.grandTotal).Msg("bid submission failed")
		return nil, err
	}

	_ = s.transition(StateSubmitSucceeded)
	if s.mode == ModeCreate {
		s.notifier.Success("bid submitted")
	} else {
		s.notifier.Success("bid updated")
	}
	s.log.Info().Str("bid_id", bid.ID).Float64("grand_total", bid.GrandTotal).Msg("bid submitted")
	return bid, nil
}

// buildPayload is the single coercion point from form state to transport
// shape: every numeric field becomes a float64, absent optionals become 0.
func (s *BidSession) buildPayload() ports.BidPayload {
	items := make([]domain.LineItem, 0, len(s.items))
	for _, d := range s.items {
		items = append(items, d.Commit())
	}
	return ports.BidPayload{
		RFQID:      s.rfqID,
		Items:      items,
		GrandTotal: domain.AggregateTotal(s.items),
		Notes:      s.notes,
	}
}

func (s *BidSession) uploads() []ports.Upload {
	if !s.file.HasNewContent() {
		return nil
	}
	return []ports.Upload{{
		Field:       "bidFiles",
		FileName:    s.file.FileName,
		ContentType: s.file.ContentType,
		Content:     s.file.Content,
	}}
}

func (s *BidSession) recompute() {
	s.grandTotal = domain.AggregateTotal(s.items)
}

func draftFromItem(it domain.LineItem) domain.LineItemDraft {
	return domain.LineItemDraft{
		Name:         it.Name,
		Quantity:     formatAmount(it.Quantity),
		Unit:         it.Unit,
		UnitPrice:    formatAmount(it.UnitPrice),
		TransportFee: formatAmount(it.TransportFee),
		Taxes:        formatAmount(it.Taxes),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// normalizeAPIError reduces any transport failure to the canonical
// {message, code?, status?} shape the views display.
func normalizeAPIError(err error) *domain.APIError {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &domain.APIError{Message: err.Error()}
}
