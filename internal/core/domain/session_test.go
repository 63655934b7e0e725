package domain

import "testing"

func TestSessionAllOrNothing(t *testing.T) {
	full := Session{AuthToken: "t", DisplayName: "Abebe Kebede", UserID: "u1", ActiveRole: RoleBuyer}
	empty := Session{}
	partial := Session{AuthToken: "t", UserID: "u1"}

	if !full.Authenticated() || full.Empty() || full.Partial() {
		t.Errorf("full session misclassified: %+v", full)
	}
	if empty.Authenticated() || !empty.Empty() || empty.Partial() {
		t.Errorf("empty session misclassified: %+v", empty)
	}
	if partial.Authenticated() || partial.Empty() || !partial.Partial() {
		t.Errorf("partial session misclassified: %+v", partial)
	}
}

func TestRFQStatusTransitions(t *testing.T) {
	if !RFQOpen.CanTransitionTo(RFQAwarded) {
		t.Error("open -> awarded must be legal")
	}
	if RFQAwarded.CanTransitionTo(RFQOpen) {
		t.Error("awarded -> open must be illegal")
	}
}

func TestBidStatusTransitions(t *testing.T) {
	if !BidPending.CanTransitionTo(BidAwarded) || !BidPending.CanTransitionTo(BidRejected) {
		t.Error("pending must reach awarded and rejected")
	}
	if BidAwarded.CanTransitionTo(BidPending) {
		t.Error("awarded -> pending must be illegal")
	}
}
