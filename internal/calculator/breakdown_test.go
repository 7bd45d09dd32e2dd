package calculator

import (
	"math"
	"reflect"
	"testing"

	"github.com/fairsplit/fairsplit/internal/models"
)

func frozenSnapshot() *models.BillSnapshot {
	mem := members("Alice", "Bob", "Charlie")
	items := []models.Item{
		{ID: "1", Name: "Som Tum", BaseName: "Som Tum", Price: 80, Participants: []string{"Alice", "Bob", "Charlie"}},
		{ID: "2", Name: "Grilled Chicken", BaseName: "Grilled Chicken", Price: 150, Participants: []string{"Alice", "Bob"}},
		{ID: "3", Name: "Sticky Rice (1)", BaseName: "Sticky Rice", Price: 20, Participants: []string{"Charlie"}},
	}
	cfg := models.SurchargeConfig{VATEnabled: true, ServiceChargeEnabled: true, ServiceChargePercent: 10}
	totals := ComputeTotals(mem, items, cfg)

	return &models.BillSnapshot{
		ID:                  "snap-1",
		Members:             mem,
		Items:               items,
		Subtotal:            totals.Subtotal,
		ServiceChargeAmount: totals.ServiceChargeAmount,
		VATAmount:           totals.VATAmount,
		GrandTotal:          totals.GrandTotal,
	}
}

func TestBreakdownForCollectsMemberItems(t *testing.T) {
	snap := frozenSnapshot()
	bd := BreakdownFor(snap, "Charlie")

	if len(bd.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(bd.Items))
	}
	wantFood := 80.0/3 + 20
	if math.Abs(bd.TotalFood-wantFood) > 0.01 {
		t.Errorf("totalFood = %v, want %v", bd.TotalFood, wantFood)
	}
	if bd.Items[0].SharedBy != 3 {
		t.Errorf("sharedBy = %d, want 3", bd.Items[0].SharedBy)
	}
	if math.Abs(bd.NetTotal-(bd.TotalFood+bd.ExtraCharge)) > 1e-9 {
		t.Errorf("netTotal = %v, want totalFood+extraCharge", bd.NetTotal)
	}
}

// TestBreakdownAgreesWithEngine checks that the projector's re-derivation
// from stored aggregates matches the engine's per-member shares.
func TestBreakdownAgreesWithEngine(t *testing.T) {
	snap := frozenSnapshot()
	cfg := models.SurchargeConfig{VATEnabled: true, ServiceChargeEnabled: true, ServiceChargePercent: 10}
	totals := ComputeTotals(snap.Members, snap.Items, cfg)

	for name, bd := range BreakdownAll(snap) {
		if math.Abs(bd.NetTotal-totals.MemberShares[name]) > 0.01 {
			t.Errorf("%s: projector = %v, engine = %v", name, bd.NetTotal, totals.MemberShares[name])
		}
	}
}

// TestBreakdownIdempotent checks that projecting the same immutable snapshot
// twice yields bit-identical results.
func TestBreakdownIdempotent(t *testing.T) {
	snap := frozenSnapshot()
	first := BreakdownAll(snap)
	second := BreakdownAll(snap)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("projector not idempotent:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestBreakdownZeroSubtotal(t *testing.T) {
	snap := &models.BillSnapshot{
		Members: members("Alice"),
		Items:   []models.Item{},
	}
	bd := BreakdownFor(snap, "Alice")
	if bd.TotalFood != 0 || bd.ExtraCharge != 0 || bd.NetTotal != 0 {
		t.Errorf("expected zero breakdown, got %+v", bd)
	}
}

func TestBreakdownUnknownMember(t *testing.T) {
	snap := frozenSnapshot()
	bd := BreakdownFor(snap, "Nobody")
	if len(bd.Items) != 0 || bd.NetTotal != 0 {
		t.Errorf("expected empty breakdown for unknown member, got %+v", bd)
	}
}
