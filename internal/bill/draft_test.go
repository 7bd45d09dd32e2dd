package bill

import (
	"errors"
	"strings"
	"testing"

	"github.com/fairsplit/fairsplit/internal/models"
)

func TestAddMember(t *testing.T) {
	d := NewDraft("Host")

	if _, err := d.AddMember("Alice"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if _, err := d.AddMember("  Alice  "); !errors.Is(err, ErrDuplicateMember) {
		t.Errorf("duplicate member error = %v, want ErrDuplicateMember", err)
	}
	if _, err := d.AddMember("   "); !errors.Is(err, ErrEmptyMemberName) {
		t.Errorf("empty member error = %v, want ErrEmptyMemberName", err)
	}

	state := d.State()
	if len(state.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(state.Members))
	}
	if state.Members[1].Avatar == "" {
		t.Error("new member should get an avatar")
	}
}

func TestRemoveMemberCascades(t *testing.T) {
	d := NewDraft("Host")
	d.AddMember("Alice")
	d.AddMember("Bob")
	state, _ := d.AddItem("Pizza", 90, 1)
	itemID := state.Items[0].ID
	d.ToggleParticipant(itemID, "Alice")
	d.ToggleParticipant(itemID, "Bob")

	state, err := d.RemoveMember("Alice")
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	for _, item := range state.Items {
		for _, p := range item.Participants {
			if p == "Alice" {
				t.Errorf("removed member still participates in %s", item.Name)
			}
		}
	}
	if _, ok := state.Totals.MemberShares["Alice"]; ok {
		t.Error("removed member still has a share")
	}
}

func TestRemoveLastMemberForbidden(t *testing.T) {
	d := NewDraft("Host")
	if _, err := d.RemoveMember("Host"); !errors.Is(err, ErrLastMember) {
		t.Errorf("error = %v, want ErrLastMember", err)
	}
	if len(d.State().Members) != 1 {
		t.Error("failed removal must not change state")
	}
}

func TestAddItemQuantityExpansion(t *testing.T) {
	d := NewDraft("Host")
	state, err := d.AddItem("Beer", 95, 3)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if len(state.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(state.Items))
	}
	seen := map[string]bool{}
	for i, item := range state.Items {
		want := []string{"Beer (1)", "Beer (2)", "Beer (3)"}[i]
		if item.Name != want {
			t.Errorf("item %d name = %q, want %q", i, item.Name, want)
		}
		if item.BaseName != "Beer" {
			t.Errorf("item %d baseName = %q, want Beer", i, item.BaseName)
		}
		if item.Price != 95 {
			t.Errorf("item %d price = %v, want 95", i, item.Price)
		}
		if len(item.Participants) != 0 {
			t.Errorf("item %d should start with no participants", i)
		}
		if seen[item.ID] {
			t.Errorf("duplicate item id %q", item.ID)
		}
		seen[item.ID] = true
	}

	// qty == 1 keeps the plain name.
	state, _ = d.AddItem("Rice", 20, 1)
	last := state.Items[len(state.Items)-1]
	if last.Name != "Rice" || last.BaseName != "Rice" {
		t.Errorf("single item name/baseName = %q/%q, want Rice/Rice", last.Name, last.BaseName)
	}
}

func TestAddItemValidation(t *testing.T) {
	d := NewDraft("Host")
	tests := []struct {
		name    string
		item    string
		price   float64
		qty     int
		wantErr error
	}{
		{"empty name", "  ", 10, 1, ErrEmptyItemName},
		{"negative price", "Soup", -5, 1, ErrInvalidPrice},
		{"zero quantity", "Soup", 10, 0, ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.AddItem(tt.item, tt.price, tt.qty); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if len(d.State().Items) != 0 {
		t.Error("failed mutations must not add items")
	}
}

func TestRenameItemRederivesBaseName(t *testing.T) {
	d := NewDraft("Host")
	state, _ := d.AddItem("Beer", 95, 2)
	id := state.Items[0].ID

	state, err := d.RenameItem(id, "Singha (1)")
	if err != nil {
		t.Fatalf("RenameItem failed: %v", err)
	}
	if state.Items[0].Name != "Singha (1)" {
		t.Errorf("name = %q, want Singha (1)", state.Items[0].Name)
	}
	if state.Items[0].BaseName != "Singha" {
		t.Errorf("baseName = %q, want Singha", state.Items[0].BaseName)
	}
}

func TestToggleParticipant(t *testing.T) {
	d := NewDraft("Host")
	d.AddMember("Alice")
	state, _ := d.AddItem("Pad Thai", 120, 1)
	id := state.Items[0].ID

	state, _ = d.ToggleParticipant(id, "Alice")
	if !state.Items[0].HasParticipant("Alice") {
		t.Fatal("toggle on failed")
	}
	state, _ = d.ToggleParticipant(id, "Alice")
	if state.Items[0].HasParticipant("Alice") {
		t.Fatal("toggle off failed")
	}
	if _, err := d.ToggleParticipant(id, "Ghost"); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("error = %v, want ErrUnknownMember", err)
	}
}

func TestToggleAllParticipants(t *testing.T) {
	d := NewDraft("Host")
	d.AddMember("Alice")
	d.AddMember("Bob")
	state, _ := d.AddItem("Hotpot", 400, 1)
	id := state.Items[0].ID

	state, _ = d.ToggleAllParticipants(id)
	if len(state.Items[0].Participants) != 3 {
		t.Fatalf("participants = %d, want 3", len(state.Items[0].Participants))
	}
	state, _ = d.ToggleAllParticipants(id)
	if len(state.Items[0].Participants) != 0 {
		t.Fatalf("participants = %d, want 0 after second toggle", len(state.Items[0].Participants))
	}
}

func TestSubscribersFireOnlyOnSuccess(t *testing.T) {
	d := NewDraft("Host")
	var notified int
	var lastSubtotal float64
	d.Subscribe(func(s State) {
		notified++
		lastSubtotal = s.Totals.Subtotal
	})

	d.AddItem("Rice", 20, 1)
	if notified != 1 {
		t.Fatalf("notified = %d, want 1", notified)
	}
	if lastSubtotal != 20 {
		t.Errorf("subscriber saw subtotal %v, want 20", lastSubtotal)
	}

	d.AddItem("", 10, 1) // invalid, must not notify
	if notified != 1 {
		t.Errorf("failed mutation notified subscribers (count = %d)", notified)
	}
}

func TestSetSurchargeRecomputesTotals(t *testing.T) {
	d := NewDraft("Host")
	state, _ := d.AddItem("Steak", 100, 1)
	d.ToggleParticipant(state.Items[0].ID, "Host")

	state, err := d.SetSurcharge(models.SurchargeConfig{
		VATEnabled:           true,
		ServiceChargeEnabled: true,
		ServiceChargePercent: 10,
	})
	if err != nil {
		t.Fatalf("SetSurcharge failed: %v", err)
	}
	if got := state.Totals.GrandTotal; got < 117.69 || got > 117.71 {
		t.Errorf("grandTotal = %v, want 117.70", got)
	}

	if _, err := d.SetSurcharge(models.SurchargeConfig{ServiceChargePercent: -1}); !errors.Is(err, ErrInvalidPercent) {
		t.Errorf("error = %v, want ErrInvalidPercent", err)
	}
}

func TestResetKeepsHost(t *testing.T) {
	d := NewDraft("Host")
	d.AddMember("Alice")
	d.AddItem("Beer", 95, 2)
	d.SetSurcharge(models.SurchargeConfig{VATEnabled: true, ServiceChargePercent: 10})

	state, err := d.Reset()
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if len(state.Members) != 1 || state.Members[0].Name != "Host" {
		t.Errorf("members after reset = %+v, want just Host", state.Members)
	}
	if len(state.Items) != 0 {
		t.Errorf("items after reset = %d, want 0", len(state.Items))
	}
	if state.Config.VATEnabled || state.Config.ServiceChargePercent != models.DefaultServiceChargePercent {
		t.Errorf("config after reset = %+v, want defaults", state.Config)
	}
}

func TestGroupItemsUsesBaseName(t *testing.T) {
	items := []models.Item{
		{ID: "1", Name: "Beer (1)", BaseName: "Beer", Price: 95},
		{ID: "2", Name: "Beer (2)", BaseName: "Beer", Price: 95},
		{ID: "3", Name: "Rice", BaseName: "Rice", Price: 20},
		// Display name looks like a suffix but the stored base name wins.
		{ID: "4", Name: "Combo (2)", BaseName: "Combo (2)", Price: 150},
	}
	groups := GroupItems(items)

	if len(groups["Beer"]) != 2 {
		t.Errorf("Beer group = %d items, want 2", len(groups["Beer"]))
	}
	if len(groups["Rice"]) != 1 {
		t.Errorf("Rice group = %d items, want 1", len(groups["Rice"]))
	}
	if len(groups["Combo (2)"]) != 1 {
		t.Error("grouping must key on the stored BaseName, not a re-parsed display name")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	d := NewDraft("Host")
	d.AddMember("Alice")
	state, _ := d.AddItem("Beer", 95, 2)
	d.ToggleParticipant(state.Items[0].ID, "Alice")

	restored := Restore(d.State()).State()
	if len(restored.Members) != 2 || len(restored.Items) != 2 {
		t.Fatalf("restored %d members / %d items, want 2/2", len(restored.Members), len(restored.Items))
	}
	if !restored.Items[0].HasParticipant("Alice") {
		t.Error("restored draft lost participants")
	}
	if !strings.HasPrefix(restored.Items[1].Name, "Beer (") {
		t.Errorf("restored item name = %q", restored.Items[1].Name)
	}
}
