package models

// Member represents one person on a bill.
// Names are unique within a bill and act as the participant identifier.
type Member struct {
	// Name is the display name, unique within the bill, never empty.
	Name string `json:"name"`

	// Avatar is an opaque display symbol (the frontend uses emoji).
	// It carries no semantics; the backend only stores and returns it.
	Avatar string `json:"avatar"`
}

// Item represents a single priced line on a bill.
// Items can be shared among multiple members; the price is split evenly.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// Name is the display name, possibly carrying a " (n)" disambiguation
	// suffix added by quantity expansion (e.g. "Beer (2)").
	Name string `json:"name"`

	// BaseName is the name with any " (n)" suffix stripped. It is the single
	// source of truth for grouping; the display name is never re-parsed.
	BaseName string `json:"baseName"`

	// Price is the item price, always >= 0.
	Price float64 `json:"price"`

	// Participants is the set of member names sharing this item.
	// An item with no participants still counts toward the subtotal but
	// contributes to nobody's share.
	Participants []string `json:"participants"`
}

// HasParticipant reports whether the named member shares this item.
func (i Item) HasParticipant(name string) bool {
	for _, p := range i.Participants {
		if p == name {
			return true
		}
	}
	return false
}

// VATRate is the fixed Thai value-added tax rate.
const VATRate = 0.07

// DefaultServiceChargePercent is the service-charge percentage used when the
// user has not entered one.
const DefaultServiceChargePercent = 10

// SurchargeConfig holds the percentage surcharges applied on top of the
// item subtotal. VAT is computed on the service-charge-inclusive amount.
type SurchargeConfig struct {
	// VATEnabled applies the fixed 7% VAT when true.
	VATEnabled bool `json:"vatEnabled"`

	// ServiceChargeEnabled applies ServiceChargePercent when true.
	ServiceChargeEnabled bool `json:"serviceChargeEnabled"`

	// ServiceChargePercent is the user-editable service-charge rate, >= 0.
	ServiceChargePercent float64 `json:"serviceChargePercent"`
}

// DerivedTotals is the output of the apportionment engine. It is recomputed
// on every edit and only written to storage as part of a frozen snapshot.
type DerivedTotals struct {
	// Subtotal is the sum of all item prices before surcharges.
	Subtotal float64 `json:"subtotal"`

	// ServiceChargeAmount is Subtotal x (ServiceChargePercent/100), or 0.
	ServiceChargeAmount float64 `json:"serviceChargeAmount"`

	// VATAmount is (Subtotal + ServiceChargeAmount) x 7%, or 0.
	VATAmount float64 `json:"vatAmount"`

	// GrandTotal is Subtotal + ServiceChargeAmount + VATAmount.
	GrandTotal float64 `json:"grandTotal"`

	// MemberShares maps member name to the surcharge-inclusive amount owed.
	// When Subtotal > 0 the shares sum to GrandTotal up to float rounding.
	MemberShares map[string]float64 `json:"memberShares"`
}

// BillSnapshot is a frozen bill persisted to a user's history.
// It is immutable after creation.
type BillSnapshot struct {
	// ID is the unique identifier for the snapshot (UUID format).
	ID string `json:"id"`

	// OwnerID is the user who saved the bill.
	OwnerID string `json:"ownerId"`

	// Title is a human-readable name, auto-generated when empty.
	Title string `json:"title"`

	Members []Member `json:"members"`
	Items   []Item   `json:"items"`

	// Totals computed by the engine at save time. The breakdown projector
	// re-derives per-member numbers from these stored aggregates.
	Subtotal            float64 `json:"subtotal"`
	ServiceChargeAmount float64 `json:"serviceChargeAmount"`
	VATAmount           float64 `json:"vatAmount"`
	GrandTotal          float64 `json:"grandTotal"`

	// CreatedAt is the Unix timestamp when the snapshot was created.
	CreatedAt int64 `json:"createdAt"`
}
