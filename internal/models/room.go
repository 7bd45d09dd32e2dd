package models

// PaymentRoom is a published bill snapshot plus payee information.
// Guests resolve it through a shareable link and pay the host by QR.
// Like BillSnapshot it is write-once: created by the host, read many times.
type PaymentRoom struct {
	// ID is the unique identifier for the room (UUID format), embedded in
	// the shareable link.
	ID string `json:"id"`

	// HostUID is the account that created the room, or "anon" for rooms
	// created without signing in.
	HostUID string `json:"hostUid"`

	// HostName is the payee display name shown to guests.
	HostName string `json:"hostName"`

	// PromptPayID is the payee identifier (mobile number or national id)
	// used to build payment QR payloads.
	PromptPayID string `json:"promptPayId"`

	Members []Member `json:"members"`
	Items   []Item   `json:"items"`

	// Shares holds the per-member amounts computed by the engine when the
	// room was created. Stored verbatim so guests see exactly what the host
	// saw, independent of later code changes.
	Shares map[string]float64 `json:"shares"`

	// Config is the surcharge configuration in effect at creation time.
	Config SurchargeConfig `json:"config"`

	Subtotal            float64 `json:"subtotal"`
	ServiceChargeAmount float64 `json:"serviceChargeAmount"`
	VATAmount           float64 `json:"vatAmount"`
	GrandTotal          float64 `json:"grandTotal"`

	// CreatedAt is the Unix timestamp when the room was created.
	CreatedAt int64 `json:"createdAt"`
}

// Snapshot converts the room to the snapshot shape consumed by the
// breakdown projector.
func (r *PaymentRoom) Snapshot() *BillSnapshot {
	return &BillSnapshot{
		ID:                  r.ID,
		OwnerID:             r.HostUID,
		Members:             r.Members,
		Items:               r.Items,
		Subtotal:            r.Subtotal,
		ServiceChargeAmount: r.ServiceChargeAmount,
		VATAmount:           r.VATAmount,
		GrandTotal:          r.GrandTotal,
		CreatedAt:           r.CreatedAt,
	}
}
