package calculator

import "github.com/fairsplit/fairsplit/internal/models"

// BreakdownItem is one line of a member's slip: their even share of an item.
type BreakdownItem struct {
	// Name is the item's display name.
	Name string `json:"name"`

	// Share is this member's even portion of the item price.
	Share float64 `json:"share"`

	// FullPrice is the undivided item price.
	FullPrice float64 `json:"fullPrice"`

	// SharedBy is how many members split the item.
	SharedBy int `json:"sharedBy"`
}

// MemberBreakdown is one member's itemized slip re-derived from a frozen
// snapshot.
type MemberBreakdown struct {
	Items []BreakdownItem `json:"items"`

	// TotalFood is the sum of this member's item shares before surcharges.
	TotalFood float64 `json:"totalFood"`

	// ExtraCharge is this member's proportional slice of the snapshot's
	// stored service-charge and VAT amounts.
	ExtraCharge float64 `json:"extraCharge"`

	// NetTotal is TotalFood + ExtraCharge.
	NetTotal float64 `json:"netTotal"`
}

// BreakdownFor re-derives one member's slip from a persisted snapshot.
//
// Unlike ComputeTotals this does not replay surcharge rates: it scales the
// snapshot's stored aggregate surcharge amounts by the member's food ratio,
// so the result stays consistent with whatever rates were in effect when the
// snapshot was frozen. The two paths agree up to float rounding.
func BreakdownFor(snap *models.BillSnapshot, member string) MemberBreakdown {
	bd := MemberBreakdown{Items: []BreakdownItem{}}

	for _, item := range snap.Items {
		if !item.HasParticipant(member) {
			continue
		}
		perHead := safePrice(item.Price) / float64(len(item.Participants))
		bd.Items = append(bd.Items, BreakdownItem{
			Name:      item.Name,
			Share:     perHead,
			FullPrice: item.Price,
			SharedBy:  len(item.Participants),
		})
		bd.TotalFood += perHead
	}

	// Substituting 1 for a zero subtotal avoids dividing by zero; TotalFood
	// is also 0 in that case so the ratio is exact anyway.
	subtotal := snap.Subtotal
	if subtotal <= 0 {
		subtotal = 1
	}
	ratio := bd.TotalFood / subtotal

	bd.ExtraCharge = (snap.ServiceChargeAmount + snap.VATAmount) * ratio
	bd.NetTotal = bd.TotalFood + bd.ExtraCharge
	return bd
}

// BreakdownAll re-derives every member's slip from a persisted snapshot.
func BreakdownAll(snap *models.BillSnapshot) map[string]MemberBreakdown {
	out := make(map[string]MemberBreakdown, len(snap.Members))
	for _, m := range snap.Members {
		out[m.Name] = BreakdownFor(snap, m.Name)
	}
	return out
}
