// Package calculator implements the pure computation core: the apportionment
// engine that turns a bill into per-member totals, and the breakdown projector
// that re-derives one member's slip from a frozen snapshot.
package calculator

import (
	"math"

	"github.com/fairsplit/fairsplit/internal/models"
)

// ComputeTotals apportions the bill across its members under the configured
// surcharges. It is deterministic, never mutates its inputs, and never fails:
// malformed prices are coerced to 0 and empty participant sets are skipped
// rather than dividing by zero.
//
// Each member's raw share is inflated with the service-charge rate first and
// then VAT on the service-charge-inclusive share, the same order the
// aggregate totals use. Under exact arithmetic the shares therefore sum to
// the grand total whenever the subtotal is positive.
func ComputeTotals(members []models.Member, items []models.Item, cfg models.SurchargeConfig) models.DerivedTotals {
	shares := make(map[string]float64, len(members))
	for _, m := range members {
		shares[m.Name] = 0
	}

	var subtotal float64
	for _, item := range items {
		price := safePrice(item.Price)
		subtotal += price

		if len(item.Participants) == 0 {
			// Counts toward the subtotal but nobody's share.
			continue
		}
		perHead := price / float64(len(item.Participants))
		for _, p := range item.Participants {
			// Participants no longer in the member set are ignored;
			// this can happen transiently after a member removal.
			if _, ok := shares[p]; ok {
				shares[p] += perHead
			}
		}
	}

	svcRate := 0.0
	if cfg.ServiceChargeEnabled {
		svcRate = safePrice(cfg.ServiceChargePercent) / 100
	}
	vatRate := 0.0
	if cfg.VATEnabled {
		vatRate = models.VATRate
	}

	serviceCharge := subtotal * svcRate
	vat := (subtotal + serviceCharge) * vatRate
	grandTotal := subtotal + serviceCharge + vat

	if subtotal > 0 {
		for name, raw := range shares {
			withSvc := raw + raw*svcRate
			shares[name] = withSvc + withSvc*vatRate
		}
	}

	return models.DerivedTotals{
		Subtotal:            subtotal,
		ServiceChargeAmount: serviceCharge,
		VATAmount:           vat,
		GrandTotal:          grandTotal,
		MemberShares:        shares,
	}
}

// safePrice coerces NaN, infinite, and negative values to 0.
func safePrice(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
