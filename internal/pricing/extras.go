package pricing

import (
	"sort"

	"rental-booking-backend/internal/domain"
)

// ExtrasBreakdown is the priced selection of add-ons
type ExtrasBreakdown struct {
	Lines         []domain.BookingExtra
	SubtotalCents int64
}

// CalculateExtras prices the selected quantities against the active extras.
// A quantity of zero is the same as not selecting the extra.
func CalculateExtras(selection map[string]int, days int, extras []domain.Extra) (ExtrasBreakdown, error) {
	byID := make(map[string]*domain.Extra, len(extras))
	for i := range extras {
		if extras[i].IsActive {
			byID[extras[i].ID] = &extras[i]
		}
	}

	var out ExtrasBreakdown
	for id, qty := range selection {
		if qty == 0 {
			continue
		}
		if qty < 0 {
			return ExtrasBreakdown{}, domain.Validation("quantity for extra %s must not be negative", id)
		}
		extra, ok := byID[id]
		if !ok {
			return ExtrasBreakdown{}, domain.NewError(domain.KindUnknownExtra, "extra %s is not available", id)
		}
		unit, ok := extra.UnitPriceCents()
		if !ok {
			return ExtrasBreakdown{}, domain.NewError(domain.KindUnknownExtra, "extra %s has no %s price", extra.Name, extra.PriceType)
		}

		line := domain.BookingExtra{
			ExtraID:        extra.ID,
			ExtraName:      extra.Name,
			Quantity:       qty,
			UnitPriceCents: unit,
		}
		switch extra.PriceType {
		case domain.ExtraPricePerDay:
			line.TotalPriceCents = unit * int64(qty) * int64(days)
		default:
			line.TotalPriceCents = unit * int64(qty)
		}

		out.Lines = append(out.Lines, line)
		out.SubtotalCents += line.TotalPriceCents
	}

	sort.Slice(out.Lines, func(i, j int) bool {
		if out.Lines[i].ExtraName != out.Lines[j].ExtraName {
			return out.Lines[i].ExtraName < out.Lines[j].ExtraName
		}
		return out.Lines[i].ExtraID < out.Lines[j].ExtraID
	})
	return out, nil
}

// RoundHalfUp divides num by den rounding halves away from zero.
func RoundHalfUp(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	if den < 0 {
		num, den = -num, -den
	}
	if num < 0 {
		return -((-num*2 + den) / (2 * den))
	}
	return (num*2 + den) / (2 * den)
}
