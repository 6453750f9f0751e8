package pricing

import (
	"fmt"
	"sort"
)

// FeeSchedule is a step function from subtotal to delivery fee.
type FeeSchedule struct {
	boundaries []Bound
	fees       []Money
}

// NewFeeSchedule validates the tiers and orders them by upper bound. Lower
// bounds are only used for validation.
func NewFeeSchedule(tiers []FeeTier) (FeeSchedule, error) {
	sorted := make([]FeeTier, len(tiers))
	copy(sorted, tiers)
	for i, t := range sorted {
		if !Finite(t.MinPrice).Less(t.MaxPrice) {
			return FeeSchedule{}, fmt.Errorf("%w: tier %d has min_price %d >= max_price %d", ErrPriceRange, i, t.MinPrice, t.MaxPrice.Price)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MaxPrice.Less(sorted[j].MaxPrice)
	})

	s := FeeSchedule{
		boundaries: make([]Bound, len(sorted)),
		fees:       make([]Money, len(sorted)),
	}
	for i, t := range sorted {
		s.boundaries[i] = t.MaxPrice
		s.fees[i] = t.Fee
	}
	return s, nil
}

// Fee returns the fee for subtotal p: the fee of the first tier whose upper
// bound is strictly greater than p. A subtotal equal to a bound is therefore
// charged by the next tier.
func (s FeeSchedule) Fee(p Money) (Money, error) {
	if len(s.fees) == 0 {
		return 0, fmt.Errorf("%w: empty fee schedule", ErrInterpolation)
	}
	k := sort.Search(len(s.boundaries), func(i int) bool {
		return !s.boundaries[i].AtOrBelow(p)
	})
	if k == len(s.fees) {
		return 0, fmt.Errorf("%w: subtotal %d is beyond the last tier", ErrInterpolation, p)
	}
	return s.fees[k], nil
}
