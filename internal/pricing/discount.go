package pricing

import "fmt"

// Apply returns the unit price after the discount.
//
// Amount discounts are not clamped and can yield a negative price. Percentage
// discounts round down; price >= 0 and value <= 100 hold after validation, so
// integer division already floors. The percentage is taken on the hundreds and
// the remainder separately so that large prices do not overflow.
func (d Discount) Apply(price Money) (Money, error) {
	switch d.Kind {
	case DiscountAmount:
		return subMoney(price, d.Value)
	case DiscountPercentage:
		keep := 100 - d.Value
		return price/100*keep + price%100*keep/100, nil
	case DiscountUnknown:
		return price, nil
	default:
		return price, nil
	}
}

// DiscountSet maps article ids to their discount.
type DiscountSet struct {
	byArticle map[int64]Discount
}

// NewDiscountSet indexes discounts by article. A later entry for the same
// article replaces the earlier one.
func NewDiscountSet(discounts []Discount) DiscountSet {
	idx := make(map[int64]Discount, len(discounts))
	for _, d := range discounts {
		idx[d.ArticleID] = d
	}
	return DiscountSet{byArticle: idx}
}

// Apply transforms the price of the article; articles without a discount keep their price.
func (s DiscountSet) Apply(articleID int64, price Money) (Money, error) {
	d, ok := s.byArticle[articleID]
	if !ok {
		return price, nil
	}
	discounted, err := d.Apply(price)
	if err != nil {
		return 0, fmt.Errorf("article %d: %w", articleID, err)
	}
	return discounted, nil
}
