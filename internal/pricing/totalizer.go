package pricing

import "fmt"

// Subtotal sums quantity times unit price over the cart items. Prices come from
// the catalog as given, so a discounted catalog yields a discounted subtotal.
func Subtotal(cart Cart, catalog Catalog) (Money, error) {
	var subtotal Money
	for i, it := range cart.Items {
		article, ok := catalog.Lookup(it.ArticleID)
		if !ok {
			return 0, fmt.Errorf("%w: cart %d item %d references article %d", ErrUndefinedArticleReference, cart.ID, i, it.ArticleID)
		}
		line, err := mulMoney(Money(it.Quantity), article.Price)
		if err != nil {
			return 0, fmt.Errorf("cart %d item %d: %w", cart.ID, i, err)
		}
		if subtotal, err = addMoney(subtotal, line); err != nil {
			return 0, fmt.Errorf("cart %d: %w", cart.ID, err)
		}
	}
	return subtotal, nil
}
