package pricing

// Catalog indexes articles by id.
type Catalog struct {
	articles map[int64]Article
}

// NewCatalog builds the index. When ids repeat the last article wins.
func NewCatalog(articles []Article) Catalog {
	idx := make(map[int64]Article, len(articles))
	for _, a := range articles {
		idx[a.ID] = a
	}
	return Catalog{articles: idx}
}

// Lookup returns the article registered under id.
func (c Catalog) Lookup(id int64) (Article, bool) {
	a, ok := c.articles[id]
	return a, ok
}

// WithDiscounts returns a copy of the catalog whose prices have the matching
// discount applied. Discounts for articles outside the catalog are ignored.
func (c Catalog) WithDiscounts(discounts DiscountSet) (Catalog, error) {
	idx := make(map[int64]Article, len(c.articles))
	for id, a := range c.articles {
		price, err := discounts.Apply(id, a.Price)
		if err != nil {
			return Catalog{}, err
		}
		a.Price = price
		idx[id] = a
	}
	return Catalog{articles: idx}, nil
}
