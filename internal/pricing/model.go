package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// Article is a catalog entry.
type Article struct {
	ID    int64
	Name  string
	Price Money
}

// CartItem references an article with a quantity.
type CartItem struct {
	ArticleID int64
	Quantity  int64
}

// Cart groups the items priced together.
type Cart struct {
	ID    int64
	Items []CartItem
}

// Bound is the upper limit of a delivery fee tier. The zero value is a finite bound of 0.
type Bound struct {
	Price     Money
	Unbounded bool
}

// Unbounded returns the bound of a tier without upper limit.
func Unbounded() Bound {
	return Bound{Unbounded: true}
}

// Finite returns a bound capped at price.
func Finite(price Money) Bound {
	return Bound{Price: price}
}

// Less reports whether b sorts before other. Unbounded sorts after every finite bound.
func (b Bound) Less(other Bound) bool {
	switch {
	case b.Unbounded:
		return false
	case other.Unbounded:
		return true
	default:
		return b.Price < other.Price
	}
}

// AtOrBelow reports whether the bound is less than or equal to p.
func (b Bound) AtOrBelow(p Money) bool {
	return !b.Unbounded && b.Price <= p
}

// FeeTier charges Fee for subtotals within [MinPrice, MaxPrice).
type FeeTier struct {
	MinPrice Money
	MaxPrice Bound
	Fee      Money
}

// DiscountKind tags the price transform carried by a Discount.
type DiscountKind int

const (
	// DiscountUnknown leaves the price unchanged.
	DiscountUnknown DiscountKind = iota
	// DiscountAmount subtracts a fixed amount from the unit price.
	DiscountAmount
	// DiscountPercentage removes a percentage of the unit price, rounding down.
	DiscountPercentage
)

// ParseDiscountKind maps the wire name of a discount type to its kind.
func ParseDiscountKind(name string) DiscountKind {
	switch name {
	case "amount":
		return DiscountAmount
	case "percentage":
		return DiscountPercentage
	default:
		return DiscountUnknown
	}
}

func (k DiscountKind) String() string {
	switch k {
	case DiscountAmount:
		return "amount"
	case DiscountPercentage:
		return "percentage"
	default:
		return "unknown"
	}
}

// Discount transforms the unit price of a single article.
type Discount struct {
	ArticleID int64
	Kind      DiscountKind
	Value     int64
}

// Request is the validated input of a pricing run.
type Request struct {
	Articles     []Article
	Carts        []Cart
	DeliveryFees []FeeTier
	Discounts    []Discount
}

// CartTotal is the priced result of one cart.
type CartTotal struct {
	ID    int64 `json:"id"`
	Total Money `json:"total"`
}

// Response lists cart totals in input order.
type Response struct {
	Carts []CartTotal `json:"carts"`
}
