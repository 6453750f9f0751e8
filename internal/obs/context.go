package obs

import "context"

type (
	routePatternKey struct{}
	pricingLevelKey struct{}
)

// WithRoutePattern stores the matched router pattern on the context.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext extracts the route pattern from context if present.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(routePatternKey{}).(string); ok {
		return v
	}
	return ""
}

// PricingLevel is a mutable slot the pricing handler fills so that outer
// middleware can log which level served the request.
type PricingLevel struct {
	Name string
}

// WithPricingLevel attaches an empty level slot to the context.
func WithPricingLevel(ctx context.Context) (context.Context, *PricingLevel) {
	if ctx == nil {
		ctx = context.Background()
	}
	slot := &PricingLevel{}
	return context.WithValue(ctx, pricingLevelKey{}, slot), slot
}

// SetPricingLevel records the level on the slot attached to ctx, if any.
func SetPricingLevel(ctx context.Context, level string) {
	if ctx == nil {
		return
	}
	if slot, ok := ctx.Value(pricingLevelKey{}).(*PricingLevel); ok {
		slot.Name = level
	}
}
