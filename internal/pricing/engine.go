package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Level selects which pricing stages run.
type Level int

const (
	// LevelBase prices carts from catalog prices only.
	LevelBase Level = 1
	// LevelFees adds the delivery fee to each cart subtotal.
	LevelFees Level = 2
	// LevelDiscounts applies per-article discounts before adding delivery fees.
	LevelDiscounts Level = 3
)

// Levels lists every supported level in ascending order.
var Levels = []Level{LevelBase, LevelFees, LevelDiscounts}

// Valid reports whether the level is supported.
func (l Level) Valid() bool {
	return l >= LevelBase && l <= LevelDiscounts
}

func (l Level) String() string {
	return "level" + strconv.Itoa(int(l))
}

// ParseLevel accepts "1", "level1" and the like.
func ParseLevel(value string) (Level, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), "level")
	n, err := strconv.Atoi(trimmed)
	if err != nil || !Level(n).Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedLevel, value)
	}
	return Level(n), nil
}

// Pipeline describes the optional stages run on top of base pricing.
type Pipeline struct {
	Fees      bool
	Discounts bool
}

// PipelineFor returns the stages enabled for the level.
func PipelineFor(level Level) Pipeline {
	return Pipeline{
		Fees:      level >= LevelFees,
		Discounts: level >= LevelDiscounts,
	}
}

// Compute prices every cart of the request. Discounts are applied to unit
// prices before summing and the delivery fee is charged on the discounted
// subtotal. Any failure aborts the whole request.
func Compute(level Level, req Request) (Response, error) {
	if !level.Valid() {
		return Response{}, fmt.Errorf("%w: %d", ErrUnsupportedLevel, int(level))
	}
	return PipelineFor(level).Run(req)
}

// Run executes the pipeline against a validated request.
func (p Pipeline) Run(req Request) (Response, error) {
	catalog := NewCatalog(req.Articles)
	if p.Discounts {
		var err error
		if catalog, err = catalog.WithDiscounts(NewDiscountSet(req.Discounts)); err != nil {
			return Response{}, err
		}
	}

	var schedule FeeSchedule
	if p.Fees {
		var err error
		schedule, err = NewFeeSchedule(req.DeliveryFees)
		if err != nil {
			return Response{}, err
		}
	}

	resp := Response{Carts: make([]CartTotal, 0, len(req.Carts))}
	for _, cart := range req.Carts {
		total, err := Subtotal(cart, catalog)
		if err != nil {
			return Response{}, err
		}
		if p.Fees {
			fee, err := schedule.Fee(total)
			if err != nil {
				return Response{}, fmt.Errorf("cart %d: %w", cart.ID, err)
			}
			if total, err = addMoney(total, fee); err != nil {
				return Response{}, fmt.Errorf("cart %d: %w", cart.ID, err)
			}
		}
		resp.Carts = append(resp.Carts, CartTotal{ID: cart.ID, Total: total})
	}
	return resp, nil
}

// ComputeJSON decodes a JSON document, prices it and encodes the response with
// two-space indentation and a trailing newline.
func ComputeJSON(level Level, data []byte) ([]byte, error) {
	body, _, err := computeJSON(level, data)
	return body, err
}

// computeJSON is ComputeJSON that also reports how many carts were priced.
func computeJSON(level Level, data []byte) ([]byte, int, error) {
	req, err := Decode(level, data)
	if err != nil {
		return nil, 0, err
	}
	resp, err := Compute(level, req)
	if err != nil {
		return nil, 0, err
	}
	body, err := Encode(resp)
	if err != nil {
		return nil, 0, err
	}
	return body, len(resp.Carts), nil
}

// Encode renders the response. encoding/json emits struct fields in
// declaration order, so the fields of Response and CartTotal are declared in
// alphabetical order to keep the output keys sorted.
func Encode(resp Response) ([]byte, error) {
	if resp.Carts == nil {
		resp.Carts = []CartTotal{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return buf.Bytes(), nil
}
