package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

// Int is an integer wire field. Besides plain JSON integers it accepts numbers
// with an integral value (100.0, 1e3) and quoted integers ("100").
type Int int64

// UnmarshalJSON implements json.Unmarshaler.
func (i *Int) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	n, err := parseInteger(raw)
	if err != nil {
		return err
	}
	*i = Int(n)
	return nil
}

func parseInteger(raw string) (int64, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return int64(f), nil
}

// bound keeps track of whether max_price was supplied so that null (no upper
// limit) can be told apart from a missing key.
type bound struct {
	Value   *Int
	Present bool
}

func (b *bound) UnmarshalJSON(data []byte) error {
	b.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		b.Value = nil
		return nil
	}
	var v Int
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	b.Value = &v
	return nil
}

type articleRecord struct {
	ID    *Int    `json:"id" validate:"required"`
	Name  *string `json:"name"`
	Price *Int    `json:"price" validate:"required,min=0"`
}

type cartItemRecord struct {
	ArticleID *Int `json:"article_id" validate:"required"`
	Quantity  *Int `json:"quantity" validate:"required,min=0"`
}

type cartRecord struct {
	ID    *Int             `json:"id" validate:"required"`
	Items []cartItemRecord `json:"items" validate:"required,dive"`
}

type volumeRecord struct {
	MinPrice *Int  `json:"min_price" validate:"required,min=0"`
	MaxPrice bound `json:"max_price"`
}

type feeTierRecord struct {
	Volume *volumeRecord `json:"eligible_transaction_volume" validate:"required"`
	Price  *Int          `json:"price" validate:"required,min=0"`
}

type discountRecord struct {
	ArticleID *Int    `json:"article_id" validate:"required"`
	Type      *string `json:"type" validate:"required"`
	Value     *Int    `json:"value" validate:"required,min=0"`
}

type payload struct {
	Articles     []articleRecord  `json:"articles" validate:"dive"`
	Carts        []cartRecord     `json:"carts" validate:"dive"`
	DeliveryFees []feeTierRecord  `json:"delivery_fees" validate:"dive"`
	Discounts    []discountRecord `json:"discounts" validate:"dive"`
}

// document captures the top-level collections before they are decoded so that
// a missing key can be distinguished from an explicit null.
type document struct {
	Articles     json.RawMessage `json:"articles"`
	Carts        json.RawMessage `json:"carts"`
	DeliveryFees json.RawMessage `json:"delivery_fees"`
	Discounts    json.RawMessage `json:"discounts"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateVolume, volumeRecord{})
	v.RegisterStructValidation(validateDiscount, discountRecord{})
	return v
}

func validateVolume(sl validator.StructLevel) {
	rec := sl.Current().Interface().(volumeRecord)
	if !rec.MaxPrice.Present {
		sl.ReportError(rec.MaxPrice, "max_price", "MaxPrice", "required", "")
		return
	}
	if rec.MaxPrice.Value != nil && *rec.MaxPrice.Value < 0 {
		sl.ReportError(rec.MaxPrice, "max_price", "MaxPrice", "min", "0")
	}
}

func validateDiscount(sl validator.StructLevel) {
	rec := sl.Current().Interface().(discountRecord)
	if rec.Type == nil || rec.Value == nil {
		return
	}
	if ParseDiscountKind(*rec.Type) == DiscountPercentage && *rec.Value > 100 {
		sl.ReportError(rec.Value, "value", "Value", "max", "100")
	}
}

// Decode validates a raw JSON document and normalises it into a Request.
// Collections that the level does not use are ignored.
func Decode(level Level, data []byte) (Request, error) {
	if !level.Valid() {
		return Request{}, fmt.Errorf("%w: %d", ErrUnsupportedLevel, int(level))
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Request{}, nil
	}
	if trimmed[0] != '{' {
		return Request{}, badFormat("document must be a JSON object")
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Request{}, badFormat(err.Error())
	}
	pipeline := PipelineFor(level)
	if !pipeline.Fees {
		doc.DeliveryFees = nil
	}
	if !pipeline.Discounts {
		doc.Discounts = nil
	}

	var p payload
	articlesPresent, err := decodeSequence("articles", doc.Articles, &p.Articles)
	if err != nil {
		return Request{}, err
	}
	if _, err := decodeSequence("carts", doc.Carts, &p.Carts); err != nil {
		return Request{}, err
	}
	if _, err := decodeSequence("delivery_fees", doc.DeliveryFees, &p.DeliveryFees); err != nil {
		return Request{}, err
	}
	if _, err := decodeSequence("discounts", doc.Discounts, &p.Discounts); err != nil {
		return Request{}, err
	}

	if err := validate.Struct(p); err != nil {
		return Request{}, describeValidation(err)
	}
	if len(p.Carts) > 0 && !articlesPresent {
		return Request{}, badFormat("articles is required")
	}
	return p.normalise(), nil
}

func decodeSequence(field string, raw json.RawMessage, dst any) (bool, error) {
	if len(raw) == 0 {
		return false, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return true, badFormat(field + " must be an array")
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return true, badFormat(fmt.Sprintf("%s: %v", field, err))
	}
	return true, nil
}

func (p payload) normalise() Request {
	req := Request{
		Articles:     make([]Article, 0, len(p.Articles)),
		Carts:        make([]Cart, 0, len(p.Carts)),
		DeliveryFees: make([]FeeTier, 0, len(p.DeliveryFees)),
		Discounts:    make([]Discount, 0, len(p.Discounts)),
	}
	for _, a := range p.Articles {
		article := Article{ID: int64(*a.ID), Price: Money(*a.Price)}
		if a.Name != nil {
			article.Name = *a.Name
		}
		req.Articles = append(req.Articles, article)
	}
	for _, c := range p.Carts {
		cart := Cart{ID: int64(*c.ID), Items: make([]CartItem, 0, len(c.Items))}
		for _, it := range c.Items {
			cart.Items = append(cart.Items, CartItem{ArticleID: int64(*it.ArticleID), Quantity: int64(*it.Quantity)})
		}
		req.Carts = append(req.Carts, cart)
	}
	for _, f := range p.DeliveryFees {
		tier := FeeTier{MinPrice: Money(*f.Volume.MinPrice), MaxPrice: Unbounded(), Fee: Money(*f.Price)}
		if f.Volume.MaxPrice.Value != nil {
			tier.MaxPrice = Finite(Money(*f.Volume.MaxPrice.Value))
		}
		req.DeliveryFees = append(req.DeliveryFees, tier)
	}
	for _, d := range p.Discounts {
		req.Discounts = append(req.Discounts, Discount{
			ArticleID: int64(*d.ArticleID),
			Kind:      ParseDiscountKind(*d.Type),
			Value:     int64(*d.Value),
		})
	}
	return req
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return badFormat(err.Error())
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "payload.")
	switch fe.Tag() {
	case "required":
		return badFormat(field + " is required")
	case "min":
		return badFormat(fmt.Sprintf("%s must be >= %s", field, fe.Param()))
	case "max":
		return badFormat(fmt.Sprintf("%s must be <= %s", field, fe.Param()))
	default:
		return badFormat(fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
	}
}

func badFormat(detail string) error {
	return fmt.Errorf("%w: %s", ErrBadDataFormat, detail)
}
