package pricing

import (
	"errors"
	"net/http"

	"github.com/noah-isme/zenmarket/internal/common"
)

var (
	// ErrBadDataFormat is returned when the input fails structural, type or range validation.
	ErrBadDataFormat = errors.New("bad data format")
	// ErrUndefinedArticleReference indicates a cart item references an article missing from the catalog.
	ErrUndefinedArticleReference = errors.New("undefined article reference")
	// ErrPriceRange is returned when a delivery fee tier has min_price >= max_price.
	ErrPriceRange = errors.New("price range error")
	// ErrInterpolation indicates the fee schedule cannot price the given subtotal.
	ErrInterpolation = errors.New("interpolation error")
	// ErrAmountOverflow is returned when a price, subtotal or total does not fit in Money.
	ErrAmountOverflow = errors.New("amount overflow")
	// ErrUnsupportedLevel is returned for levels other than 1, 2 and 3.
	ErrUnsupportedLevel = errors.New("unsupported pricing level")
)

// Error codes rendered by the HTTP adapter.
const (
	CodeBadDataFormat             = "BAD_DATA_FORMAT"
	CodeUndefinedArticleReference = "UNDEFINED_ARTICLE_REFERENCE"
	CodePriceRange                = "PRICE_RANGE_ERROR"
	CodeInterpolation             = "INTERPOLATION_ERROR"
	CodeAmountOverflow            = "AMOUNT_OVERFLOW"
	CodeUnsupportedLevel          = "UNSUPPORTED_LEVEL"
	CodeInternal                  = "INTERNAL"
)

// Classify maps a pricing failure to an application error carrying a stable code.
func Classify(err error) *common.AppError {
	if err == nil {
		return nil
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrBadDataFormat):
		return common.NewAppError(CodeBadDataFormat, err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrUndefinedArticleReference):
		return common.NewAppError(CodeUndefinedArticleReference, err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrPriceRange):
		return common.NewAppError(CodePriceRange, err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrInterpolation):
		return common.NewAppError(CodeInterpolation, err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrAmountOverflow):
		return common.NewAppError(CodeAmountOverflow, err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrUnsupportedLevel):
		return common.NewAppError(CodeUnsupportedLevel, err.Error(), http.StatusNotFound, err)
	default:
		return common.NewAppError(CodeInternal, "internal error", http.StatusInternalServerError, err)
	}
}
