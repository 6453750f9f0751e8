package pricing

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/zenmarket/internal/common"
	"github.com/noah-isme/zenmarket/internal/obs"
)

// FormField is the multipart field carrying the input document.
const FormField = "data"

const maxFormMemory = 8 << 20

var errMissingDocument = errors.New("missing " + FormField + " field")

// Handler exposes the pricing levels over HTTP.
type Handler struct {
	Logger zerolog.Logger
	Tracer trace.Tracer
}

// Routes mounts POST /level{n}/price for every supported level.
func (h *Handler) Routes(r chi.Router) {
	for _, level := range Levels {
		r.Post("/"+level.String()+"/price", h.Price(level))
	}
}

// Price returns a handler computing cart totals at the given level.
func (h *Handler) Price(level Level) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		obs.SetPricingLevel(ctx, level.String())

		data, err := readDocument(r)
		if err != nil {
			h.Logger.Warn().Err(err).Str("level", level.String()).Msg("pricing request rejected")
			common.WriteError(w, common.BadRequest(err.Error(), err))
			return
		}

		_, span := h.tracer().Start(ctx, "pricing.compute", trace.WithAttributes(
			attribute.String("pricing.level", level.String()),
			attribute.Int("pricing.input_bytes", len(data)),
		))
		started := time.Now()
		body, carts, err := computeJSON(level, data)
		elapsed := obs.DurationMillis(time.Since(started))
		if err != nil {
			appErr := Classify(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, appErr.Code)
			span.End()
			obs.ObservePricing(level.String(), appErr.Code, 0, elapsed)
			h.Logger.Warn().Err(err).Str("level", level.String()).Str("code", appErr.Code).Msg("pricing failed")
			common.WriteError(w, appErr)
			return
		}
		span.SetAttributes(attribute.Int("pricing.carts", carts))
		span.End()
		obs.ObservePricing(level.String(), "ok", carts, elapsed)
		h.Logger.Debug().Str("level", level.String()).Int("carts", carts).Float64("duration_ms", elapsed).Msg("carts priced")
		common.RawJSON(w, http.StatusOK, body)
	}
}

func (h *Handler) tracer() trace.Tracer {
	if h.Tracer != nil {
		return h.Tracer
	}
	return otel.Tracer("zenmarket/pricing")
}

// readDocument extracts the input document from a multipart or urlencoded
// form field, or takes the raw body for any other content type.
func readDocument(r *http.Request) ([]byte, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, fmt.Errorf("invalid multipart form: %w", err)
		}
		if files := r.MultipartForm.File[FormField]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", FormField, err)
			}
			defer f.Close()
			return io.ReadAll(f)
		}
		if values := r.MultipartForm.Value[FormField]; len(values) > 0 {
			return []byte(values[0]), nil
		}
		return nil, errMissingDocument
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form: %w", err)
		}
		if values, ok := r.PostForm[FormField]; ok && len(values) > 0 {
			return []byte(values[0]), nil
		}
		return nil, errMissingDocument
	default:
		if r.Body == nil {
			return nil, nil
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return data, nil
	}
}
