package pricing_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/noah-isme/zenmarket/internal/obs"
	"github.com/noah-isme/zenmarket/internal/pricing"
)

const level3Doc = `{
	"articles": [{"id": 1, "name": "water", "price": 100}, {"id": 2, "name": "honey", "price": 200}],
	"carts": [{"id": 1, "items": [{"article_id": 1, "quantity": 6}, {"article_id": 2, "quantity": 2}]}],
	"delivery_fees": [
		{"eligible_transaction_volume": {"min_price": 0, "max_price": 1000}, "price": 800},
		{"eligible_transaction_volume": {"min_price": 1000, "max_price": null}, "price": 0}
	],
	"discounts": [{"article_id": 2, "type": "amount", "value": 25}]
}`

func newRouter(t *testing.T, tracer *tracetest.SpanRecorder) http.Handler {
	t.Helper()
	h := &pricing.Handler{Logger: zerolog.Nop()}
	if tracer != nil {
		h.Tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(tracer)).Tracer("test")
	}
	r := chi.NewRouter()
	r.Route("/api", h.Routes)
	return r
}

func multipartRequest(t *testing.T, path, doc string, asFile bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if asFile {
		fw, err := mw.CreateFormFile(pricing.FormField, "input.json")
		require.NoError(t, err)
		_, err = fw.Write([]byte(doc))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField(pricing.FormField, doc))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPriceMultipartFile(t *testing.T) {
	router := newRouter(t, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartRequest(t, "/api/level3/price", level3Doc, true))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	// 600 + 2*175 = 950, below the first boundary so the 800 fee applies.
	assert.JSONEq(t, `{"carts":[{"id":1,"total":1750}]}`, rr.Body.String())
}

func TestPriceMultipartValueMatchesJSONBody(t *testing.T) {
	router := newRouter(t, nil)

	form := httptest.NewRecorder()
	router.ServeHTTP(form, multipartRequest(t, "/api/level1/price", level3Doc, false))
	require.Equal(t, http.StatusOK, form.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/level1/price", strings.NewReader(level3Doc))
	req.Header.Set("Content-Type", "application/json")
	body := httptest.NewRecorder()
	router.ServeHTTP(body, req)
	require.Equal(t, http.StatusOK, body.Code)

	assert.Equal(t, form.Body.String(), body.Body.String())
	assert.JSONEq(t, `{"carts":[{"id":1,"total":1000}]}`, body.Body.String())

	want, err := pricing.ComputeJSON(pricing.LevelBase, []byte(level3Doc))
	require.NoError(t, err)
	assert.Equal(t, string(want), body.Body.String())
}

func TestPriceURLEncodedForm(t *testing.T) {
	router := newRouter(t, nil)
	form := url.Values{pricing.FormField: {`{"articles":[],"carts":[]}`}}
	req := httptest.NewRequest(http.MethodPost, "/api/level2/price", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"carts":[]}`, rr.Body.String())
}

func TestPriceErrors(t *testing.T) {
	cases := []struct {
		name string
		path string
		doc  string
		code string
	}{
		{"bad data", "/api/level1/price", `{"carts": null}`, pricing.CodeBadDataFormat},
		{"unknown article", "/api/level1/price", `{"articles": [], "carts": [{"id": 1, "items": [{"article_id": 9, "quantity": 1}]}]}`, pricing.CodeUndefinedArticleReference},
		{"price range", "/api/level2/price", `{"delivery_fees": [{"eligible_transaction_volume": {"min_price": 2000, "max_price": 1000}, "price": 0}]}`, pricing.CodePriceRange},
		{"interpolation", "/api/level2/price", `{"articles": [{"id": 1, "price": 10}], "carts": [{"id": 1, "items": [{"article_id": 1, "quantity": 1}]}]}`, pricing.CodeInterpolation},
	}
	router := newRouter(t, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, multipartRequest(t, tc.path, tc.doc, true))
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tc.code, rr.Header().Get(obs.ErrorCodeHeader))

			var body struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestPriceMissingField(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "{}"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/level1/price", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	newRouter(t, nil).ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "BAD_REQUEST", rr.Header().Get(obs.ErrorCodeHeader))
}

func TestPriceUnknownLevelNotRouted(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(t, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/level4/price", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPriceRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	router := newRouter(t, recorder)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartRequest(t, "/api/level2/price", `{"carts": "nope"}`, true))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "pricing.compute", spans[0].Name())
	assert.Equal(t, pricing.CodeBadDataFormat, spans[0].Status().Description)
}
