package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorRendersAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, NewAppError("PRICE_RANGE_ERROR", "tier 1 is inverted", http.StatusBadRequest, nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "PRICE_RANGE_ERROR", rr.Header().Get(ErrorCodeHeader))

	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "PRICE_RANGE_ERROR", body.Error.Code)
	assert.Equal(t, "tier 1 is inverted", body.Error.Message)
}

func TestWriteErrorHidesPlainErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("db password is hunter2"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "hunter2")
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := BadRequest("missing data field", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsAppError(err))
	assert.Equal(t, "boom", err.Error())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}
