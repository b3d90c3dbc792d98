package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func Test_RespondError(t *testing.T) {
	// given
	rec := httptest.NewRecorder()

	// when
	RespondError(rec, discard, http.StatusNotFound, "nope")

	// then
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
}

func Test_RespondValidationErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondValidationErrors(rec, discard, map[string]string{"Price": "failed on rule: money"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"validation_errors":{"Price":"failed on rule: money"}}`, rec.Body.String())
}

func Test_RespondJSON_NilPayload(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondJSON(rec, discard, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func Test_DecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
		anyErr  bool
	}{
		{name: "valid", body: `{"name":"rice"}`, want: "rice"},
		{name: "empty body", body: ``, wantErr: ErrEmptyBody},
		{name: "malformed", body: `{"name":`, anyErr: true},
		{name: "trailing document", body: `{"name":"a"}{"name":"b"}`, anyErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			var dst payload

			// when
			err := DecodeJSON(rec, req, &dst)

			// then
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, dst.Name)
			}
		})
	}
}

func Test_ParseOptionalGte(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		want     int32
		wantOK   bool
		wantCode int
	}{
		{name: "absent", query: "", want: 0, wantOK: true, wantCode: http.StatusOK},
		{name: "valid", query: "?limit=10", want: 10, wantOK: true, wantCode: http.StatusOK},
		{name: "zero allowed", query: "?limit=0", want: 0, wantOK: true, wantCode: http.StatusOK},
		{name: "negative", query: "?limit=-1", wantCode: http.StatusBadRequest},
		{name: "not a number", query: "?limit=ten", wantCode: http.StatusBadRequest},
		{name: "overflow", query: "?limit=9999999999", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodGet, "/products"+tt.query, nil)
			rec := httptest.NewRecorder()

			// when
			got, ok := ParseOptionalGte(req, rec, discard, "limit", 0)

			// then
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func Test_ParseOptionalGte_LowerBound(t *testing.T) {
	// given
	req := httptest.NewRequest(http.MethodGet, "/products?page=0", nil)
	rec := httptest.NewRecorder()

	// when
	got, ok := ParseOptionalGte(req, rec, discard, "page", 1)

	// then
	assert.False(t, ok)
	assert.Equal(t, int32(0), got)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid page number: 0"}`, rec.Body.String())
}

func Test_Recoverer(t *testing.T) {
	// given
	h := Recoverer(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	// when
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// then
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func Test_StructuredLogger_PassesThrough(t *testing.T) {
	var sb strings.Builder
	log := slog.New(slog.NewJSONHandler(&sb, nil))
	h := StructuredLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pantry/products", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, sb.String(), `"status":418`)
	assert.Contains(t, sb.String(), `"path":"/pantry/products"`)
}
