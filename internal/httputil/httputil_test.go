package httputil

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusBadRequest, "Missing 'text' field")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Missing 'text' field"}`, w.Body.String())
}

func TestFail(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	w := httptest.NewRecorder()

	Fail(log, w, "boom", errors.New("cause"), 0)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"boom"}`, w.Body.String())
	assert.Contains(t, buf.String(), `"err":"cause"`)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Text string `json:"text" validate:"required"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"text":"hi"}`, false},
		{"empty object", `{}`, true},
		{"empty text", `{"text":""}`, true},
		{"malformed", `{"text":`, true},
		{"wrong type", `{"text":42}`, true},
		{"trailing garbage", `{"text":"hi"} garbage`, true},
		{"two objects", `{"text":"hi"}{"x":1}`, true},
		{"trailing whitespace", "{\"text\":\"hi\"}\n  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(r, &p)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "hi", p.Text)
			}
		})
	}
}

func TestRecovererWritesJSON(t *testing.T) {
	r := NewRouter(discardLogger())
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	HealthHandler(discardLogger())(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
