package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantCode  float64
		wantLevel string
		wantBytes float64
	}{
		{
			name:      "ok",
			handler:   func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("hello")) },
			wantCode:  200,
			wantLevel: "INFO",
			wantBytes: 5,
		},
		{
			name:      "no write",
			handler:   func(w http.ResponseWriter, r *http.Request) {},
			wantCode:  200,
			wantLevel: "INFO",
		},
		{
			name:      "not found",
			handler:   func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantCode:  404,
			wantLevel: "WARN",
		},
		{
			name:      "server error",
			handler:   func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			wantCode:  503,
			wantLevel: "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			h := chimiddleware.RequestID(Logger(logger)(tt.handler))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/truth", nil))

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, "request completed", line["msg"])
			assert.Equal(t, tt.wantLevel, line["level"])
			assert.Equal(t, "GET", line["method"])
			assert.Equal(t, "/api/v1/truth", line["path"])
			assert.Equal(t, tt.wantCode, line["status"])
			assert.Equal(t, tt.wantBytes, line["bytes"])
			assert.NotEmpty(t, line["request_id"])
		})
	}
}
