package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/heartmarshall/morphodict-backend/pkg/ctxutil"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name      string
		incoming  string
		wantReuse bool
	}{
		{name: "generated when absent"},
		{name: "reused", incoming: "3f0d1c9e-client", wantReuse: true},
		{name: "oversized is replaced", incoming: strings.Repeat("x", 129)},
		{name: "maximum length is kept", incoming: strings.Repeat("y", 128), wantReuse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inCtx string
			handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				inCtx = ctxutil.RequestIDFromCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/search?q=nipaw", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if header != inCtx {
				t.Errorf("header %q differs from context %q", header, inCtx)
			}
			if tt.wantReuse {
				if header != tt.incoming {
					t.Errorf("request ID = %q, want incoming %q", header, tt.incoming)
				}
				return
			}
			if _, err := uuid.Parse(header); err != nil {
				t.Errorf("expected generated UUID, got %q: %v", header, err)
			}
		})
	}
}
