package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heartmarshall/morphodict-backend/internal/config"
)

func corsConfig(origins string, credentials bool) config.CORSConfig {
	return config.CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   "GET,OPTIONS",
		AllowedHeaders:   "Content-Type",
		AllowCredentials: credentials,
		MaxAge:           600,
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name          string
		cfg           config.CORSConfig
		method        string
		origin        string
		preflight     bool
		wantCalled    bool
		wantStatus    int
		wantOrigin    string
		wantCreds     string
		wantMethods   string
		wantVary      string
		wantExposeHdr string
	}{
		{
			name:          "allowed simple request",
			cfg:           corsConfig("https://itwewina.example, https://other.example", true),
			method:        http.MethodGet,
			origin:        "https://other.example",
			wantCalled:    true,
			wantStatus:    http.StatusOK,
			wantOrigin:    "https://other.example",
			wantCreds:     "true",
			wantVary:      "Origin",
			wantExposeHdr: RequestIDHeader,
		},
		{
			name:       "disallowed origin passes through without headers",
			cfg:        corsConfig("https://itwewina.example", false),
			method:     http.MethodGet,
			origin:     "https://evil.example",
			wantCalled: true,
			wantStatus: http.StatusOK,
			wantVary:   "Origin",
		},
		{
			name:       "no origin",
			cfg:        corsConfig("*", false),
			method:     http.MethodGet,
			wantCalled: true,
			wantStatus: http.StatusOK,
		},
		{
			name:          "wildcard preflight",
			cfg:           corsConfig("*", false),
			method:        http.MethodOptions,
			origin:        "https://anywhere.example",
			preflight:     true,
			wantStatus:    http.StatusNoContent,
			wantOrigin:    "https://anywhere.example",
			wantMethods:   "GET,OPTIONS",
			wantVary:      "Origin",
			wantExposeHdr: RequestIDHeader,
		},
		{
			name:          "plain OPTIONS is not a preflight",
			cfg:           corsConfig("*", false),
			method:        http.MethodOptions,
			origin:        "https://anywhere.example",
			wantCalled:    true,
			wantStatus:    http.StatusOK,
			wantOrigin:    "https://anywhere.example",
			wantVary:      "Origin",
			wantExposeHdr: RequestIDHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := CORS(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/search", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			headers := map[string]string{
				"Access-Control-Allow-Origin":      tt.wantOrigin,
				"Access-Control-Allow-Credentials": tt.wantCreds,
				"Access-Control-Allow-Methods":     tt.wantMethods,
				"Access-Control-Expose-Headers":    tt.wantExposeHdr,
				"Vary":                             tt.wantVary,
			}
			for name, want := range headers {
				if got := rec.Header().Get(name); got != want {
					t.Errorf("%s = %q, want %q", name, got, want)
				}
			}
			if tt.preflight && rec.Header().Get("Access-Control-Max-Age") != "600" {
				t.Errorf("Access-Control-Max-Age = %q", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}
