package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const probeTimeout = 3 * time.Second

// dbPinger defines the minimal interface for DB health checks.
type dbPinger interface {
	Ping(ctx context.Context) error
}

// analyzerSizer reports how many surface forms the loaded analyzer knows.
type analyzerSizer interface {
	Size() int
}

// HealthHandler serves the liveness, readiness and health probes. Search is
// only useful with both the lexicon database and a non-empty analyzer table,
// so both gate readiness.
type HealthHandler struct {
	db       dbPinger
	analyzer analyzerSizer
	version  string
}

// NewHealthHandler creates a HealthHandler. analyzer may be nil, which reports
// the analyzer as down.
func NewHealthHandler(db dbPinger, analyzer analyzerSizer, version string) *HealthHandler {
	return &HealthHandler{db: db, analyzer: analyzer, version: version}
}

// HealthResponse is the JSON response of every probe.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of one dependency.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Entries int    `json:"entries,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (c CompStatus) ok() bool { return c.Status == "ok" }

// Live always answers 200 while the process serves HTTP.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready answers 200 when every component is up and 503 otherwise, without
// component details.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status, _ := h.check(r.Context())
	writeJSON(w, httpStatus(status), HealthResponse{Status: status, Timestamp: time.Now()})
}

// Health reports each component with the database ping latency, the analyzer
// size and the build version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, components := h.check(r.Context())
	writeJSON(w, httpStatus(status), HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) check(ctx context.Context) (string, map[string]CompStatus) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	components := map[string]CompStatus{
		"database": h.checkDatabase(ctx),
		"analyzer": h.checkAnalyzer(),
	}

	status := "ok"
	for _, c := range components {
		if !c.ok() {
			status = "down"
		}
	}
	return status, components
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CompStatus {
	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		return CompStatus{Status: "down", Error: err.Error()}
	}
	return CompStatus{Status: "ok", Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkAnalyzer() CompStatus {
	if h.analyzer == nil {
		return CompStatus{Status: "down", Error: "not loaded"}
	}
	n := h.analyzer.Size()
	if n == 0 {
		return CompStatus{Status: "down", Error: "empty table"}
	}
	return CompStatus{Status: "ok", Entries: n}
}

func httpStatus(status string) int {
	if status == "ok" {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
