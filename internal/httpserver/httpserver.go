// Package httpserver exposes the Engine over HTTP: one POST /query endpoint
// that accepts a session token and a GQL request body, and a YAML-loaded Config
// for the listen address and CORS allow-list.
package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	gqlgraph "github.com/ritamzico/gqlgraph"
	"github.com/ritamzico/gqlgraph/internal/session"
)

// Config is the server's YAML-loaded configuration.
type Config struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultConfig is used when no config file is given.
func DefaultConfig() Config {
	return Config{Port: 8080, AllowedOrigins: []string{"http://localhost:5173"}}
}

// LoadConfig reads a YAML config file at path, falling back to
// DefaultConfig for any field left unset.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

type queryRequest struct {
	Session string `json:"session"`
	Query   string `json:"query"`
}

type queryResponse struct {
	Columns []string `json:"columns,omitempty"`
	Rows    []any    `json:"rows,omitempty"`
	Message string   `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// NewRouter builds the mux.Router serving engine against one process-wide
// session per request (callers supply a session token and the handler
// creates a fresh engine session on first use, keyed by that token).
func NewRouter(eng *gqlgraph.Engine, log *logrus.Entry) *mux.Router {
	sessions := make(map[string]*session.Session)

	r := mux.NewRouter()
	r.HandleFunc("/query", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body queryRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.Query == "" {
			writeError(w, http.StatusBadRequest, "missing field: query")
			return
		}

		sess, ok := sessions[body.Session]
		if !ok {
			sess = eng.NewSession()
			sessions[body.Session] = sess
		}

		res, err := eng.Query(sess, body.Query)
		if err != nil {
			log.WithError(err).Warn("query failed")
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		resp := queryResponse{Columns: res.Columns, Message: res.Message}
		for _, row := range res.Rows {
			rowOut := make(map[string]any, len(res.Columns))
			for _, col := range res.Columns {
				if v, ok := row.Get(col); ok {
					rowOut[col] = v.Signature()
				} else {
					rowOut[col] = nil
				}
			}
			resp.Rows = append(resp.Rows, rowOut)
		}
		writeJSON(w, http.StatusOK, resp)
	}).Methods(http.MethodPost, http.MethodOptions)

	return r
}

// Serve starts the HTTP server, wrapping the router with CORS handling for
// cfg.AllowedOrigins.
func Serve(cfg Config, eng *gqlgraph.Engine, log *logrus.Entry) error {
	r := NewRouter(eng, log)
	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Infof("gqlgraph server listening on %s", addr)
	return http.ListenAndServe(addr, cors(r))
}
