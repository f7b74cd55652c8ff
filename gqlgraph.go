// Package gqlgraph is the embeddable entry point: it wires the storage,
// catalog, and transaction facades together behind one Engine and exposes
// session-scoped GQL query execution.
package gqlgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ritamzico/gqlgraph/internal/catalog"
	"github.com/ritamzico/gqlgraph/internal/router"
	"github.com/ritamzico/gqlgraph/internal/serialization"
	"github.com/ritamzico/gqlgraph/internal/session"
	"github.com/ritamzico/gqlgraph/internal/storage"
	"github.com/ritamzico/gqlgraph/internal/txn"
)

type (
	Result = router.Result
)

// Engine owns one database's storage/catalog/transaction facades and the
// router that dispatches parsed statements against them. It is safe for
// concurrent use by multiple sessions.
type Engine struct {
	Storage storage.Facade
	Catalog catalog.Facade
	Txn     *txn.Coordinator
	Router  *router.Router
	Log     *logrus.Entry

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// New returns an Engine backed by the in-memory storage/catalog facades, with a
// single "default" graph already created.
func New() *Engine {
	log := logrus.NewEntry(logrus.StandardLogger())
	store := storage.NewMemFacade()
	cat := catalog.NewMemCatalog()
	coord := txn.NewCoordinator(log)

	e := &Engine{
		Storage:  store,
		Catalog:  cat,
		Txn:      coord,
		Router:   router.New(store, cat, coord, log),
		Log:      log,
		sessions: make(map[string]*session.Session),
	}
	if _, err := store.CreateGraph("default"); err != nil {
		e.Log.WithError(err).Warn("failed to seed default graph")
	}
	cat.RegisterGraph("default", "default")
	return e
}

// NewSession opens a session bound to the "default" graph and schema.
func (e *Engine) NewSession() *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := &session.Session{
		ID:            uuid.NewString(),
		CurrentGraph:  "default",
		CurrentSchema: "default",
	}
	e.sessions[sess.ID] = sess
	return sess
}

// CloseSession discards session state and rolls back any transaction it
// left open.
func (e *Engine) CloseSession(sess *session.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sess.CurrentTxn != "" {
		_ = e.Txn.Rollback(sess.CurrentTxn)
	}
	delete(e.sessions, sess.ID)
}

// Query parses and runs one GQL request against sess.
func (e *Engine) Query(sess *session.Session, request string) (Result, error) {
	return e.Router.Execute(sess, request)
}

// Load replaces the named graph with the JSON-encoded graph read from r.
func (e *Engine) Load(r io.Reader, graphName string) error {
	g, err := serialization.ReadJSON(r)
	if err != nil {
		return err
	}
	return e.Storage.SaveGraph(graphName, g)
}

// LoadFile replaces the named graph with the JSON-encoded graph stored at
// path.
func (e *Engine) LoadFile(path, graphName string) error {
	g, err := serialization.LoadJSON(path)
	if err != nil {
		return err
	}
	return e.Storage.SaveGraph(graphName, g)
}

// Save writes the named graph as JSON to w.
func (e *Engine) Save(w io.Writer, graphName string) error {
	g, ok := e.Storage.GetGraph(graphName)
	if !ok {
		return storage.ErrGraphNotFound.New(graphName)
	}
	return serialization.WriteJSON(g, w)
}

// SaveFile writes the named graph as JSON to a file at path.
func (e *Engine) SaveFile(path, graphName string) error {
	g, ok := e.Storage.GetGraph(graphName)
	if !ok {
		return storage.ErrGraphNotFound.New(graphName)
	}
	return serialization.SaveJSON(g, path)
}

type jsonResult struct {
	Columns []string `json:"columns,omitempty"`
	Rows    []any    `json:"rows,omitempty"`
	Message string   `json:"message,omitempty"`
}

// MarshalResultJSON renders a Result as a columns/rows/message JSON object,
// flattening each row onto its declared column order.
func MarshalResultJSON(r Result) ([]byte, error) {
	jr := jsonResult{Columns: r.Columns, Message: r.Message}
	for _, row := range r.Rows {
		rowOut := make(map[string]any, len(r.Columns))
		for _, col := range r.Columns {
			v, ok := row.Get(col)
			if !ok {
				rowOut[col] = nil
				continue
			}
			rowOut[col] = v.Signature()
		}
		jr.Rows = append(jr.Rows, rowOut)
	}
	b, err := json.Marshal(jr)
	if err != nil {
		return nil, fmt.Errorf("marshalling result: %w", err)
	}
	return b, nil
}
