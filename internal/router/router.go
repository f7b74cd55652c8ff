// Package router is the single entry point that resolves graph context,
// dispatches every top-level Statement variant, and coordinates transactions
// around internal/plan's query execution.
package router

import (
	"github.com/sirupsen/logrus"
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/catalog"
	"github.com/ritamzico/gqlgraph/internal/graph"
	"github.com/ritamzico/gqlgraph/internal/parser"
	"github.com/ritamzico/gqlgraph/internal/plan"
	"github.com/ritamzico/gqlgraph/internal/session"
	"github.com/ritamzico/gqlgraph/internal/storage"
	"github.com/ritamzico/gqlgraph/internal/txn"
	"github.com/ritamzico/gqlgraph/internal/value"
)

var (
	ErrNoCurrentGraph = goerrors.NewKind("session has no current graph; run SESSION SET GRAPH first")
	ErrNotInProcedure = goerrors.NewKind("NEXT/DECLARE used outside a procedure body")
)

// Result is the router's uniform statement outcome: a row set for query forms,
// or a human-readable message for effect-only statements (session, catalog,
// transaction control) — the GQL analogue of the original
// MultiResult/BooleanResult union, generalised to rows+columns instead of
// probabilistic path results.
type Result struct {
	Columns []string
	Rows    []value.Row
	Message string
}

// Router owns the facades and coordinators every statement dispatches
// against. It is safe for concurrent use by multiple sessions; per-session
// mutable state (current graph/txn/declared vars) lives in *session.Session
// and the router's own txnGraphs/vars maps.
type Router struct {
	Storage storage.Facade
	Catalog catalog.Facade
	Txn     *txn.Coordinator
	Log     *logrus.Entry

	txnGraphs map[string]graph.Model            // txnID -> checked-out mutable graph
	vars      map[string]map[string]value.Value // sessionID -> declared variable bindings
}

func New(store storage.Facade, cat catalog.Facade, coord *txn.Coordinator, log *logrus.Entry) *Router {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Router{
		Storage:   store,
		Catalog:   cat,
		Txn:       coord,
		Log:       log,
		txnGraphs: make(map[string]graph.Model),
		vars:      make(map[string]map[string]value.Value),
	}
}

// Execute parses and runs one request string against sess.
func (r *Router) Execute(sess *session.Session, input string) (Result, error) {
	doc, err := parser.Parse(input)
	if err != nil {
		return Result{}, err
	}
	return r.dispatch(sess, doc.Statement)
}

func (r *Router) dispatch(sess *session.Session, stmt ast.Statement) (Result, error) {
	switch s := stmt.(type) {
	case ast.QueryStatement:
		return r.runQuery(sess, s.Query)
	case ast.SelectStatement:
		return r.runSelect(sess, &s)
	case ast.CallStatement:
		return r.runCall(sess, &s)
	case ast.CatalogStatement:
		return r.runCatalog(sess, &s)
	case ast.IndexStatement:
		return r.runIndex(sess, &s)
	case ast.DataStatement:
		return r.runData(sess, &s)
	case ast.SessionStatement:
		return r.runSession(sess, &s)
	case ast.TransactionStatement:
		return r.runTransaction(sess, &s)
	case ast.DeclareStatement:
		return r.runDeclare(sess, &s)
	case ast.LetStatement:
		return r.runLet(sess, &s)
	case ast.AtLocationStatement:
		return r.runAtLocation(sess, &s)
	case ast.ProcedureBodyStatement:
		return r.runProcedureBody(sess, &s)
	case ast.NextStatement:
		return r.dispatch(sess, s.Inner)
	}
	return Result{}, goerrors.NewKind("unrecognised statement %T").New(stmt)
}

// checkoutGraph resolves sess's current graph to a mutable snapshot: inside an
// active transaction the same checked-out graph is reused across statements (so
// its mutations accumulate until COMMIT/ROLLBACK); in autocommit mode a fresh
// clone is taken and saved back immediately after the statement runs.
func (r *Router) checkoutGraph(sess *session.Session) (graph.Model, error) {
	if sess.CurrentGraph == "" {
		return nil, ErrNoCurrentGraph.New()
	}
	if sess.CurrentTxn != "" {
		if g, ok := r.txnGraphs[sess.CurrentTxn]; ok {
			return g, nil
		}
		g, ok := r.Storage.GetGraph(sess.CurrentGraph)
		if !ok {
			return nil, ErrNoCurrentGraph.New()
		}
		r.txnGraphs[sess.CurrentTxn] = g
		return g, nil
	}
	g, ok := r.Storage.GetGraph(sess.CurrentGraph)
	if !ok {
		return nil, ErrNoCurrentGraph.New()
	}
	return g, nil
}

// commitGraph persists g back to storage in autocommit mode; under an
// active transaction, persistence is deferred to COMMIT.
func (r *Router) commitGraph(sess *session.Session, g graph.Model) error {
	if sess.CurrentTxn != "" {
		return nil
	}
	return r.Storage.SaveGraph(sess.CurrentGraph, g)
}

func (r *Router) undoRecorder(sess *session.Session) plan.UndoRecorder {
	txnID := sess.CurrentTxn
	if txnID == "" {
		return nil
	}
	return func(description string, undo func() error) {
		if err := r.Txn.LogOperation(txnID, txn.UndoOp{Description: description, Undo: undo}); err != nil {
			r.Log.WithError(err).Warn("failed to record undo operation")
		}
	}
}

func (r *Router) newPlanner(sess *session.Session, g graph.Model) *plan.Planner {
	return &plan.Planner{
		Graph:  g,
		IDs:    r.Storage,
		Params: r.vars[sess.ID],
		Undo:   r.undoRecorder(sess),
	}
}

func (r *Router) runQuery(sess *session.Session, q ast.Query) (Result, error) {
	g, err := r.checkoutGraph(sess)
	if err != nil {
		return Result{}, err
	}
	p := r.newPlanner(sess, g)
	rows, cols, err := p.Execute(q, value.NewRow())
	if err != nil {
		return Result{}, err
	}
	if err := r.commitGraph(sess, g); err != nil {
		return Result{}, err
	}
	return Result{Columns: cols, Rows: rows}, nil
}

func (r *Router) runSelect(sess *session.Session, stmt *ast.SelectStatement) (Result, error) {
	g, err := r.checkoutGraph(sess)
	if err != nil {
		return Result{}, err
	}
	p := r.newPlanner(sess, g)
	rows, cols, err := p.ExecuteSelect(stmt)
	if err != nil {
		return Result{}, err
	}
	return Result{Columns: cols, Rows: rows}, nil
}

func (r *Router) runData(sess *session.Session, stmt *ast.DataStatement) (Result, error) {
	g, err := r.checkoutGraph(sess)
	if err != nil {
		return Result{}, err
	}
	p := r.newPlanner(sess, g)
	row := value.NewRow()
	switch stmt.Kind {
	case ast.Insert:
		if err := p.InsertPattern(stmt.Pattern, row, p.EvalContext()); err != nil {
			return Result{}, err
		}
	case ast.SetData:
		if err := p.ApplySet([]value.Row{row}, stmt.SetOps, p.EvalContext()); err != nil {
			return Result{}, err
		}
	case ast.RemoveData:
		if err := p.ApplyRemove([]value.Row{row}, stmt.Removes, p.EvalContext()); err != nil {
			return Result{}, err
		}
	case ast.DeleteData:
		if err := p.ApplyDelete([]value.Row{row}, stmt.Deletes, stmt.Detach, p.EvalContext()); err != nil {
			return Result{}, err
		}
	}
	if err := r.commitGraph(sess, g); err != nil {
		return Result{}, err
	}
	return Result{Message: "graph updated"}, nil
}

func (r *Router) runSession(sess *session.Session, stmt *ast.SessionStatement) (Result, error) {
	switch stmt.Kind {
	case ast.SessionSet:
		switch stmt.Target {
		case ast.SetGraphTarget:
			sess.CurrentGraph = stmt.Value
		case ast.SetSchemaTarget:
			sess.CurrentSchema = stmt.Value
		case ast.SetTimeZoneTarget:
			sess.TimeZone = stmt.Value
		}
		return Result{Message: "session updated"}, nil
	case ast.SessionReset:
		sess.CurrentGraph = ""
		sess.CurrentSchema = ""
		sess.TimeZone = ""
		delete(r.vars, sess.ID)
		return Result{Message: "session reset"}, nil
	case ast.SessionClose:
		delete(r.vars, sess.ID)
		return Result{Message: "session closed"}, nil
	}
	return Result{}, nil
}

func (r *Router) runTransaction(sess *session.Session, stmt *ast.TransactionStatement) (Result, error) {
	switch stmt.Kind {
	case ast.StartTransaction:
		isolation := txn.ReadCommitted
		access := txn.ReadWrite
		if stmt.Isolation != nil {
			isolation = txn.Isolation(*stmt.Isolation)
		}
		if stmt.Access != nil {
			access = txn.Access(*stmt.Access)
		}
		t := r.Txn.Begin(sess.ID, isolation, access)
		sess.CurrentTxn = t.ID
		return Result{Message: "transaction started: " + t.ID}, nil

	case ast.Commit:
		if sess.CurrentTxn == "" {
			return Result{}, txn.ErrNotActive.New("")
		}
		if g, ok := r.txnGraphs[sess.CurrentTxn]; ok {
			if err := r.Storage.SaveGraph(sess.CurrentGraph, g); err != nil {
				return Result{}, err
			}
			delete(r.txnGraphs, sess.CurrentTxn)
		}
		if err := r.Txn.Commit(sess.CurrentTxn); err != nil {
			return Result{}, err
		}
		sess.CurrentTxn = ""
		return Result{Message: "transaction committed"}, nil

	case ast.Rollback:
		if sess.CurrentTxn == "" {
			return Result{}, txn.ErrNotActive.New("")
		}
		if err := r.Txn.Rollback(sess.CurrentTxn); err != nil {
			return Result{}, err
		}
		delete(r.txnGraphs, sess.CurrentTxn)
		sess.CurrentTxn = ""
		return Result{Message: "transaction rolled back"}, nil

	case ast.SetTransactionCharacteristics:
		return Result{Message: "transaction characteristics set"}, nil
	}
	return Result{}, nil
}

func (r *Router) runDeclare(sess *session.Session, stmt *ast.DeclareStatement) (Result, error) {
	vars := r.sessionVars(sess.ID)
	var v value.Value = value.Null
	if stmt.Init != nil {
		g, _ := r.checkoutGraph(sess)
		p := r.newPlanner(sess, g)
		val, err := p.EvalOne(stmt.Init, value.NewRow())
		if err != nil {
			return Result{}, err
		}
		v = val
	}
	vars[stmt.Name] = v
	return Result{Message: "declared " + stmt.Name}, nil
}

func (r *Router) runLet(sess *session.Session, stmt *ast.LetStatement) (Result, error) {
	vars := r.sessionVars(sess.ID)
	g, _ := r.checkoutGraph(sess)
	p := r.newPlanner(sess, g)
	for _, b := range stmt.Bindings {
		v, err := p.EvalOne(b.Expr, value.NewRow())
		if err != nil {
			return Result{}, err
		}
		vars[b.Name] = v
	}
	return Result{Message: "bindings set"}, nil
}

func (r *Router) sessionVars(sessionID string) map[string]value.Value {
	vars, ok := r.vars[sessionID]
	if !ok {
		vars = make(map[string]value.Value)
		r.vars[sessionID] = vars
	}
	return vars
}

// runAtLocation pushes sess.CurrentGraph to the evaluated graph expression,
// runs the body in sequence, and restores it afterwards — a scoped graph
// context switch rather than a true nested-session stack.
func (r *Router) runAtLocation(sess *session.Session, stmt *ast.AtLocationStatement) (Result, error) {
	g, err := r.checkoutGraph(sess)
	var name string
	if err == nil {
		p := r.newPlanner(sess, g)
		v, evalErr := p.EvalOne(stmt.GraphExpr, value.NewRow())
		if evalErr == nil && v.Kind == value.StringKind {
			name = v.Str
		}
	}
	if name == "" {
		return Result{}, ErrNoCurrentGraph.New()
	}

	prior := sess.CurrentGraph
	sess.CurrentGraph = name
	defer func() { sess.CurrentGraph = prior }()

	var last Result
	for _, inner := range stmt.Body {
		last, err = r.dispatch(sess, inner)
		if err != nil {
			return Result{}, err
		}
	}
	return last, nil
}

// runProcedureBody declares its local variables, runs the initial statement,
// then threads each NEXT statement in turn, returning the last statement's
// result.
func (r *Router) runProcedureBody(sess *session.Session, stmt *ast.ProcedureBodyStatement) (Result, error) {
	for _, decl := range stmt.Declarations {
		if _, err := r.runDeclare(sess, &decl); err != nil {
			return Result{}, err
		}
	}
	last, err := r.dispatch(sess, stmt.Initial)
	if err != nil {
		return Result{}, err
	}
	for _, next := range stmt.Next {
		last, err = r.dispatch(sess, next)
		if err != nil {
			return Result{}, err
		}
	}
	return last, nil
}
