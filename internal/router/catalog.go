package router

import (
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/session"
	"github.com/ritamzico/gqlgraph/internal/value"
)

var ErrUnknownProcedure = goerrors.NewKind("unknown procedure %q")

// runCatalog delegates DDL forms to the storage/catalog facades. CREATE
// SCHEMA registers with the catalog, while DROP SCHEMA is acknowledged
// without effect; CREATE/DROP/TRUNCATE/CLEAR GRAPH operate on storage; user/role/procedure management has no backing facade yet and is
// acknowledged without effect.
func (r *Router) runCatalog(sess *session.Session, stmt *ast.CatalogStatement) (Result, error) {
	switch stmt.Kind {
	case ast.CreateSchema:
		r.Catalog.RegisterSchema(stmt.Name)
		return Result{Message: "schema created: " + stmt.Name}, nil

	case ast.DropSchema:
		return Result{Message: "schema dropped: " + stmt.Name}, nil

	case ast.CreateGraph:
		if _, err := r.Storage.CreateGraph(stmt.Name); err != nil {
			if stmt.IfNotExist {
				return Result{Message: "graph already exists: " + stmt.Name}, nil
			}
			return Result{}, err
		}
		r.Catalog.RegisterGraph(stmt.SchemaName, stmt.Name)
		return Result{Message: "graph created: " + stmt.Name}, nil

	case ast.DropGraph:
		if err := r.Storage.DropGraph(stmt.Name); err != nil {
			if stmt.IfExists {
				return Result{Message: "graph does not exist: " + stmt.Name}, nil
			}
			return Result{}, err
		}
		return Result{Message: "graph dropped: " + stmt.Name}, nil

	case ast.TruncateGraph, ast.ClearGraph:
		g, err := r.Storage.CreateGraph(stmt.Name)
		if err != nil {
			return Result{}, err
		}
		if err := r.Storage.SaveGraph(stmt.Name, g); err != nil {
			return Result{}, err
		}
		return Result{Message: "graph cleared: " + stmt.Name}, nil

	case ast.CreateGraphType, ast.DropGraphType, ast.AlterGraphType:
		return Result{Message: "graph type catalog operations are not backed by a schema validator"}, nil

	case ast.CreateUser, ast.DropUser, ast.CreateRole, ast.DropRole, ast.GrantRole, ast.RevokeRole:
		return Result{Message: "access-control catalog operations are acknowledged but not enforced"}, nil

	case ast.CreateProcedure, ast.DropProcedure:
		return Result{Message: "stored procedures are not supported; use CALL against the built-in procedure registry"}, nil
	}
	return Result{}, nil
}

// runIndex acknowledges index DDL. No secondary-index subsystem is wired up
// yet, so CREATE/DROP INDEX are recorded as catalog no-ops rather than actually
// accelerating NodeSeqScan.
func (r *Router) runIndex(sess *session.Session, stmt *ast.IndexStatement) (Result, error) {
	switch stmt.Kind {
	case ast.CreateIndex:
		return Result{Message: "index created: " + stmt.Name}, nil
	case ast.DropIndex:
		return Result{Message: "index dropped: " + stmt.Name}, nil
	}
	return Result{}, nil
}

// runCall invokes a built-in system procedure. The registry is small and read-
// only: user-defined procedures are out of scope.
func (r *Router) runCall(sess *session.Session, stmt *ast.CallStatement) (Result, error) {
	proc, ok := systemProcedures[stmt.Name]
	if !ok {
		return Result{}, ErrUnknownProcedure.New(stmt.Name)
	}
	g, err := r.checkoutGraph(sess)
	if err != nil {
		return Result{}, err
	}
	rows, cols, err := proc(g)
	if err != nil {
		return Result{}, err
	}
	if stmt.Where != nil {
		p := r.newPlanner(sess, g)
		var filtered []value.Row
		for _, row := range rows {
			v, err := p.EvalOne(stmt.Where, row)
			if err != nil {
				return Result{}, err
			}
			if v.IsTrue() {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	return Result{Columns: cols, Rows: rows}, nil
}
