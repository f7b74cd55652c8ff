package parser

import goerrors "gopkg.in/src-d/go-errors.v1"

// Error kinds cover each diagnostic category the parser raises, including
// exact remediation text for the two historically confused DELETE forms.
var (
	ErrLexer           = goerrors.NewKind("lexer error: %s")
	ErrUnexpectedToken = goerrors.NewKind("unexpected token: %s")
	ErrExpectedToken   = goerrors.NewKind("expected token: %s")

	ErrInvalidDeleteSchema = goerrors.NewKind(
		"invalid syntax 'DELETE SCHEMA'. Schema deletion uses 'DROP SCHEMA'. " +
			"Correct syntax: DROP SCHEMA [IF EXISTS] schema_name [CASCADE | RESTRICT]. " +
			"Example: DROP SCHEMA analytics_db")
	ErrInvalidDeleteGraph = goerrors.NewKind(
		"invalid syntax 'DELETE GRAPH'. Graph deletion uses 'DROP GRAPH'. " +
			"Correct syntax: DROP [PROPERTY] GRAPH [IF EXISTS] graph_path. " +
			"Example: DROP GRAPH /test_schema/test_restrict_graph2")

	ErrIncompleteUnion = goerrors.NewKind(
		"incomplete UNION operation. Expected a query after UNION. Syntax: query1 UNION [ALL] query2")
	ErrIncompleteExcept = goerrors.NewKind(
		"incomplete EXCEPT operation. Expected a query after EXCEPT. Syntax: query1 EXCEPT [ALL] query2")
	ErrIncompleteIntersect = goerrors.NewKind(
		"incomplete INTERSECT operation. Expected a query after INTERSECT. Syntax: query1 INTERSECT [ALL] query2")
)
