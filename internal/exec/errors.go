package exec

import goerrors "gopkg.in/src-d/go-errors.v1"

var ErrScalarSubqueryMultipleRows = goerrors.NewKind(
	"scalar subquery returned %d rows, expected at most 1")
