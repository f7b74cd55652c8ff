package plan

import (
	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/exec"
	"github.com/ritamzico/gqlgraph/internal/value"
)

// ExecuteSelect runs the SQL-style SELECT surface form. Each FROM name is bound
// by an unfiltered NodeSeqScan and cross-joined via exec.Join(JoinCross).
func (p *Planner) ExecuteSelect(stmt *ast.SelectStatement) ([]value.Row, []string, error) {
	ctx := p.context()
	rows := exec.SingleRow()
	for _, name := range stmt.From {
		scanned, err := exec.NodeSeqScan(p.Graph, name, nil)
		if err != nil {
			return nil, nil, err
		}
		rows, err = exec.Join(rows, scanned, exec.JoinCross, nil, ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	rows, err := exec.Filter(rows, stmt.Where, ctx)
	if err != nil {
		return nil, nil, err
	}

	items := stmt.Items
	var cols []string
	if len(stmt.GroupBy) > 0 || exec.HasAggregates(items) {
		rows, cols, err = exec.HashAggregate(rows, stmt.GroupBy, items, stmt.Having, ctx)
	} else {
		rows, cols, err = exec.Project(rows, items, ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	if stmt.Distinct {
		rows = exec.Distinct(rows, cols)
	}
	return p.applyTail(rows, cols, stmt.OrderBy, stmt.Limit, stmt.Offset, ctx)
}
