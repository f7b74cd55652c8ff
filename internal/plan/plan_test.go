package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/graph"
	"github.com/ritamzico/gqlgraph/internal/parser"
	"github.com/ritamzico/gqlgraph/internal/storage"
	"github.com/ritamzico/gqlgraph/internal/value"
)

func parseQuery(t *testing.T, src string) ast.Query {
	t.Helper()
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	qs, ok := doc.Statement.(ast.QueryStatement)
	require.Truef(t, ok, "%q did not parse to a QueryStatement, got %T", src, doc.Statement)
	return qs.Query
}

func parseSelect(t *testing.T, src string) *ast.SelectStatement {
	t.Helper()
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	ss, ok := doc.Statement.(ast.SelectStatement)
	require.Truef(t, ok, "%q did not parse to a SelectStatement, got %T", src, doc.Statement)
	return &ss
}

func newTestPlanner(t *testing.T) (*Planner, *graph.MemGraph) {
	t.Helper()
	g := graph.NewMemGraph()
	ids := storage.NewMemFacade()
	return &Planner{Graph: g, IDs: ids}, g
}

func TestExecuteBasicMatchReturn(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, map[string]value.Value{"name": value.Str("Ada")}))

	rows, cols, err := p.Execute(parseQuery(t, `MATCH (n:Person) RETURN n.name AS name`), value.NewRow())
	require.NoError(t, err)
	require.Equal(t, []string{"name"}, cols)
	require.Len(t, rows, 1)
	v, ok := rows[0].Get("name")
	require.True(t, ok)
	require.Equal(t, "Ada", v.Str)
}

func TestExecuteMatchFiltersByLabel(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, nil))
	require.NoError(t, g.AddNode(graph.NodeID("b"), []string{"Company"}, nil))

	rows, _, err := p.Execute(parseQuery(t, `MATCH (n:Company) RETURN n`), value.NewRow())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExecuteWhereFilter(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, map[string]value.Value{"age": value.Int(20)}))
	require.NoError(t, g.AddNode(graph.NodeID("b"), []string{"Person"}, map[string]value.Value{"age": value.Int(40)}))

	rows, _, err := p.Execute(parseQuery(t, `MATCH (n:Person) WHERE n.age > 30 RETURN n.age AS age`), value.NewRow())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	v, _ := rows[0].Get("age")
	require.Equal(t, 40.0, v.Number)
}

func TestExecuteLimitedQuery(t *testing.T) {
	p, g := newTestPlanner(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, g.AddNode(graph.NodeID(string(rune('a'+i))), []string{"Person"}, nil))
	}

	rows, _, err := p.Execute(parseQuery(t, `MATCH (n:Person) RETURN n LIMIT 2`), value.NewRow())
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestExecuteAggregateCount(t *testing.T) {
	p, g := newTestPlanner(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, g.AddNode(graph.NodeID(string(rune('a'+i))), []string{"Person"}, nil))
	}

	rows, cols, err := p.Execute(parseQuery(t, `MATCH (n:Person) RETURN count(n) AS total`), value.NewRow())
	require.NoError(t, err)
	require.Equal(t, []string{"total"}, cols)
	require.Len(t, rows, 1)
	v, _ := rows[0].Get("total")
	require.Equal(t, 3.0, v.Number)
}

func TestExecuteUnionDeduplicates(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, map[string]value.Value{"name": value.Str("Ada")}))

	rows, _, err := p.Execute(parseQuery(t,
		`MATCH (n:Person) RETURN n.name AS name UNION MATCH (n:Person) RETURN n.name AS name`), value.NewRow())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExecuteUnionAllKeepsDuplicates(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, map[string]value.Value{"name": value.Str("Ada")}))

	rows, _, err := p.Execute(parseQuery(t,
		`MATCH (n:Person) RETURN n.name AS name UNION ALL MATCH (n:Person) RETURN n.name AS name`), value.NewRow())
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestApplySetUpdatesProperty(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, map[string]value.Value{"age": value.Int(1)}))

	rows, _, err := p.Execute(parseQuery(t, `MATCH (n:Person) SET n.age = 2`), value.NewRow())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	n, err := g.GetNode(graph.NodeID("a"))
	require.NoError(t, err)
	require.Equal(t, 2.0, n.Props["age"].Number)
}

func TestApplyDeleteRemovesNode(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, nil))

	_, _, err := p.Execute(parseQuery(t, `MATCH (n:Person) DELETE n`), value.NewRow())
	require.NoError(t, err)
	require.False(t, g.ContainsNode(graph.NodeID("a")))
}

func TestMutationInsertReusesMatchedNode(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, map[string]value.Value{"name": value.Str("Ada")}))

	_, _, err := p.Execute(parseQuery(t, `MATCH (a:Person) INSERT (a)-[:KNOWS]->(:Person {name: 'Grace'})`), value.NewRow())
	require.NoError(t, err)
	require.Len(t, g.GetAllNodes(), 2)
	require.Len(t, g.GetEdges(), 1)
	for _, e := range g.GetEdges() {
		require.Equal(t, graph.NodeID("a"), e.From)
	}
}

func TestScalarSubqueryWithMultipleRowsErrors(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, map[string]value.Value{"age": value.Int(1)}))
	require.NoError(t, g.AddNode(graph.NodeID("b"), []string{"Person"}, map[string]value.Value{"age": value.Int(2)}))

	_, _, err := p.Execute(parseQuery(t,
		`RETURN (MATCH (n:Person) RETURN n.age) AS age`), value.NewRow())
	require.Error(t, err)
}

func TestHashAggregateOnEmptyInputEmitsOneRow(t *testing.T) {
	p, _ := newTestPlanner(t)

	rows, cols, err := p.Execute(parseQuery(t, `MATCH (n:Person) RETURN count(n) AS total, sum(n.age) AS total_age`), value.NewRow())
	require.NoError(t, err)
	require.Equal(t, []string{"total", "total_age"}, cols)
	require.Len(t, rows, 1)
	total, _ := rows[0].Get("total")
	require.Equal(t, 0.0, total.Number)
	totalAge, _ := rows[0].Get("total_age")
	require.True(t, totalAge.IsNull())
}

func TestAcyclicPathAvoidsRepeatedNodes(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Node"}, map[string]value.Value{"id": value.Str("a")}))
	require.NoError(t, g.AddNode(graph.NodeID("b"), []string{"Node"}, map[string]value.Value{"id": value.Str("b")}))
	require.NoError(t, g.AddNode(graph.NodeID("c"), []string{"Node"}, map[string]value.Value{"id": value.Str("c")}))
	require.NoError(t, g.AddEdge(graph.EdgeID("ab"), graph.NodeID("a"), graph.NodeID("b"), "E", nil))
	require.NoError(t, g.AddEdge(graph.EdgeID("bc"), graph.NodeID("b"), graph.NodeID("c"), "E", nil))
	require.NoError(t, g.AddEdge(graph.EdgeID("ca"), graph.NodeID("c"), graph.NodeID("a"), "E", nil))

	rows, _, err := p.Execute(parseQuery(t,
		`MATCH ACYCLIC PATH (n:Node {id: 'a'})-[:E{1,5}]->(m:Node) RETURN m.id AS id`), value.NewRow())
	require.NoError(t, err)

	got := map[string]bool{}
	for _, r := range rows {
		v, _ := r.Get("id")
		got[v.Str] = true
	}
	require.Equal(t, map[string]bool{"b": true, "c": true}, got)
}

func TestOptionalMatchKeepsUnmatchedRowViaLeftOuterJoin(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, map[string]value.Value{"name": value.Str("Ada")}))

	rows, _, err := p.Execute(parseQuery(t,
		`MATCH (n:Person) WITH n OPTIONAL MATCH (n)-[:KNOWS]->(m:Person) RETURN n.name AS name, m.name AS friend`), value.NewRow())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	name, _ := rows[0].Get("name")
	require.Equal(t, "Ada", name.Str)
	friend, _ := rows[0].Get("friend")
	require.True(t, friend.IsNull())
}

func TestSelectFromCrossJoinsEachName(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, nil))
	require.NoError(t, g.AddNode(graph.NodeID("b"), []string{"Person"}, nil))

	rows, _, err := p.ExecuteSelect(parseSelect(t, `SELECT x, y FROM x, y`))
	require.NoError(t, err)
	require.Len(t, rows, 4)
}

func TestSetOperationColumnMismatchErrors(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("a"), []string{"Person"}, map[string]value.Value{"name": value.Str("Ada")}))

	_, _, err := p.Execute(parseQuery(t,
		`MATCH (n:Person) RETURN n.name AS name UNION MATCH (n:Person) RETURN n.name AS name, n.name AS name2`), value.NewRow())
	require.Error(t, err)
}

func TestUndoRecorderReplaysOnRollback(t *testing.T) {
	p, g := newTestPlanner(t)
	require.NoError(t, g.AddNode(graph.NodeID("seed"), []string{"Seed"}, nil))
	var undone []string
	p.Undo = func(description string, undo func() error) {
		undone = append(undone, description)
		require.NoError(t, undo())
	}

	_, _, err := p.Execute(parseQuery(t, `MATCH (s:Seed) INSERT (:Person {name: 'Ada'})`), value.NewRow())
	require.NoError(t, err)
	require.Len(t, g.GetAllNodes(), 1)
	require.True(t, g.ContainsNode(graph.NodeID("seed")))
	require.NotEmpty(t, undone)
}
