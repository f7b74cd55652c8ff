package serialization

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ritamzico/gqlgraph/internal/graph"
	"github.com/ritamzico/gqlgraph/internal/value"
)

func buildGraph(t *testing.T, nodes []nodeDesc, edges []edgeDesc) *graph.MemGraph {
	t.Helper()
	g := graph.NewMemGraph()
	for _, n := range nodes {
		require.NoError(t, g.AddNode(graph.NodeID(n.id), n.labels, n.props))
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(graph.EdgeID(e.id), graph.NodeID(e.from), graph.NodeID(e.to), e.label, e.props))
	}
	return g
}

type nodeDesc struct {
	id     string
	labels []string
	props  map[string]value.Value
}

type edgeDesc struct {
	id    string
	from  string
	to    string
	label string
	props map[string]value.Value
}

func roundTrip(t *testing.T, g *graph.MemGraph) *graph.MemGraph {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(g, &buf))
	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	return got
}

func TestRoundTripEmptyGraph(t *testing.T) {
	got := roundTrip(t, graph.NewMemGraph())
	require.Empty(t, got.GetAllNodes())
	require.Empty(t, got.GetEdges())
}

func TestRoundTripNodesWithLabelsAndProps(t *testing.T) {
	g := buildGraph(t, []nodeDesc{
		{id: "a", labels: []string{"Person"}, props: map[string]value.Value{"name": value.Str("Ada")}},
		{id: "b", labels: []string{"Person", "Admin"}},
	}, nil)
	got := roundTrip(t, g)

	require.Len(t, got.GetAllNodes(), 2)
	n, err := got.GetNode(graph.NodeID("a"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Person"}, n.Labels)
	require.True(t, n.Props["name"].Equal(value.Str("Ada")))

	b, err := got.GetNode(graph.NodeID("b"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Person", "Admin"}, b.Labels)
}

func TestRoundTripEdgeWithLabelAndProps(t *testing.T) {
	g := buildGraph(t,
		[]nodeDesc{{id: "a"}, {id: "b"}},
		[]edgeDesc{{id: "e1", from: "a", to: "b", label: "KNOWS", props: map[string]value.Value{"since": value.Int(2020)}}},
	)
	got := roundTrip(t, g)

	require.True(t, got.ContainsEdgeByID(graph.EdgeID("e1")))
	e, err := got.GetEdgeByID(graph.EdgeID("e1"))
	require.NoError(t, err)
	require.Equal(t, "KNOWS", e.Label)
	require.True(t, e.Props["since"].Equal(value.Int(2020)))
}

func TestRoundTripAllValueKinds(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	props := map[string]value.Value{
		"s":    value.Str("hello"),
		"n":    value.Number(3.5),
		"b":    value.Bool(true),
		"t":    value.DateTime(now),
		"l":    value.List([]value.Value{value.Int(1), value.Str("x")}),
		"vec":  value.Vector([]float64{1, 2, 3}),
		"null": value.Null,
	}
	g := buildGraph(t, []nodeDesc{{id: "n1", props: props}}, nil)
	got := roundTrip(t, g)

	n, err := got.GetNode(graph.NodeID("n1"))
	require.NoError(t, err)
	require.True(t, n.Props["s"].Equal(value.Str("hello")))
	require.True(t, n.Props["n"].Equal(value.Number(3.5)))
	require.True(t, n.Props["b"].Equal(value.Bool(true)))
	require.True(t, n.Props["t"].Time.Equal(now))
	require.Equal(t, value.ListKind, n.Props["l"].Kind)
	require.Len(t, n.Props["l"].List, 2)
	require.Equal(t, value.VectorKind, n.Props["vec"].Kind)
	require.Equal(t, []float64{1, 2, 3}, n.Props["vec"].Vector)
	require.True(t, n.Props["null"].IsNull())
}

func TestRoundTripMultigraphParallelEdges(t *testing.T) {
	g := buildGraph(t,
		[]nodeDesc{{id: "a"}, {id: "b"}},
		[]edgeDesc{
			{id: "e1", from: "a", to: "b", label: "LIKES"},
			{id: "e2", from: "a", to: "b", label: "FOLLOWS"},
		},
	)
	got := roundTrip(t, g)
	require.Len(t, got.GetEdges(), 2)
	require.True(t, got.ContainsEdge(graph.NodeID("a"), graph.NodeID("b")))
}

func TestReadJSONEmptyObject(t *testing.T) {
	g, err := ReadJSON(strings.NewReader(`{}`))
	require.NoError(t, err)
	require.Empty(t, g.GetAllNodes())
}

func TestReadJSONFullExample(t *testing.T) {
	input := `{
		"nodes": [
			{"id": "a", "labels": ["Person"], "props": {"age": {"kind": "number", "value": 30}}},
			{"id": "b"}
		],
		"edges": [
			{"id": "e1", "from": "a", "to": "b", "label": "KNOWS", "props": {"weight": {"kind": "number", "value": 0.8}}}
		]
	}`
	g, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)

	n, err := g.GetNode(graph.NodeID("a"))
	require.NoError(t, err)
	require.True(t, n.Props["age"].Equal(value.Number(30)))

	e, err := g.GetEdgeByID(graph.EdgeID("e1"))
	require.NoError(t, err)
	require.True(t, e.Props["weight"].Equal(value.Number(0.8)))
}

func TestReadJSONInvalidJSON(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"nodes": [`))
	require.Error(t, err)
}

func TestReadJSONDuplicateNodeIDs(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"nodes": [{"id": "a"}, {"id": "a"}]}`))
	require.Error(t, err)
}

func TestReadJSONEdgeReferencesNonexistentNode(t *testing.T) {
	input := `{"nodes": [{"id": "a"}], "edges": [{"id": "e1", "from": "a", "to": "b"}]}`
	_, err := ReadJSON(strings.NewReader(input))
	require.Error(t, err)
}

func TestReadJSONInvalidPropertyType(t *testing.T) {
	input := `{"nodes": [{"id": "a", "props": {"x": {"kind": "number", "value": "not-a-number"}}}]}`
	_, err := ReadJSON(strings.NewReader(input))
	require.Error(t, err)
}

func TestReadJSONUnknownValueKind(t *testing.T) {
	input := `{"nodes": [{"id": "a", "props": {"x": {"kind": "complex", "value": 42}}}]}`
	_, err := ReadJSON(strings.NewReader(input))
	require.Error(t, err)
}

func TestSaveAndLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")

	g := buildGraph(t,
		[]nodeDesc{{id: "a", props: map[string]value.Value{"val": value.Int(10)}}, {id: "b"}},
		[]edgeDesc{{id: "e1", from: "a", to: "b"}},
	)
	require.NoError(t, SaveJSON(g, path))

	got, err := LoadJSON(path)
	require.NoError(t, err)
	require.True(t, got.ContainsNode(graph.NodeID("a")))
	require.True(t, got.ContainsEdgeByID(graph.EdgeID("e1")))
}

func TestLoadJSONNonexistentFile(t *testing.T) {
	_, err := LoadJSON("/nonexistent/path/graph.json")
	require.Error(t, err)
}

func TestSaveJSONInvalidPath(t *testing.T) {
	err := SaveJSON(graph.NewMemGraph(), "/nonexistent/dir/graph.json")
	require.Error(t, err)
}

func TestWriteJSONIsIndented(t *testing.T) {
	g := buildGraph(t, []nodeDesc{{id: "a"}}, nil)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(g, &buf))
	require.Greater(t, strings.Count(buf.String(), "\n"), 2)
}

func TestRoundTripUnicodeIDsAndStrings(t *testing.T) {
	g := buildGraph(t, []nodeDesc{
		{id: "unicode-日本語", props: map[string]value.Value{"desc": value.Str("hello 🌍")}},
	}, nil)
	got := roundTrip(t, g)
	n, err := got.GetNode(graph.NodeID("unicode-日本語"))
	require.NoError(t, err)
	require.True(t, n.Props["desc"].Equal(value.Str("hello 🌍")))
}
