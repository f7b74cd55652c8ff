package graph

import "testing"

func TestCloneWithEdges(t *testing.T) {
	g := NewMemGraph()
	g.AddNode("A", []string{"Person"}, nil)
	g.AddNode("B", []string{"Person"}, nil)
	g.AddEdge("eAB", "A", "B", "KNOWS", nil)

	cloned := g.Clone()

	if !cloned.ContainsNode("A") {
		t.Error("cloned graph should contain node A")
	}
	if !cloned.ContainsNode("B") {
		t.Error("cloned graph should contain node B")
	}
	if !cloned.ContainsEdgeByID("eAB") {
		t.Error("cloned graph should contain edge eAB")
	}

	// Mutating the clone must not affect the original (snapshot-by-value).
	if err := cloned.RemoveNode("A"); err != nil {
		t.Errorf("RemoveNode failed: %v", err)
	}
	if !g.ContainsNode("A") {
		t.Error("removing a node from the clone should not affect the original graph")
	}
}

func TestMultigraphEdges(t *testing.T) {
	g := NewMemGraph()
	g.AddNode("A", nil, nil)
	g.AddNode("B", nil, nil)
	if err := g.AddEdge("e1", "A", "B", "KNOWS", nil); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("e2", "A", "B", "FOLLOWS", nil); err != nil {
		t.Fatal(err)
	}

	out, err := g.OutgoingEdges("A")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 outgoing edges between A and B, got %d", len(out))
	}
}
