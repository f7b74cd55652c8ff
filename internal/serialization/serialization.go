// Package serialization encodes and decodes a graph.Model as JSON, the same on-
// disk shape the embeddable engine uses for Load/Save.
package serialization

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ritamzico/gqlgraph/internal/graph"
	"github.com/ritamzico/gqlgraph/internal/value"
)

type serializedValue struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

type serializedNode struct {
	ID     string                     `json:"id"`
	Labels []string                   `json:"labels,omitempty"`
	Props  map[string]serializedValue `json:"props,omitempty"`
}

type serializedEdge struct {
	ID    string                     `json:"id"`
	From  string                     `json:"from"`
	To    string                     `json:"to"`
	Label string                     `json:"label,omitempty"`
	Props map[string]serializedValue `json:"props,omitempty"`
}

type serializedGraph struct {
	Nodes []serializedNode `json:"nodes"`
	Edges []serializedEdge `json:"edges"`
}

func marshalValue(v value.Value) serializedValue {
	switch v.Kind {
	case value.BoolKind:
		return serializedValue{Kind: "bool", Value: v.Bool}
	case value.NumberKind:
		return serializedValue{Kind: "number", Value: v.Number}
	case value.StringKind:
		return serializedValue{Kind: "string", Value: v.Str}
	case value.DateTimeKind:
		return serializedValue{Kind: "datetime", Value: v.Time.Format(time.RFC3339Nano)}
	case value.ListKind:
		items := make([]serializedValue, len(v.List))
		for i, item := range v.List {
			items[i] = marshalValue(item)
		}
		return serializedValue{Kind: "list", Value: items}
	case value.VectorKind:
		return serializedValue{Kind: "vector", Value: v.Vector}
	default:
		return serializedValue{Kind: "null"}
	}
}

func unmarshalValue(sv serializedValue) (value.Value, error) {
	switch sv.Kind {
	case "null", "":
		return value.Null, nil
	case "bool":
		b, ok := sv.Value.(bool)
		if !ok {
			return value.Value{}, fmt.Errorf("expected bool, got %T", sv.Value)
		}
		return value.Bool(b), nil
	case "number":
		f, ok := sv.Value.(float64)
		if !ok {
			return value.Value{}, fmt.Errorf("expected number, got %T", sv.Value)
		}
		return value.Number(f), nil
	case "string":
		s, ok := sv.Value.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("expected string, got %T", sv.Value)
		}
		return value.Str(s), nil
	case "datetime":
		s, ok := sv.Value.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("expected string for datetime, got %T", sv.Value)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return value.Value{}, fmt.Errorf("parsing datetime %q: %w", s, err)
		}
		return value.DateTime(t), nil
	case "list":
		raw, ok := sv.Value.([]any)
		if !ok {
			return value.Value{}, fmt.Errorf("expected list, got %T", sv.Value)
		}
		items := make([]value.Value, len(raw))
		for i, r := range raw {
			b, err := json.Marshal(r)
			if err != nil {
				return value.Value{}, err
			}
			var item serializedValue
			if err := json.Unmarshal(b, &item); err != nil {
				return value.Value{}, err
			}
			v, err := unmarshalValue(item)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.List(items), nil
	case "vector":
		raw, ok := sv.Value.([]any)
		if !ok {
			return value.Value{}, fmt.Errorf("expected vector, got %T", sv.Value)
		}
		vec := make([]float64, len(raw))
		for i, r := range raw {
			f, ok := r.(float64)
			if !ok {
				return value.Value{}, fmt.Errorf("expected number in vector, got %T", r)
			}
			vec[i] = f
		}
		return value.Vector(vec), nil
	default:
		return value.Value{}, fmt.Errorf("unknown serialized value kind %q", sv.Kind)
	}
}

func toSerializedGraph(g graph.Model) serializedGraph {
	nodes := g.GetAllNodes()
	edges := g.GetEdges()

	sNodes := make([]serializedNode, 0, len(nodes))
	for _, n := range nodes {
		sProps := make(map[string]serializedValue, len(n.Props))
		for k, v := range n.Props {
			sProps[k] = marshalValue(v)
		}
		sNodes = append(sNodes, serializedNode{
			ID:     string(n.ID),
			Labels: append([]string(nil), n.Labels...),
			Props:  sProps,
		})
	}

	sEdges := make([]serializedEdge, 0, len(edges))
	for _, e := range edges {
		sProps := make(map[string]serializedValue, len(e.Props))
		for k, v := range e.Props {
			sProps[k] = marshalValue(v)
		}
		sEdges = append(sEdges, serializedEdge{
			ID:    string(e.ID),
			From:  string(e.From),
			To:    string(e.To),
			Label: e.Label,
			Props: sProps,
		})
	}

	return serializedGraph{Nodes: sNodes, Edges: sEdges}
}

func fromSerializedGraph(sg serializedGraph) (*graph.MemGraph, error) {
	g := graph.NewMemGraph()

	for _, sn := range sg.Nodes {
		props := make(map[string]value.Value, len(sn.Props))
		for k, sv := range sn.Props {
			v, err := unmarshalValue(sv)
			if err != nil {
				return nil, fmt.Errorf("node %s prop %s: %w", sn.ID, k, err)
			}
			props[k] = v
		}
		if err := g.AddNode(graph.NodeID(sn.ID), sn.Labels, props); err != nil {
			return nil, fmt.Errorf("adding node %s: %w", sn.ID, err)
		}
	}

	for _, se := range sg.Edges {
		props := make(map[string]value.Value, len(se.Props))
		for k, sv := range se.Props {
			v, err := unmarshalValue(sv)
			if err != nil {
				return nil, fmt.Errorf("edge %s prop %s: %w", se.ID, k, err)
			}
			props[k] = v
		}
		if err := g.AddEdge(graph.EdgeID(se.ID), graph.NodeID(se.From), graph.NodeID(se.To), se.Label, props); err != nil {
			return nil, fmt.Errorf("adding edge %s: %w", se.ID, err)
		}
	}

	return g, nil
}

// WriteJSON encodes a graph to JSON and writes it to w.
func WriteJSON(g graph.Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toSerializedGraph(g))
}

// ReadJSON decodes a graph from JSON read from r.
func ReadJSON(r io.Reader) (*graph.MemGraph, error) {
	var sg serializedGraph
	if err := json.NewDecoder(r).Decode(&sg); err != nil {
		return nil, fmt.Errorf("decoding graph JSON: %w", err)
	}
	return fromSerializedGraph(sg)
}

// SaveJSON writes a graph to a JSON file at path.
func SaveJSON(g graph.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// LoadJSON reads a graph from a JSON file at path.
func LoadJSON(path string) (*graph.MemGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
