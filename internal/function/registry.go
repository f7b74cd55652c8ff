// Package function holds the scalar and aggregate function registry the
// executor's expression evaluator and HashAggregate operator call into.
package function

import (
	"fmt"
	"math"
	"strings"

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/ritamzico/gqlgraph/internal/value"
)

// ErrUnknownFunction is raised for any CALL-position name the registry does
// not recognise.
var ErrUnknownFunction = goerrors.NewKind("unknown function: %s")

// Scalar is a pure, row-local function: length(), toUpper(), coalesce(), ...
type Scalar func(args []value.Value) (value.Value, error)

// Aggregate accumulates values across a group. NewState starts a fresh
// accumulator; Step folds one input value in; Finish produces the result.
type Aggregate struct {
	NewState func() AggState
}

// AggState is one running aggregate computation.
type AggState interface {
	Step(v value.Value)
	Finish() value.Value
}

var scalars = map[string]Scalar{
	"LENGTH":   scalarLength,
	"TOUPPER":  scalarToUpper,
	"TOLOWER":  scalarToLower,
	"TRIM":     scalarTrim,
	"COALESCE": scalarCoalesce,
	"ABS":      scalarAbs,
	"TYPE":     scalarType,
	"LABELS":   scalarLabels,
	"ID":       scalarID,
}

var aggregates = map[string]Aggregate{
	"COUNT":   {NewState: func() AggState { return &countState{} }},
	"SUM":     {NewState: func() AggState { return &sumState{} }},
	"AVG":     {NewState: func() AggState { return &avgState{} }},
	"MIN":     {NewState: func() AggState { return &minMaxState{min: true} }},
	"MAX":     {NewState: func() AggState { return &minMaxState{min: false} }},
	"COLLECT": {NewState: func() AggState { return &collectState{} }},
}

// LookupScalar returns the scalar function registered under name
// (case-insensitive).
func LookupScalar(name string) (Scalar, bool) {
	f, ok := scalars[strings.ToUpper(name)]
	return f, ok
}

// LookupAggregate returns the aggregate registered under name
// (case-insensitive).
func LookupAggregate(name string) (Aggregate, bool) {
	a, ok := aggregates[strings.ToUpper(name)]
	return a, ok
}

// IsAggregate reports whether name names an aggregate function.
func IsAggregate(name string) bool {
	_, ok := aggregates[strings.ToUpper(name)]
	return ok
}

func scalarLength(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("LENGTH takes 1 argument")
	}
	if args[0].IsNull() {
		return value.Null, nil
	}
	switch args[0].Kind {
	case value.StringKind:
		return value.Int(int64(len(args[0].Str))), nil
	case value.ListKind:
		return value.Int(int64(len(args[0].List))), nil
	}
	return value.Null, nil
}

func scalarToUpper(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].IsNull() {
		return value.Null, nil
	}
	return value.Str(strings.ToUpper(args[0].Str)), nil
}

func scalarToLower(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].IsNull() {
		return value.Null, nil
	}
	return value.Str(strings.ToLower(args[0].Str)), nil
}

func scalarTrim(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].IsNull() {
		return value.Null, nil
	}
	return value.Str(strings.TrimSpace(args[0].Str)), nil
}

func scalarCoalesce(args []value.Value) (value.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return value.Null, nil
}

func scalarAbs(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].IsNull() {
		return value.Null, nil
	}
	return value.Number(math.Abs(args[0].Number)), nil
}

func scalarType(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind != value.EdgeKind {
		return value.Null, nil
	}
	return value.Str(args[0].Edge.Label), nil
}

func scalarLabels(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind != value.NodeKind {
		return value.Null, nil
	}
	items := make([]value.Value, len(args[0].Node.Labels))
	for i, l := range args[0].Node.Labels {
		items[i] = value.Str(l)
	}
	return value.List(items), nil
}

func scalarID(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, nil
	}
	switch args[0].Kind {
	case value.NodeKind:
		return value.Str(args[0].Node.ID), nil
	case value.EdgeKind:
		return value.Str(args[0].Edge.ID), nil
	}
	return value.Null, nil
}

type countState struct {
	n        int64
	distinct map[string]bool
}

func (s *countState) Step(v value.Value) {
	if v.IsNull() {
		return
	}
	s.n++
}
func (s *countState) Finish() value.Value { return value.Int(s.n) }

type sumState struct {
	total float64
	any   bool
}

func (s *sumState) Step(v value.Value) {
	if v.IsNull() {
		return
	}
	s.any = true
	s.total += v.Number
}
func (s *sumState) Finish() value.Value {
	if !s.any {
		return value.Null
	}
	return value.Number(s.total)
}

type avgState struct {
	total float64
	n     int64
}

func (s *avgState) Step(v value.Value) {
	if v.IsNull() {
		return
	}
	s.total += v.Number
	s.n++
}
func (s *avgState) Finish() value.Value {
	if s.n == 0 {
		return value.Null
	}
	return value.Number(s.total / float64(s.n))
}

type minMaxState struct {
	min   bool
	cur   value.Value
	found bool
}

func (s *minMaxState) Step(v value.Value) {
	if v.IsNull() {
		return
	}
	if !s.found {
		s.cur, s.found = v, true
		return
	}
	cmp, ok := value.Compare(s.cur, v)
	if !ok {
		return
	}
	if (s.min && cmp > 0) || (!s.min && cmp < 0) {
		s.cur = v
	}
}
func (s *minMaxState) Finish() value.Value {
	if !s.found {
		return value.Null
	}
	return s.cur
}

type collectState struct {
	items []value.Value
}

func (s *collectState) Step(v value.Value) {
	if v.IsNull() {
		return
	}
	s.items = append(s.items, v)
}
func (s *collectState) Finish() value.Value { return value.List(s.items) }
