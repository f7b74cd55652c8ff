package graph

import goerrors "gopkg.in/src-d/go-errors.v1"

var (
	ErrNodeAlreadyExists  = goerrors.NewKind("node %v already exists")
	ErrNodeDoesNotExist   = goerrors.NewKind("node %v does not exist")
	ErrEdgeAlreadyExists  = goerrors.NewKind("edge %v already exists")
	ErrEdgeDoesNotExist   = goerrors.NewKind("edge from %v to %v does not exist")
	ErrEdgeDoesNotExistID = goerrors.NewKind("edge %v does not exist")
)

func NodeAlreadyExists(id NodeID) error { return ErrNodeAlreadyExists.New(id) }
func NodeDoesNotExist(id NodeID) error  { return ErrNodeDoesNotExist.New(id) }
func EdgeAlreadyExists(id EdgeID) error { return ErrEdgeAlreadyExists.New(id) }
func EdgeDoesNotExist(from, to NodeID) error {
	return ErrEdgeDoesNotExist.New(from, to)
}
func EdgeDoesNotExistByID(id EdgeID) error { return ErrEdgeDoesNotExistID.New(id) }
