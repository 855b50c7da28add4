package routingalgorithm

import (
	"errors"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

// DataFacade is the read-only view of the contracted graph the search engine runs on.
type DataFacade interface {
	GetNumberOfNodes() int
	BeginEdges(n datastructure.NodeID) datastructure.EdgeID
	EndEdges(n datastructure.NodeID) datastructure.EdgeID
	GetTarget(e datastructure.EdgeID) datastructure.NodeID
	GetEdgeData(e datastructure.EdgeID) datastructure.EdgeData
}

var (
	ErrEmptyTargets       = errors.New("target set is empty")
	ErrEmptySources       = errors.New("source set is empty")
	ErrInvalidPhantomNode = errors.New("phantom node has neither a forward nor a reverse endpoint")
	ErrBucketsNotBuilt    = errors.New("bucket table has not been built")
	ErrInvalidEdgeWeight  = errors.New("edge weight must be positive")
	ErrNodeOutOfRange     = errors.New("node id out of range")
	ErrHeapPoolMismatch   = errors.New("heap pool size does not match the graph")
	ErrCorruptSnapshot    = errors.New("corrupt bucket snapshot")
)
