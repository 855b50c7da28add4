package datastructure

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Graph is the original road network in CSR (compressed sparse row) format.
// Edges[FirstOut[u]:FirstOut[u+1]] are the outgoing edges of u.
type Graph struct {
	NumNodes int
	FirstOut []int32
	Edges    []Edge
}

func NewGraph(numNodes int, edges []Edge) *Graph {
	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From < sorted[j].From
	})

	firstOut := make([]int32, numNodes+1)
	for _, e := range sorted {
		firstOut[e.From+1]++
	}
	for i := 1; i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	return &Graph{
		NumNodes: numNodes,
		FirstOut: firstOut,
		Edges:    sorted,
	}
}

func (g *Graph) OutEdges(u NodeID) []Edge {
	return g.Edges[g.FirstOut[u]:g.FirstOut[u+1]]
}

// ContractedEdge is a query edge together with the node it is stored at.
type ContractedEdge struct {
	Source NodeID
	Edge   QueryEdge
}

// QueryGraph is the static contracted graph read by the search engine.
// every edge is stored at its lower ranked endpoint, so all searches only go upward.
type QueryGraph struct {
	FirstOut    []EdgeID
	Edges       []QueryEdge
	Rank        []int32
	Coordinates []Coordinate
	// Segments are the original road segments, kept for snapping query coordinates.
	Segments []Edge
	Checksum uint64
}

func NewQueryGraph(numNodes int, edges []ContractedEdge, rank []int32) *QueryGraph {
	sorted := make([]ContractedEdge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Source < sorted[j].Source
	})

	firstOut := make([]EdgeID, numNodes+1)
	queryEdges := make([]QueryEdge, len(sorted))
	for i, e := range sorted {
		firstOut[e.Source+1]++
		queryEdges[i] = e.Edge
	}
	for i := 1; i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	g := &QueryGraph{
		FirstOut: firstOut,
		Edges:    queryEdges,
		Rank:     rank,
	}
	g.Checksum = g.computeChecksum()
	return g
}

func (g *QueryGraph) SetGeometry(coords []Coordinate, segments []Edge) {
	g.Coordinates = coords
	g.Segments = segments
}

func (g *QueryGraph) GetNumberOfNodes() int {
	return len(g.FirstOut) - 1
}

func (g *QueryGraph) GetNumberOfEdges() int {
	return len(g.Edges)
}

func (g *QueryGraph) BeginEdges(n NodeID) EdgeID {
	return g.FirstOut[n]
}

func (g *QueryGraph) EndEdges(n NodeID) EdgeID {
	return g.FirstOut[n+1]
}

func (g *QueryGraph) GetTarget(e EdgeID) NodeID {
	return g.Edges[e].Target
}

func (g *QueryGraph) GetEdgeData(e EdgeID) EdgeData {
	return g.Edges[e].Data
}

func (g *QueryGraph) GetCoordinate(n NodeID) Coordinate {
	return g.Coordinates[n]
}

func (g *QueryGraph) GetChecksum() uint64 {
	return g.Checksum
}

// computeChecksum hashes the topology + weights, dipakai buat key cache bucket table.
func (g *QueryGraph) computeChecksum() uint64 {
	h := xxhash.New()
	buf := make([]byte, 12)
	for _, off := range g.FirstOut {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(off))
		h.Write(buf[0:4])
	}
	for _, e := range g.Edges {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(e.Target))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(e.Data.Distance))
		flags := uint32(0)
		if e.Data.Forward {
			flags |= 1
		}
		if e.Data.Backward {
			flags |= 2
		}
		binary.LittleEndian.PutUint32(buf[8:12], flags)
		h.Write(buf)
	}
	return h.Sum64()
}
