package datastructure

import "math"

type NodeID = int32
type EdgeID = int32
type EdgeWeight = int32

const (
	// SpecialNodeID menandakan endpoint yang tidak ada (mis. phantom node di segment satu arah)
	SpecialNodeID NodeID = -1

	// InvalidEdgeWeight dipakai sebagai jarak "unreachable" di distance table
	InvalidEdgeWeight EdgeWeight = math.MaxInt32
)

// Edge is a directed edge of the original (uncontracted) road network.
type Edge struct {
	From   NodeID
	To     NodeID
	Weight EdgeWeight
}

func NewEdge(from, to NodeID, weight EdgeWeight) Edge {
	return Edge{
		From:   from,
		To:     to,
		Weight: weight,
	}
}

// EdgeData is the payload of a contracted graph edge.
// Forward: edge usable by the forward (upward from source) search.
// Backward: edge usable by the backward (upward from target) search.
type EdgeData struct {
	Distance EdgeWeight
	Via      NodeID
	Forward  bool
	Backward bool
	Shortcut bool
}

type QueryEdge struct {
	Target NodeID
	Data   EdgeData
}

func NewQueryEdge(target NodeID, distance EdgeWeight, forward, backward, shortcut bool, via NodeID) QueryEdge {
	return QueryEdge{
		Target: target,
		Data: EdgeData{
			Distance: distance,
			Via:      via,
			Forward:  forward,
			Backward: backward,
			Shortcut: shortcut,
		},
	}
}

// PhantomNode is a query point anchored on a road segment.
// ForwardNodeID/ForwardWeight: segment head and the partial distance between the point and it.
// ReverseNodeID/ReverseWeight: segment tail and the partial distance between the point and it.
type PhantomNode struct {
	ForwardNodeID NodeID
	ReverseNodeID NodeID
	ForwardWeight EdgeWeight
	ReverseWeight EdgeWeight
}

func NewPhantomNode(forwardNodeID, reverseNodeID NodeID, forwardWeight, reverseWeight EdgeWeight) PhantomNode {
	return PhantomNode{
		ForwardNodeID: forwardNodeID,
		ReverseNodeID: reverseNodeID,
		ForwardWeight: forwardWeight,
		ReverseWeight: reverseWeight,
	}
}

// PhantomNodeFromNode anchors a phantom node exactly on a graph node.
func PhantomNodeFromNode(nodeID NodeID) PhantomNode {
	return PhantomNode{
		ForwardNodeID: nodeID,
		ReverseNodeID: SpecialNodeID,
	}
}

func (p PhantomNode) HasForward() bool {
	return p.ForwardNodeID != SpecialNodeID
}

func (p PhantomNode) HasReverse() bool {
	return p.ReverseNodeID != SpecialNodeID
}

func (p PhantomNode) IsValid(numberOfNodes int) bool {
	if !p.HasForward() && !p.HasReverse() {
		return false
	}
	if p.HasForward() && (p.ForwardNodeID < 0 || int(p.ForwardNodeID) >= numberOfNodes) {
		return false
	}
	if p.HasReverse() && (p.ReverseNodeID < 0 || int(p.ReverseNodeID) >= numberOfNodes) {
		return false
	}
	return true
}

// NodeBucket is one entry of a node's bucket: a backward search from target TargetID settled the node at Distance.
type NodeBucket struct {
	TargetID uint32
	Distance EdgeWeight
}

func NewNodeBucket(targetID uint32, distance EdgeWeight) NodeBucket {
	return NodeBucket{
		TargetID: targetID,
		Distance: distance,
	}
}

// BucketSnapshot is the flattened form of a frozen bucket table, used for persistence.
// Buckets[Offsets[i]:Offsets[i+1]] belong to Nodes[i].
type BucketSnapshot struct {
	NumTargets uint32
	Nodes      []NodeID
	Offsets    []uint32
	Buckets    []NodeBucket
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

func NewCoordinates(lat, lon []float64) []Coordinate {
	coords := make([]Coordinate, len(lat))
	for i := range lat {
		coords[i] = NewCoordinate(lat[i], lon[i])
	}
	return coords
}

// Poi is a point of interest extracted from openstreetmap amenity nodes.
type Poi struct {
	OsmID   int64
	Lat     float64
	Lon     float64
	Amenity string
	Name    string
}
