package snap

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/geo"
)

var (
	ErrNoSegment = errors.New("no road segment near the location")
)

const (
	// bounding box segment di-pad sedikit biar tidak degenerate (segment lurus utara-selatan / timur-barat)
	edgeBBPadding = 1e-6
	// jumlah kandidat bounding box terdekat yang dicek jarak proyeksi nya
	nearestCandidates = 8
)

// roadSegment is the rtree leaf for one road segment. segment keeps the direction it was first seen in.
type roadSegment struct {
	segment datastructure.Edge
	bound   rtreego.Rect
	twoWay  bool
}

func (s *roadSegment) Bounds() rtreego.Rect {
	return s.bound
}

// SnapResult is a query location resolved onto the road network.
// Source is the phantom node a search starts from, Target the one a search ends at.
// both are equal on a two way segment.
type SnapResult struct {
	Source datastructure.PhantomNode
	Target datastructure.PhantomNode
	OneWay bool
	// Segment is the road segment the location was projected on, Fraction the position along it (0 = From, 1 = To).
	Segment   datastructure.Edge
	Fraction  float64
	Projected datastructure.Coordinate
	// Distance between the query location and Projected, in meters.
	Distance float64
}

type RoadSnapper struct {
	rtree       *rtreego.Rtree
	coords      []datastructure.Coordinate
	maxDistance float64
	size        int
}

/*
NewRoadSnapper. build rtree dari road segment graph asli.
segment dua arah (u,v) & (v,u) cuma di insert sekali dan ditandai twoWay.
maxDistance (meter) <= 0 artinya tidak ada batas jarak snapping.
*/
func NewRoadSnapper(coords []datastructure.Coordinate, segments []datastructure.Edge, maxDistance float64) (*RoadSnapper, error) {
	rs := &RoadSnapper{
		rtree:       rtreego.NewTree(2, 25, 50),
		coords:      coords,
		maxDistance: maxDistance,
	}

	inserted := make(map[[2]datastructure.NodeID]*roadSegment)
	for idx, segment := range segments {
		if int(segment.From) >= len(coords) || int(segment.To) >= len(coords) || segment.From < 0 || segment.To < 0 {
			return nil, fmt.Errorf("segment %d (%d -> %d) has no coordinate", idx, segment.From, segment.To)
		}
		key := [2]datastructure.NodeID{segment.From, segment.To}
		if segment.To < segment.From {
			key = [2]datastructure.NodeID{segment.To, segment.From}
		}
		if prev, ok := inserted[key]; ok {
			if prev.segment.From != segment.From {
				prev.twoWay = true
			}
			continue
		}

		bound, err := rs.segmentBound(segment)
		if err != nil {
			return nil, err
		}
		leaf := &roadSegment{segment: segment, bound: bound}
		inserted[key] = leaf
		rs.rtree.Insert(leaf)
		rs.size++

		if (idx+1)%100000 == 0 {
			log.Printf("insert road segment %d to r-tree...", idx+1)
		}
	}
	return rs, nil
}

func (rs *RoadSnapper) segmentBound(segment datastructure.Edge) (rtreego.Rect, error) {
	from := rs.coords[segment.From]
	to := rs.coords[segment.To]

	minPoint := rtreego.Point{math.Min(from.Lat, to.Lat) - edgeBBPadding, math.Min(from.Lon, to.Lon) - edgeBBPadding}
	maxPoint := rtreego.Point{math.Max(from.Lat, to.Lat) + edgeBBPadding, math.Max(from.Lon, to.Lon) + edgeBBPadding}
	return rtreego.NewRectFromPoints(minPoint, maxPoint)
}

func (rs *RoadSnapper) Size() int {
	return rs.size
}

/*
Snap. cari road segment terdekat dari (lat, lon) & buat phantom node nya.
segment (u -> v) dengan weight w dan posisi proyeksi f (0 = u, 1 = v):

	forward endpoint = v, offset = w * (1 - f)
	reverse endpoint = u, offset = w * f

segment one way: source cuma boleh keluar lewat v, target cuma boleh dicapai dari u.
*/
func (rs *RoadSnapper) Snap(lat, lon float64) (SnapResult, error) {
	if rs.size == 0 {
		return SnapResult{}, ErrNoSegment
	}
	query := datastructure.NewCoordinate(lat, lon)

	candidates := rs.rtree.NearestNeighbors(nearestCandidates, rtreego.Point{lat, lon})

	best := SnapResult{Distance: math.MaxFloat64}
	found := false
	for _, c := range candidates {
		if c == nil {
			continue
		}
		leaf := c.(*roadSegment)
		seg := leaf.segment
		projected, fraction := geo.ProjectPointToSegment(rs.coords[seg.From], rs.coords[seg.To], query)
		dist := geo.DistanceMeters(query, projected)
		if dist >= best.Distance {
			continue
		}
		found = true
		best = newSnapResult(leaf, fraction)
		best.Projected = projected
		best.Distance = dist
	}

	if !found || (rs.maxDistance > 0 && best.Distance > rs.maxDistance) {
		return SnapResult{}, fmt.Errorf("snap (%f, %f): %w", lat, lon, ErrNoSegment)
	}
	return best, nil
}

func newSnapResult(leaf *roadSegment, fraction float64) SnapResult {
	seg := leaf.segment
	forwardWeight := datastructure.EdgeWeight(math.Round(float64(seg.Weight) * (1 - fraction)))
	reverseWeight := datastructure.EdgeWeight(math.Round(float64(seg.Weight) * fraction))

	if leaf.twoWay {
		phantom := datastructure.NewPhantomNode(seg.To, seg.From, forwardWeight, reverseWeight)
		return SnapResult{Source: phantom, Target: phantom, Segment: seg, Fraction: fraction}
	}

	// titik yang tepat di atas node ujung segment juga boleh mulai/berakhir di node itu.
	source := datastructure.NewPhantomNode(seg.To, datastructure.SpecialNodeID, forwardWeight, 0)
	if reverseWeight == 0 {
		source.ReverseNodeID = seg.From
	}
	target := datastructure.NewPhantomNode(datastructure.SpecialNodeID, seg.From, 0, reverseWeight)
	if forwardWeight == 0 {
		target.ForwardNodeID = seg.To
	}
	return SnapResult{Source: source, Target: target, OneWay: true, Segment: seg, Fraction: fraction}
}

/*
DirectDistance. jarak dari `from` ke `to` kalau dua-duanya di snap ke segment yang sama,
tanpa lewat node graph. di segment one way `to` harus ada di depan `from`.
*/
func DirectDistance(from, to SnapResult) (datastructure.EdgeWeight, bool) {
	if from.Segment != to.Segment {
		return datastructure.InvalidEdgeWeight, false
	}
	delta := to.Fraction - from.Fraction
	if delta < 0 {
		if from.OneWay {
			return datastructure.InvalidEdgeWeight, false
		}
		delta = -delta
	}
	return datastructure.EdgeWeight(math.Round(delta * float64(from.Segment.Weight))), true
}
