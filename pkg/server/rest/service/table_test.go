package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lintang-b-s/navigatorx-table/pkg/contractor"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/navigatorx-table/pkg/geo"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"github.com/lintang-b-s/navigatorx-table/pkg/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSnapper puts coordinate (lat, lon) on node int(lat). negative lat is off the road network.
type fakeSnapper struct{}

func (fakeSnapper) Snap(lat, lon float64) (snap.SnapResult, error) {
	if lat < 0 {
		return snap.SnapResult{}, fmt.Errorf("snap (%f, %f): %w", lat, lon, snap.ErrNoSegment)
	}
	node := datastructure.NodeID(lat)
	phantom := datastructure.PhantomNodeFromNode(node)
	return snap.SnapResult{
		Source:  phantom,
		Target:  phantom,
		Segment: datastructure.NewEdge(node, node+1, 10),
	}, nil
}

// fakeEngine: distance(u, v) = 10 * |u - v|, node 99 is unreachable.
type fakeEngine struct {
	err error
}

func fakeDistance(s, t datastructure.PhantomNode) datastructure.EdgeWeight {
	if s.ForwardNodeID == 99 || t.ForwardNodeID == 99 {
		return datastructure.InvalidEdgeWeight
	}
	d := s.ForwardNodeID - t.ForwardNodeID
	if d < 0 {
		d = -d
	}
	return 10 * d
}

func (e *fakeEngine) NumberOfNodes() int {
	return 100
}

func (e *fakeEngine) ManyToMany(sources, targets []datastructure.PhantomNode) (*routingalgorithm.DistanceTable, error) {
	if e.err != nil {
		return nil, e.err
	}
	table := &routingalgorithm.DistanceTable{
		NumSources: len(sources),
		NumTargets: len(targets),
		Distances:  make([]datastructure.EdgeWeight, 0, len(sources)*len(targets)),
	}
	for _, s := range sources {
		for _, t := range targets {
			table.Distances = append(table.Distances, fakeDistance(s, t))
		}
	}
	return table, nil
}

func (e *fakeEngine) OneToMany(source datastructure.PhantomNode,
	targets []datastructure.PhantomNode) ([]datastructure.EdgeWeight, error) {
	if e.err != nil {
		return nil, e.err
	}
	row := make([]datastructure.EdgeWeight, len(targets))
	for i, t := range targets {
		row[i] = fakeDistance(source, t)
	}
	return row, nil
}

func (e *fakeEngine) ShortestDistance(source, target datastructure.PhantomNode) (datastructure.EdgeWeight, error) {
	if e.err != nil {
		return datastructure.InvalidEdgeWeight, e.err
	}
	return fakeDistance(source, target), nil
}

type fakePoiRouting struct {
	gotLimit datastructure.EdgeWeight
}

func (f *fakePoiRouting) OneToAll(source datastructure.PhantomNode,
	limit datastructure.EdgeWeight) (map[uint32]datastructure.EdgeWeight, error) {
	f.gotLimit = limit
	return map[uint32]datastructure.EdgeWeight{0: 300, 1: 100, 2: 100, 7: 5}, nil
}

func coordsOnNodes(nodes ...float64) []datastructure.Coordinate {
	coords := make([]datastructure.Coordinate, len(nodes))
	for i, n := range nodes {
		coords[i] = datastructure.NewCoordinate(n, 110)
	}
	return coords
}

func newFakeService(poi PoiRouting) *TableService {
	pois := []datastructure.Poi{
		{OsmID: 30, Amenity: "school"},
		{OsmID: 20, Amenity: "hospital"},
		{OsmID: 10, Amenity: "cafe"},
	}
	return NewTableService(&fakeEngine{}, fakeSnapper{}, poi, pois, 4, 5000, 2)
}

func TestTable(t *testing.T) {
	svc := newFakeService(nil)

	table, err := svc.Table(context.Background(), coordsOnNodes(1, 3, 6), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, table.NumSources)
	assert.Equal(t, 3, table.NumTargets)
	assert.Equal(t, []datastructure.EdgeWeight{0, 20, 50, 20, 0, 30, 50, 30, 0}, table.Distances)

	table, err = svc.Table(context.Background(), coordsOnNodes(1, 3, 6), []int{2}, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, []datastructure.EdgeWeight{50, 30}, table.Distances)
}

func TestTableErrors(t *testing.T) {
	svc := newFakeService(nil)
	ctx := context.Background()

	_, err := svc.Table(ctx, nil, nil, nil)
	assert.Equal(t, server.ErrBadParamInput, server.CodeOf(err))

	_, err = svc.Table(ctx, coordsOnNodes(1, 2, 3, 4, 5), nil, nil)
	assert.Equal(t, server.ErrBadParamInput, server.CodeOf(err))

	_, err = svc.Table(ctx, coordsOnNodes(1, 2), []int{2}, nil)
	assert.Equal(t, server.ErrBadParamInput, server.CodeOf(err))

	_, err = svc.Table(ctx, coordsOnNodes(1, 2), nil, []int{-1})
	assert.Equal(t, server.ErrBadParamInput, server.CodeOf(err))

	_, err = svc.Table(ctx, coordsOnNodes(1, -2, -3), nil, nil)
	assert.Equal(t, server.ErrNotFound, server.CodeOf(err))
	assert.ErrorIs(t, err, snap.ErrNoSegment)
	assert.Contains(t, err.Error(), "coordinate 1")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Table(cancelled, coordsOnNodes(1, 2), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)

	engineErr := errors.New("boom")
	broken := NewTableService(&fakeEngine{err: engineErr}, fakeSnapper{}, nil, nil, 4, 5000, 2)
	_, err = broken.Table(ctx, coordsOnNodes(1, 2), nil, nil)
	assert.Equal(t, server.ErrInternalServerError, server.CodeOf(err))
	assert.ErrorIs(t, err, engineErr)
}

func TestOneToMany(t *testing.T) {
	svc := newFakeService(nil)

	rows, err := svc.OneToMany(context.Background(), coordsOnNodes(2, 5, 99))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, datastructure.EdgeWeight(0), rows[0].Distance)
	assert.Equal(t, 0.0, rows[0].AirDistance)
	assert.Equal(t, datastructure.EdgeWeight(30), rows[1].Distance)
	assert.Equal(t, datastructure.NewCoordinate(5, 110), rows[1].Coord)
	assert.InDelta(t, 333585, rows[1].AirDistance, 500)
	assert.Equal(t, datastructure.InvalidEdgeWeight, rows[2].Distance)

	// dipotong ke max locations
	rows, err = svc.OneToMany(context.Background(), coordsOnNodes(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	_, err = svc.OneToMany(context.Background(), coordsOnNodes(1))
	assert.Equal(t, server.ErrBadParamInput, server.CodeOf(err))
}

func TestPoiTable(t *testing.T) {
	poi := &fakePoiRouting{}
	svc := newFakeService(poi)

	rows, err := svc.PoiTable(context.Background(), datastructure.NewCoordinate(1, 110), 0)
	require.NoError(t, err)
	assert.Equal(t, datastructure.EdgeWeight(5000), poi.gotLimit)

	// target 7 has no poi, ties are ordered by osm id
	require.Len(t, rows, 3)
	assert.Equal(t, int64(10), rows[0].Poi.OsmID)
	assert.Equal(t, int64(20), rows[1].Poi.OsmID)
	assert.Equal(t, int64(30), rows[2].Poi.OsmID)
	assert.Equal(t, datastructure.EdgeWeight(100), rows[0].Distance)
	assert.Equal(t, datastructure.EdgeWeight(300), rows[2].Distance)

	_, err = svc.PoiTable(context.Background(), datastructure.NewCoordinate(1, 110), 42)
	require.NoError(t, err)
	assert.Equal(t, datastructure.EdgeWeight(42), poi.gotLimit)

	noPoi := newFakeService(nil)
	_, err = noPoi.PoiTable(context.Background(), datastructure.NewCoordinate(1, 110), 0)
	assert.Equal(t, server.ErrNotFound, server.CodeOf(err))
}

/*
integration: jalan lurus dua arah di ekuator, 0.001 derajat per segment.

	0 ---- 1 ---- 2 ---- 3
*/
func TestTableServiceOnContractedGraph(t *testing.T) {
	coords := []datastructure.Coordinate{
		datastructure.NewCoordinate(0, 0),
		datastructure.NewCoordinate(0, 0.001),
		datastructure.NewCoordinate(0, 0.002),
		datastructure.NewCoordinate(0, 0.003),
	}
	w := geo.EdgeWeightFromKM(geo.CalculateHaversineDistance(0, 0, 0, 0.001))
	edges := make([]datastructure.Edge, 0)
	for i := 0; i < 3; i++ {
		u, v := datastructure.NodeID(i), datastructure.NodeID(i+1)
		edges = append(edges, datastructure.NewEdge(u, v, w), datastructure.NewEdge(v, u, w))
	}

	ch := contractor.NewContractedGraph(datastructure.NewGraph(len(coords), edges))
	require.NoError(t, ch.Contraction())
	qg, err := ch.QueryGraph()
	require.NoError(t, err)

	engine := routingalgorithm.NewSearchEngine(qg, 2)
	snapper, err := snap.NewRoadSnapper(coords, edges, 100)
	require.NoError(t, err)

	poiRouting, err := engine.NewPoiRouting([]datastructure.PhantomNode{
		datastructure.PhantomNodeFromNode(3),
		datastructure.PhantomNodeFromNode(1),
	})
	require.NoError(t, err)
	pois := []datastructure.Poi{{OsmID: 3, Amenity: "hospital"}, {OsmID: 1, Amenity: "cafe"}}

	svc := NewTableService(engine, snapper, poiRouting, pois, 10, 5000, 2)

	table, err := svc.Table(context.Background(), coords, nil, nil)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			assert.Equal(t, datastructure.EdgeWeight(d)*w, table.At(i, j), "%d -> %d", i, j)
		}
	}

	rows, err := svc.PoiTable(context.Background(), coords[0], 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Poi.OsmID)
	assert.Equal(t, w, rows[0].Distance)
	assert.Equal(t, 3*w, rows[1].Distance)

	// poi 3 lebih jauh dari limit
	rows, err = svc.PoiTable(context.Background(), coords[0], 2*w)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Poi.OsmID)

	_, err = svc.Table(context.Background(), []datastructure.Coordinate{datastructure.NewCoordinate(1, 1)}, nil, nil)
	assert.Equal(t, server.ErrNotFound, server.CodeOf(err))
}

func TestDistance(t *testing.T) {
	svc := newFakeService(nil)
	ctx := context.Background()

	d, err := svc.Distance(ctx, datastructure.NewCoordinate(2, 110), datastructure.NewCoordinate(7, 110))
	require.NoError(t, err)
	assert.Equal(t, datastructure.EdgeWeight(50), d)

	d, err = svc.Distance(ctx, datastructure.NewCoordinate(2, 110), datastructure.NewCoordinate(99, 110))
	require.NoError(t, err)
	assert.Equal(t, datastructure.InvalidEdgeWeight, d)

	_, err = svc.Distance(ctx, datastructure.NewCoordinate(2, 110), datastructure.NewCoordinate(-1, 110))
	assert.Equal(t, server.ErrNotFound, server.CodeOf(err))

	broken := NewTableService(&fakeEngine{err: errors.New("boom")}, fakeSnapper{}, nil, nil, 4, 5000, 2)
	_, err = broken.Distance(ctx, datastructure.NewCoordinate(2, 110), datastructure.NewCoordinate(7, 110))
	assert.Equal(t, server.ErrInternalServerError, server.CodeOf(err))
}

/*
jalan satu arah 0 -> 1 (100), jalan balik cuma lewat 1 -> 2 -> 0 (1000 per segment).

	      2
	     / \
	    0 -> 1

titik q di tengah 0 -> 1 tidak boleh mundur ke 0, dan tidak bisa dicapai langsung dari 1.
*/
func TestTableServiceOneWaySegment(t *testing.T) {
	coords := []datastructure.Coordinate{
		datastructure.NewCoordinate(0, 0),
		datastructure.NewCoordinate(0, 0.001),
		datastructure.NewCoordinate(0.001, 0.0005),
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 1, 100),
		datastructure.NewEdge(1, 2, 1000),
		datastructure.NewEdge(2, 0, 1000),
	}

	ch := contractor.NewContractedGraph(datastructure.NewGraph(len(coords), edges))
	require.NoError(t, ch.Contraction())
	qg, err := ch.QueryGraph()
	require.NoError(t, err)

	engine := routingalgorithm.NewSearchEngine(qg, 2)
	snapper, err := snap.NewRoadSnapper(coords, edges, 100)
	require.NoError(t, err)
	svc := NewTableService(engine, snapper, nil, nil, 10, 5000, 2)
	ctx := context.Background()

	q := datastructure.NewCoordinate(0, 0.0005)
	q2 := datastructure.NewCoordinate(0, 0.00075)
	locations := []datastructure.Coordinate{q, coords[0], coords[1], q2}

	table, err := svc.Table(ctx, locations, []int{0, 2, 3}, []int{1, 0, 3})
	require.NoError(t, err)
	assert.Equal(t, datastructure.EdgeWeight(2050), table.At(0, 0), "q -> 0")
	assert.Equal(t, datastructure.EdgeWeight(0), table.At(0, 1), "q -> q")
	assert.Equal(t, datastructure.EdgeWeight(25), table.At(0, 2), "q -> q2")
	assert.Equal(t, datastructure.EdgeWeight(2000), table.At(1, 0), "1 -> 0")
	assert.Equal(t, datastructure.EdgeWeight(2050), table.At(1, 1), "1 -> q")
	assert.Equal(t, datastructure.EdgeWeight(2075), table.At(2, 1), "q2 -> q")

	d, err := svc.Distance(ctx, q, coords[0])
	require.NoError(t, err)
	assert.Equal(t, datastructure.EdgeWeight(2050), d)
	d, err = svc.Distance(ctx, coords[1], q)
	require.NoError(t, err)
	assert.Equal(t, datastructure.EdgeWeight(2050), d)

	rows, err := svc.OneToMany(ctx, []datastructure.Coordinate{q, coords[0], coords[1]})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, datastructure.EdgeWeight(0), rows[0].Distance)
	assert.Equal(t, datastructure.EdgeWeight(2050), rows[1].Distance)
	assert.Equal(t, datastructure.EdgeWeight(50), rows[2].Distance)
}
