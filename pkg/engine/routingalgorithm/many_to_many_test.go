package routingalgorithm

import (
	"testing"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestManyToManyABC(t *testing.T) {
	g := newABCGraph()
	pool := datastructure.NewHeapPool(g.GetNumberOfNodes())
	r := NewManyToManyRouting(g, pool, 2)

	table, err := r.ManyToMany(nodePhantoms(0, 2), nodePhantoms(2, 3, 0))
	require.NoError(t, err)

	assert.Equal(t, 2, table.NumSources)
	assert.Equal(t, 3, table.NumTargets)
	assert.Equal(t, []datastructure.EdgeWeight{
		5, datastructure.InvalidEdgeWeight, 0,
		0, datastructure.InvalidEdgeWeight, 5,
	}, table.Distances)
	assert.Equal(t, datastructure.EdgeWeight(5), table.At(1, 2))
}

func TestOneToManyDisconnectedTarget(t *testing.T) {
	g := newABCGraph()
	r := NewManyToManyRouting(g, datastructure.NewHeapPool(g.GetNumberOfNodes()), 1)

	row, err := r.OneToMany(datastructure.PhantomNodeFromNode(0), nodePhantoms(3))
	require.NoError(t, err)
	assert.Equal(t, []datastructure.EdgeWeight{datastructure.InvalidEdgeWeight}, row)
}

func TestManyToManyErrorsReturnNoTable(t *testing.T) {
	g := newABCGraph()
	r := NewManyToManyRouting(g, datastructure.NewHeapPool(g.GetNumberOfNodes()), 4)

	table, err := r.ManyToMany(nodePhantoms(0), nil)
	assert.ErrorIs(t, err, ErrEmptyTargets)
	assert.Nil(t, table)

	table, err = r.ManyToMany(nil, nodePhantoms(0))
	assert.ErrorIs(t, err, ErrEmptySources)
	assert.Nil(t, table)

	invalid := datastructure.NewPhantomNode(datastructure.SpecialNodeID, datastructure.SpecialNodeID, 0, 0)
	table, err = r.ManyToMany([]datastructure.PhantomNode{datastructure.PhantomNodeFromNode(0), invalid}, nodePhantoms(2))
	assert.ErrorIs(t, err, ErrInvalidPhantomNode)
	assert.Nil(t, table)

	table, err = r.ManyToManyWithBuckets(nodePhantoms(0), nil)
	assert.ErrorIs(t, err, ErrBucketsNotBuilt)
	assert.Nil(t, table)
}

func TestManyToManyPhantomOffsets(t *testing.T) {
	g := contract(t, newPaperGraph())
	r := NewManyToManyRouting(g, datastructure.NewHeapPool(g.GetNumberOfNodes()), 2)

	// titik di tengah segment v-r (3): 1 dari v, 2 dari r
	onVR := datastructure.NewPhantomNode(4, 1, 2, 1)

	row, err := r.OneToMany(onVR, nodePhantoms(0, 3, 5))
	require.NoError(t, err)
	// p: 1 + 10, w: 2 + 5, f: 2 + 5 + 15
	assert.Equal(t, []datastructure.EdgeWeight{11, 7, 22}, row)

	row, err = r.OneToMany(datastructure.PhantomNodeFromNode(0), []datastructure.PhantomNode{onVR})
	require.NoError(t, err)
	assert.Equal(t, []datastructure.EdgeWeight{11}, row)
}

func TestManyToManyMatchesDijkstra(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for round := 0; round < 5; round++ {
		n := 40 + rnd.Intn(40)
		g := newRandomGraph(rnd, n, 3*n)
		qg := contract(t, g)
		pool := datastructure.NewHeapPool(n)

		withStall := NewManyToManyRouting(qg, pool, 4)
		withoutStall := NewManyToManyRouting(qg, pool, 4)
		withoutStall.opts = searchOptions{disableStall: true}

		phantoms := allNodePhantoms(n)
		table, err := withStall.ManyToMany(phantoms, phantoms)
		require.NoError(t, err)
		tableNoStall, err := withoutStall.ManyToMany(phantoms, phantoms)
		require.NoError(t, err)

		assert.Equal(t, tableNoStall.Distances, table.Distances)

		for s := 0; s < n; s++ {
			expected := Dijkstra(g, datastructure.NodeID(s))
			assert.Equal(t, expected, table.Row(s), "round %d source %d", round, s)
		}
	}
}

func TestShortestDistanceMatchesDijkstra(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	n := 60
	g := newRandomGraph(rnd, n, 150)
	qg := contract(t, g)
	bd := NewBidirectionalDijkstraCH(qg, datastructure.NewHeapPool(n))

	for s := 0; s < n; s += 3 {
		expected := Dijkstra(g, datastructure.NodeID(s))
		for tt := 0; tt < n; tt++ {
			d, err := bd.ShortestDistance(datastructure.PhantomNodeFromNode(datastructure.NodeID(s)),
				datastructure.PhantomNodeFromNode(datastructure.NodeID(tt)))
			require.NoError(t, err)
			assert.Equal(t, expected[tt], d, "s=%d t=%d", s, tt)
		}
	}
}

func TestDijkstraPaperGraph(t *testing.T) {
	dist := Dijkstra(newPaperGraph(), 0)
	assert.Equal(t, []datastructure.EdgeWeight{0, 10, 16, 18, 13, 33}, dist)
}
