package routingalgorithm

import (
	"testing"

	"github.com/lintang-b-s/navigatorx-table/pkg/contractor"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func bidirectionalEdges(from, to datastructure.NodeID, weight datastructure.EdgeWeight) []datastructure.Edge {
	return []datastructure.Edge{
		datastructure.NewEdge(from, to, weight),
		datastructure.NewEdge(to, from, weight),
	}
}

/*
dari https://jlazarsfeld.github.io/ch.150.project/sections/8-contraction/
p=0, v=1, q=2, w=3, r=4, f=5

	 p
	  \
	   \
	    10
	     \
		  v -----3----- r
		 /            /
		6            5
	   /    		/
	  q ---5----- w ----15---- f

semua edge bidirectional
*/
func newPaperGraph() *datastructure.Graph {
	edges := []datastructure.Edge{}
	edges = append(edges, bidirectionalEdges(0, 1, 10)...)
	edges = append(edges, bidirectionalEdges(1, 4, 3)...)
	edges = append(edges, bidirectionalEdges(1, 2, 6)...)
	edges = append(edges, bidirectionalEdges(2, 3, 5)...)
	edges = append(edges, bidirectionalEdges(3, 4, 5)...)
	edges = append(edges, bidirectionalEdges(3, 5, 15)...)
	return datastructure.NewGraph(6, edges)
}

// newRandomGraph: campuran edge satu arah & dua arah, beberapa node bisa tidak terhubung.
func newRandomGraph(rnd *rand.Rand, numNodes, numEdges int) *datastructure.Graph {
	edges := make([]datastructure.Edge, 0, numEdges*2)
	for i := 0; i < numEdges; i++ {
		from := datastructure.NodeID(rnd.Intn(numNodes))
		to := datastructure.NodeID(rnd.Intn(numNodes))
		if from == to {
			continue
		}
		w := datastructure.EdgeWeight(1 + rnd.Intn(100))
		if rnd.Intn(2) == 0 {
			edges = append(edges, bidirectionalEdges(from, to, w)...)
		} else {
			edges = append(edges, datastructure.NewEdge(from, to, w))
		}
	}
	return datastructure.NewGraph(numNodes, edges)
}

func contract(t *testing.T, g *datastructure.Graph) *datastructure.QueryGraph {
	t.Helper()
	ch := contractor.NewContractedGraph(g)
	require.NoError(t, ch.Contraction())
	qg, err := ch.QueryGraph()
	require.NoError(t, err)
	return qg
}

func nodePhantoms(nodes ...datastructure.NodeID) []datastructure.PhantomNode {
	phantoms := make([]datastructure.PhantomNode, len(nodes))
	for i, n := range nodes {
		phantoms[i] = datastructure.PhantomNodeFromNode(n)
	}
	return phantoms
}

func allNodePhantoms(numNodes int) []datastructure.PhantomNode {
	nodes := make([]datastructure.NodeID, numNodes)
	for i := range nodes {
		nodes[i] = datastructure.NodeID(i)
	}
	return nodePhantoms(nodes...)
}
