package contractor

import (
	"log"
	"math"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"
)

// SCC holds the strongly connected components of a road graph.
type SCC struct {
	Component       []int32 // node -> component id
	Sizes           []int32
	CondensationAdj [][]int32
}

/*
KosarajuSCC. dfs pertama di graph asli untuk dapat finishing order,
dfs kedua di reversed graph dengan urutan finishing order terbalik, setiap tree = satu scc.
*/
func KosarajuSCC(g *datastructure.Graph) *SCC {
	n := int32(g.NumNodes)
	components := make([][]int32, 0)

	reversedEdges := make([]datastructure.Edge, len(g.Edges))
	for i, e := range g.Edges {
		reversedEdges[i] = datastructure.NewEdge(e.To, e.From, e.Weight)
	}
	reversed := datastructure.NewGraph(g.NumNodes, reversedEdges)

	order := make([]int32, 0, n)
	visited := make([]bool, n)

	for i := int32(0); i < n; i++ {
		if !visited[i] {
			dfs(g, i, &order, visited)
		}
	}

	order = util.ReverseG(order)

	// reset visited
	visited = make([]bool, n)

	roots := make([]int32, n)

	for _, v := range order {
		if !visited[v] {
			component := make([]int32, 0)
			dfs(reversed, v, &component, visited)
			components = append(components, component)
			root := int32(math.MaxInt32)
			for _, node := range component {
				if node < root {
					root = node
				}
			}

			for _, node := range component {
				roots[node] = root
			}
		}
	}

	log.Printf("Strongly Connected Components Count: %d\n", len(components))

	scc := &SCC{
		Component: make([]int32, n),
		Sizes:     make([]int32, len(components)),
	}
	for i, component := range components {
		for _, v := range component {
			scc.Component[v] = int32(i)
		}
		scc.Sizes[i] = int32(len(component))
	}

	// add edges to condensation graph
	scc.CondensationAdj = make([][]int32, len(components))
	seen := make(map[[2]int32]struct{})
	for v := int32(0); v < n; v++ {
		for _, e := range g.OutEdges(v) {
			if roots[v] == roots[e.To] {
				continue
			}
			key := [2]int32{scc.Component[v], scc.Component[e.To]}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			scc.CondensationAdj[key[0]] = append(scc.CondensationAdj[key[0]], key[1])
		}
	}

	return scc
}

// LargestComponent returns the id of the component with the most nodes.
func (s *SCC) LargestComponent() int32 {
	largest := int32(0)
	for i, size := range s.Sizes {
		if size > s.Sizes[largest] {
			largest = int32(i)
		}
	}
	return largest
}

func (s *SCC) InLargestComponent(nodeID datastructure.NodeID) bool {
	if len(s.Sizes) == 0 {
		return false
	}
	return s.Component[nodeID] == s.LargestComponent()
}

func dfs(g *datastructure.Graph, v int32, output *[]int32, visited []bool) {
	visited[v] = true

	for _, e := range g.OutEdges(v) {
		if !visited[e.To] {
			dfs(g, e.To, output, visited)
		}
	}

	*output = append(*output, v)
}
