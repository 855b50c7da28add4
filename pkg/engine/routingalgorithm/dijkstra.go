package routingalgorithm

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

// Dijkstra returns the distance from source to every node of the uncontracted graph.
// unreachable nodes hold InvalidEdgeWeight.
func Dijkstra(g *datastructure.Graph, source datastructure.NodeID) []datastructure.EdgeWeight {
	dist := make([]datastructure.EdgeWeight, g.NumNodes)
	for i := range dist {
		dist[i] = datastructure.InvalidEdgeWeight
	}
	entries := make(map[datastructure.NodeID]*datastructure.Entry[datastructure.NodeID])
	settled := make([]bool, g.NumNodes)

	pq := datastructure.NewFibonacciHeap[datastructure.NodeID]()
	dist[source] = 0
	entries[source] = pq.Insert(source, 0)

	for pq.Size() > 0 {
		item, err := pq.ExtractMin()
		if err != nil {
			break
		}
		u := item.GetElem()
		settled[u] = true

		for _, e := range g.OutEdges(u) {
			if settled[e.To] {
				continue
			}
			newDist := dist[u] + e.Weight
			if newDist >= dist[e.To] {
				continue
			}
			dist[e.To] = newDist
			if entry, ok := entries[e.To]; ok {
				_ = pq.DecreaseKey(entry, newDist)
			} else {
				entries[e.To] = pq.Insert(e.To, newDist)
			}
		}
	}
	return dist
}
