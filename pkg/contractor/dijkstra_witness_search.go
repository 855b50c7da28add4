package contractor

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

/*
dijkstraWitnessSearch
misal kita kontraksi node v (ignoreNodeID), kita cari shortest path dari node u ke semua node w yang terhubung dari v,
path nya tidak boleh lewat v. return jarak dari u ke setiap node yang sudah di settle / di insert.
search dihentikan jika current node cost nya > acceptedWeight atau sudah settle maxSettledNodes node.

O(VlogV+E) karena pakai fibonacci heap
*/
func (ch *ContractedGraph) dijkstraWitnessSearch(fromNodeID, ignoreNodeID datastructure.NodeID,
	acceptedWeight datastructure.EdgeWeight, maxSettledNodes int) map[datastructure.NodeID]datastructure.EdgeWeight {

	visited := make(map[datastructure.NodeID]bool)
	cost := make(map[datastructure.NodeID]datastructure.EdgeWeight)
	entryMap := make(map[datastructure.NodeID]*datastructure.Entry[datastructure.NodeID])

	pq := datastructure.NewFibonacciHeap[datastructure.NodeID]()
	entryMap[fromNodeID] = pq.Insert(fromNodeID, 0)
	cost[fromNodeID] = 0

	settledNodes := 0
	for pq.Size() > 0 && settledNodes < maxSettledNodes {
		if pq.GetMinRank() > acceptedWeight {
			break
		}

		currItem, err := pq.ExtractMin()
		if err != nil {
			break
		}
		curr := currItem.GetElem()
		visited[curr] = true

		for _, neighbor := range ch.outEdges[curr] {
			if visited[neighbor.to] || neighbor.to == ignoreNodeID || ch.contracted[neighbor.to] {
				continue
			}

			newCost := cost[curr] + neighbor.weight

			oldCost, ok := cost[neighbor.to]
			if !ok {
				cost[neighbor.to] = newCost
				entryMap[neighbor.to] = pq.Insert(neighbor.to, newCost)
			} else if newCost < oldCost {
				cost[neighbor.to] = newCost
				_ = pq.DecreaseKey(entryMap[neighbor.to], newCost)
			}
		}

		settledNodes++
	}
	return cost
}
