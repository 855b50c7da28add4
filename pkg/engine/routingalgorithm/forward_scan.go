package routingalgorithm

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

// NoDistanceLimit disables the distance limit of a forward scan.
const NoDistanceLimit = datastructure.InvalidEdgeWeight

// distanceRecorder collects the best distance per target id found by a forward scan.
type distanceRecorder interface {
	best(targetID uint32) datastructure.EdgeWeight
	record(targetID uint32, distance datastructure.EdgeWeight)
}

// denseRow is one row of a row-major distance matrix. unreachable = InvalidEdgeWeight.
type denseRow []datastructure.EdgeWeight

func (r denseRow) best(targetID uint32) datastructure.EdgeWeight {
	return r[targetID]
}

func (r denseRow) record(targetID uint32, distance datastructure.EdgeWeight) {
	r[targetID] = distance
}

// sparseResult only holds reached targets.
type sparseResult map[uint32]datastructure.EdgeWeight

func (r sparseResult) best(targetID uint32) datastructure.EdgeWeight {
	d, ok := r[targetID]
	if !ok {
		return datastructure.InvalidEdgeWeight
	}
	return d
}

func (r sparseResult) record(targetID uint32, distance datastructure.EdgeWeight) {
	r[targetID] = distance
}

/*
forwardRoutingStep. upward forward search dari source, setiap node yang di settle dicek bucket nya:

	candidate = d(source, n) + d(n, target)

candidate dicatat kalau >= 0 (int32 overflow), lebih kecil dari best saat ini, dan <= limit.
limit cuma filter hasil, search tetap jalan sampai heap kosong.
*/
func forwardRoutingStep[F DataFacade](facade F, heap *datastructure.QueryHeap, table *BucketTable,
	source datastructure.PhantomNode, limit datastructure.EdgeWeight, opts searchOptions, result distanceRecorder) error {
	if table == nil {
		return ErrBucketsNotBuilt
	}

	heap.Clear()
	if err := insertPhantomNode(heap, source, facade.GetNumberOfNodes()); err != nil {
		return err
	}

	visit := func(node datastructure.NodeID, weight datastructure.EdgeWeight) {
		for _, b := range table.Bucket(node) {
			candidate := weight + b.Distance
			if candidate < 0 || candidate > limit {
				continue
			}
			if candidate < result.best(b.TargetID) {
				result.record(b.TargetID, candidate)
			}
		}
	}

	for !heap.Empty() {
		if err := settleNext(facade, heap, true, opts, visit); err != nil {
			return err
		}
	}
	return nil
}
