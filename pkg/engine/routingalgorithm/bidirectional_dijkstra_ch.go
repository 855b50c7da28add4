package routingalgorithm

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

type BidirectionalDijkstraCH[F DataFacade] struct {
	facade F
	pool   *datastructure.HeapPool
	opts   searchOptions
}

func NewBidirectionalDijkstraCH[F DataFacade](facade F, pool *datastructure.HeapPool) *BidirectionalDijkstraCH[F] {
	return &BidirectionalDijkstraCH[F]{
		facade: facade,
		pool:   pool,
	}
}

/*
ShortestDistance. bidirectional dijkstra di upward graph: forward search dari source, backward search dari target,
gantian satu node per iterasi. setiap node yang di settle & sudah di insert di search arah sebaliknya
jadi kandidat meeting node: d_f(n) + d_b(n).
satu arah berhenti kalau min key heap nya >= best candidate.

return InvalidEdgeWeight kalau target tidak reachable.
*/
func (bd *BidirectionalDijkstraCH[F]) ShortestDistance(source, target datastructure.PhantomNode) (datastructure.EdgeWeight, error) {
	best := datastructure.InvalidEdgeWeight
	numNodes := bd.facade.GetNumberOfNodes()

	err := bd.pool.WithHeapPair(func(forwardHeap, backwardHeap *datastructure.QueryHeap) error {
		if err := insertPhantomNode(forwardHeap, source, numNodes); err != nil {
			return err
		}
		if err := insertPhantomNode(backwardHeap, target, numNodes); err != nil {
			return err
		}

		forwardVisit := meetingVisitor(backwardHeap, &best)
		backwardVisit := meetingVisitor(forwardHeap, &best)

		for {
			forwardDone := forwardHeap.Empty() || forwardHeap.MinKey() >= best
			backwardDone := backwardHeap.Empty() || backwardHeap.MinKey() >= best
			if forwardDone && backwardDone {
				return nil
			}

			if !forwardDone {
				if err := settleNext(bd.facade, forwardHeap, true, bd.opts, forwardVisit); err != nil {
					return err
				}
			}
			if !backwardDone {
				if err := settleNext(bd.facade, backwardHeap, false, bd.opts, backwardVisit); err != nil {
					return err
				}
			}
		}
	})
	if err != nil {
		return datastructure.InvalidEdgeWeight, err
	}
	return best, nil
}

func meetingVisitor(other *datastructure.QueryHeap, best *datastructure.EdgeWeight) func(datastructure.NodeID, datastructure.EdgeWeight) {
	return func(node datastructure.NodeID, weight datastructure.EdgeWeight) {
		if !other.WasInserted(node) {
			return
		}
		candidate := weight + other.GetKey(node)
		if candidate >= 0 && candidate < *best {
			*best = candidate
		}
	}
}
