package routingalgorithm

import (
	"fmt"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

// searchOptions toggles parts of the search. zero value = default engine behaviour.
type searchOptions struct {
	disableStall bool
}

func edgeUsable(data datastructure.EdgeData, forward bool) bool {
	if forward {
		return data.Forward
	}
	return data.Backward
}

/*
relaxOutgoingEdges. expand node yang baru di settle (jarak weight) lewat edge yang flag nya sesuai arah search.
target yang belum pernah di insert -> insert dengan parent = node,
target yang masih di heap & jarak baru lebih kecil -> decrease key + update parent.
*/
func relaxOutgoingEdges[F DataFacade](facade F, heap *datastructure.QueryHeap, node datastructure.NodeID,
	weight datastructure.EdgeWeight, forward bool) error {
	numNodes := facade.GetNumberOfNodes()
	for e := facade.BeginEdges(node); e < facade.EndEdges(node); e++ {
		data := facade.GetEdgeData(e)
		if !edgeUsable(data, forward) {
			continue
		}

		to := facade.GetTarget(e)
		if to < 0 || int(to) >= numNodes {
			return fmt.Errorf("edge %d of node %d points to node %d: %w", e, node, to, ErrNodeOutOfRange)
		}
		if data.Distance <= 0 {
			return fmt.Errorf("edge %d of node %d has weight %d: %w", e, node, data.Distance, ErrInvalidEdgeWeight)
		}

		toDistance := weight + data.Distance
		if !heap.WasInserted(to) {
			heap.Insert(to, toDistance, datastructure.HeapData{Parent: node})
			continue
		}
		if heap.WasRemoved(to) || toDistance >= heap.GetKey(to) {
			continue
		}
		heap.GetData(to).Parent = node
		if err := heap.DecreaseKey(to, toDistance); err != nil {
			return err
		}
	}
	return nil
}

// stallAtNode reports whether node is reached more cheaply from an already inserted node
// through an edge of the opposite direction. a stalled node must not be expanded.
func stallAtNode[F DataFacade](facade F, heap *datastructure.QueryHeap, node datastructure.NodeID,
	weight datastructure.EdgeWeight, forward bool) bool {
	for e := facade.BeginEdges(node); e < facade.EndEdges(node); e++ {
		data := facade.GetEdgeData(e)
		if !edgeUsable(data, !forward) {
			continue
		}
		to := facade.GetTarget(e)
		if !heap.WasInserted(to) {
			continue
		}
		if heap.GetKey(to)+data.Distance < weight {
			return true
		}
	}
	return false
}

// settleNext pops the next node, and expands it unless it is stalled.
// visit is called for every settled node (stalled or not) before expansion.
func settleNext[F DataFacade](facade F, heap *datastructure.QueryHeap, forward bool, opts searchOptions,
	visit func(node datastructure.NodeID, weight datastructure.EdgeWeight)) error {
	weight := heap.MinKey()
	node, err := heap.DeleteMin()
	if err != nil {
		return err
	}

	visit(node, weight)

	if !opts.disableStall && stallAtNode(facade, heap, node, weight, forward) {
		return nil
	}
	return relaxOutgoingEdges(facade, heap, node, weight, forward)
}

// insertPhantomNode seeds the heap with the endpoints of phantom.
// if both endpoints are the same node the smaller offset wins.
func insertPhantomNode(heap *datastructure.QueryHeap, phantom datastructure.PhantomNode, numNodes int) error {
	if !phantom.HasForward() && !phantom.HasReverse() {
		return ErrInvalidPhantomNode
	}
	if !phantom.IsValid(numNodes) {
		return fmt.Errorf("phantom node (%d, %d) with %d nodes: %w", phantom.ForwardNodeID, phantom.ReverseNodeID,
			numNodes, ErrNodeOutOfRange)
	}

	if phantom.HasForward() {
		if err := insertOrDecrease(heap, phantom.ForwardNodeID, phantom.ForwardWeight); err != nil {
			return err
		}
	}
	if phantom.HasReverse() {
		if err := insertOrDecrease(heap, phantom.ReverseNodeID, phantom.ReverseWeight); err != nil {
			return err
		}
	}
	return nil
}

func insertOrDecrease(heap *datastructure.QueryHeap, node datastructure.NodeID, key datastructure.EdgeWeight) error {
	if heap.Insert(node, key, datastructure.HeapData{Parent: node}) {
		return nil
	}
	if key >= heap.GetKey(node) {
		return nil
	}
	return heap.DecreaseKey(node, key)
}
