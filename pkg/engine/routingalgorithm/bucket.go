package routingalgorithm

import (
	"fmt"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

/*
BucketTable. hasil backward search dari semua target:
buckets[n] = list (distance dari n ke target, target id) untuk setiap backward search yang men-settle node n.

BucketTable immutable setelah dibuat (BuildBuckets / BucketTableFromSnapshot),
jadi boleh dibaca oleh banyak forward scan secara concurrent tanpa lock.
*/
type BucketTable struct {
	numTargets uint32
	numEntries int
	buckets    [][]datastructure.NodeBucket
}

func (bt *BucketTable) NumTargets() uint32 {
	return bt.numTargets
}

func (bt *BucketTable) NumNodes() int {
	return len(bt.buckets)
}

// NumEntries returns the total number of (distance, target) pairs over all nodes.
func (bt *BucketTable) NumEntries() int {
	return bt.numEntries
}

// Bucket returns the bucket of node n. the returned slice must not be modified.
func (bt *BucketTable) Bucket(n datastructure.NodeID) []datastructure.NodeBucket {
	if n < 0 || int(n) >= len(bt.buckets) {
		return nil
	}
	return bt.buckets[n]
}

// BuildBuckets runs one backward search per target and freezes the settled nodes into a BucketTable.
func BuildBuckets[F DataFacade](facade F, pool *datastructure.HeapPool,
	targets []datastructure.PhantomNode) (*BucketTable, error) {
	return buildBuckets(facade, pool, targets, searchOptions{})
}

func buildBuckets[F DataFacade](facade F, pool *datastructure.HeapPool,
	targets []datastructure.PhantomNode, opts searchOptions) (*BucketTable, error) {
	if len(targets) == 0 {
		return nil, ErrEmptyTargets
	}
	numNodes := facade.GetNumberOfNodes()
	if pool.NumNodes() != numNodes {
		return nil, fmt.Errorf("pool for %d nodes, graph has %d nodes: %w", pool.NumNodes(), numNodes, ErrHeapPoolMismatch)
	}

	bt := &BucketTable{
		numTargets: uint32(len(targets)),
		buckets:    make([][]datastructure.NodeBucket, numNodes),
	}

	err := pool.WithHeap(func(heap *datastructure.QueryHeap) error {
		for i, target := range targets {
			if err := backwardRoutingStep(facade, heap, uint32(i), target, opts, bt); err != nil {
				return fmt.Errorf("backward search for target %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bt, nil
}

func backwardRoutingStep[F DataFacade](facade F, heap *datastructure.QueryHeap, targetID uint32,
	target datastructure.PhantomNode, opts searchOptions, bt *BucketTable) error {
	heap.Clear()
	if err := insertPhantomNode(heap, target, facade.GetNumberOfNodes()); err != nil {
		return err
	}

	for !heap.Empty() {
		err := settleNext(facade, heap, false, opts, func(node datastructure.NodeID, weight datastructure.EdgeWeight) {
			bt.buckets[node] = append(bt.buckets[node], datastructure.NewNodeBucket(targetID, weight))
			bt.numEntries++
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Snapshot flattens the table, nodes with an empty bucket are left out.
func (bt *BucketTable) Snapshot() datastructure.BucketSnapshot {
	snap := datastructure.BucketSnapshot{
		NumTargets: bt.numTargets,
		Nodes:      make([]datastructure.NodeID, 0),
		Offsets:    make([]uint32, 0),
		Buckets:    make([]datastructure.NodeBucket, 0, bt.numEntries),
	}
	for n, bucket := range bt.buckets {
		if len(bucket) == 0 {
			continue
		}
		snap.Nodes = append(snap.Nodes, datastructure.NodeID(n))
		snap.Offsets = append(snap.Offsets, uint32(len(snap.Buckets)))
		snap.Buckets = append(snap.Buckets, bucket...)
	}
	snap.Offsets = append(snap.Offsets, uint32(len(snap.Buckets)))
	return snap
}

// BucketTableFromSnapshot validates a snapshot against a graph with numNodes nodes and freezes it.
func BucketTableFromSnapshot(snap datastructure.BucketSnapshot, numNodes int) (*BucketTable, error) {
	if snap.NumTargets == 0 {
		return nil, ErrEmptyTargets
	}
	if len(snap.Offsets) != len(snap.Nodes)+1 || snap.Offsets[len(snap.Offsets)-1] != uint32(len(snap.Buckets)) {
		return nil, fmt.Errorf("bucket snapshot has %d nodes and %d offsets: %w", len(snap.Nodes), len(snap.Offsets),
			ErrCorruptSnapshot)
	}

	bt := &BucketTable{
		numTargets: snap.NumTargets,
		numEntries: len(snap.Buckets),
		buckets:    make([][]datastructure.NodeBucket, numNodes),
	}
	for i, n := range snap.Nodes {
		if n < 0 || int(n) >= numNodes {
			return nil, fmt.Errorf("bucket snapshot node %d: %w", n, ErrNodeOutOfRange)
		}
		begin, end := snap.Offsets[i], snap.Offsets[i+1]
		if begin > end || end > uint32(len(snap.Buckets)) {
			return nil, fmt.Errorf("bucket snapshot offsets %d > %d: %w", begin, end, ErrCorruptSnapshot)
		}
		bucket := snap.Buckets[begin:end:end]
		for _, b := range bucket {
			if b.TargetID >= snap.NumTargets {
				return nil, fmt.Errorf("bucket snapshot target %d of %d: %w", b.TargetID, snap.NumTargets, ErrCorruptSnapshot)
			}
		}
		bt.buckets[n] = bucket
	}
	return bt, nil
}
