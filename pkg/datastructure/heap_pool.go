package datastructure

import "sync"

// HeapPool hands out QueryHeaps sized to the graph's node count.
// a heap is owned by exactly one worker between Acquire and Release, and is
// cleared (not reallocated) before it is handed out again.
type HeapPool struct {
	numNodes int
	pool     sync.Pool
}

func NewHeapPool(numNodes int) *HeapPool {
	hp := &HeapPool{numNodes: numNodes}
	hp.pool.New = func() any {
		return NewQueryHeap(numNodes)
	}
	return hp
}

func (hp *HeapPool) NumNodes() int {
	return hp.numNodes
}

// Acquire returns an empty heap that is able to index every node of the graph.
func (hp *HeapPool) Acquire() *QueryHeap {
	h := hp.pool.Get().(*QueryHeap)
	if h.Capacity() != hp.numNodes {
		return NewQueryHeap(hp.numNodes)
	}
	h.Clear()
	return h
}

func (hp *HeapPool) Release(h *QueryHeap) {
	if h == nil || h.Capacity() != hp.numNodes {
		return
	}
	h.Clear()
	hp.pool.Put(h)
}

// WithHeap runs fn with a heap acquired from the pool and returns the heap afterwards.
func (hp *HeapPool) WithHeap(fn func(h *QueryHeap) error) error {
	h := hp.Acquire()
	defer hp.Release(h)
	return fn(h)
}

// WithHeapPair is WithHeap for searches that need a forward and a backward heap.
func (hp *HeapPool) WithHeapPair(fn func(forward, backward *QueryHeap) error) error {
	forward := hp.Acquire()
	defer hp.Release(forward)
	backward := hp.Acquire()
	defer hp.Release(backward)
	return fn(forward, backward)
}
