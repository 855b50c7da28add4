package datastructure

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyHeap       = errors.New("heap is empty")
	ErrNodeNotInHeap   = errors.New("node is not in the heap")
	ErrKeyNotDecreased = errors.New("new key must be less than the current key")
)

// HeapData is the auxiliary data attached to every inserted node.
type HeapData struct {
	Parent NodeID
}

type heapEntry struct {
	node NodeID
	key  EdgeWeight
	// position in the binary heap, -1 if already removed (settled)
	pos  int32
	data HeapData
}

/*
QueryHeap. binary min-heap keyed by tentative distance, with per node index storage
so that decrease-key & lookup are O(1) / O(log n).

	nodeIndex[node] -> index di inserted (atau -1 kalau belum pernah di insert)
	inserted[i]     -> entry (node, key, pos, data)
	heap[pos]       -> index di inserted

Clear cuma reset node yang pernah di insert, backing storage nya gak di free.
*/
type QueryHeap struct {
	nodeIndex []int32
	inserted  []heapEntry
	heap      []int32
}

func NewQueryHeap(numNodes int) *QueryHeap {
	nodeIndex := make([]int32, numNodes)
	for i := range nodeIndex {
		nodeIndex[i] = -1
	}
	return &QueryHeap{
		nodeIndex: nodeIndex,
		inserted:  make([]heapEntry, 0, 256),
		heap:      make([]int32, 0, 256),
	}
}

// Capacity returns the number of node ids the heap can index.
func (h *QueryHeap) Capacity() int {
	return len(h.nodeIndex)
}

func (h *QueryHeap) Size() int {
	return len(h.heap)
}

func (h *QueryHeap) Empty() bool {
	return len(h.heap) == 0
}

// Insert adds an unvisited node. returns false (no-op) if the node was already inserted.
func (h *QueryHeap) Insert(node NodeID, key EdgeWeight, data HeapData) bool {
	if h.WasInserted(node) {
		return false
	}
	idx := int32(len(h.inserted))
	h.inserted = append(h.inserted, heapEntry{
		node: node,
		key:  key,
		pos:  int32(len(h.heap)),
		data: data,
	})
	h.nodeIndex[node] = idx
	h.heap = append(h.heap, idx)
	h.siftUp(len(h.heap) - 1)
	return true
}

func (h *QueryHeap) DecreaseKey(node NodeID, newKey EdgeWeight) error {
	if !h.WasInserted(node) {
		return fmt.Errorf("decrease key of node %d: %w", node, ErrNodeNotInHeap)
	}
	entry := &h.inserted[h.nodeIndex[node]]
	if entry.pos < 0 {
		return fmt.Errorf("decrease key of settled node %d: %w", node, ErrNodeNotInHeap)
	}
	if newKey >= entry.key {
		return fmt.Errorf("decrease key of node %d from %d to %d: %w", node, entry.key, newKey, ErrKeyNotDecreased)
	}
	entry.key = newKey
	h.siftUp(int(entry.pos))
	return nil
}

// DeleteMin removes and returns the node with the smallest key.
func (h *QueryHeap) DeleteMin() (NodeID, error) {
	if len(h.heap) == 0 {
		return SpecialNodeID, ErrEmptyHeap
	}
	top := h.heap[0]
	last := len(h.heap) - 1
	h.swap(0, last)
	h.heap = h.heap[:last]
	h.inserted[top].pos = -1
	if len(h.heap) > 0 {
		h.siftDown(0)
	}
	return h.inserted[top].node, nil
}

// MinKey returns the smallest key, InvalidEdgeWeight if the heap is empty.
func (h *QueryHeap) MinKey() EdgeWeight {
	if len(h.heap) == 0 {
		return InvalidEdgeWeight
	}
	return h.inserted[h.heap[0]].key
}

func (h *QueryHeap) WasInserted(node NodeID) bool {
	if node < 0 || int(node) >= len(h.nodeIndex) {
		return false
	}
	return h.nodeIndex[node] >= 0
}

// WasRemoved reports whether node was inserted and already deleted via DeleteMin.
func (h *QueryHeap) WasRemoved(node NodeID) bool {
	if !h.WasInserted(node) {
		return false
	}
	return h.inserted[h.nodeIndex[node]].pos < 0
}

// GetKey returns the current key of an inserted node, InvalidEdgeWeight otherwise.
func (h *QueryHeap) GetKey(node NodeID) EdgeWeight {
	if !h.WasInserted(node) {
		return InvalidEdgeWeight
	}
	return h.inserted[h.nodeIndex[node]].key
}

// GetData returns a pointer to the data of an inserted node, nil otherwise.
func (h *QueryHeap) GetData(node NodeID) *HeapData {
	if !h.WasInserted(node) {
		return nil
	}
	return &h.inserted[h.nodeIndex[node]].data
}

// Clear resets the heap to empty without freeing backing storage.
func (h *QueryHeap) Clear() {
	for _, e := range h.inserted {
		h.nodeIndex[e.node] = -1
	}
	h.inserted = h.inserted[:0]
	h.heap = h.heap[:0]
}

func (h *QueryHeap) less(i, j int) bool {
	return h.inserted[h.heap[i]].key < h.inserted[h.heap[j]].key
}

func (h *QueryHeap) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.inserted[h.heap[i]].pos = int32(i)
	h.inserted[h.heap[j]].pos = int32(j)
}

func (h *QueryHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *QueryHeap) siftDown(i int) {
	n := len(h.heap)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.swap(i, smallest)
		i = smallest
	}
}
