package datastructure

import (
	"errors"
)

var (
	ErrPriorityIncreased = errors.New("new priority must be less or equal than old priority")
)

type Entry[T any] struct {
	degree   int
	isMarked bool

	next   *Entry[T]
	prev   *Entry[T]
	child  *Entry[T]
	parent *Entry[T]

	elem     T
	priority EdgeWeight
}

func NewEntry[T any](elem T, priority EdgeWeight) *Entry[T] {
	e := &Entry[T]{
		elem:     elem,
		priority: priority,
	}
	e.next = e
	e.prev = e

	return e
}

func (e *Entry[T]) GetPriority() EdgeWeight {
	return e.priority
}

func (e *Entry[T]) GetElem() T {
	return e.elem
}

/*
FibonacciHeap. dipakai buat witness search di contractor & plain dijkstra (reference search di test).

potential function: pot(H) = t(H) + 2m(H)
t(H) jumlah tree di root list, m(H) jumlah marked node.

insert O(1), decreaseKey O(1) amortized, extractMin O(log n) amortized.
*/
type FibonacciHeap[T any] struct {
	mMin  *Entry[T]
	mSize int
}

func NewFibonacciHeap[T any]() *FibonacciHeap[T] {
	return &FibonacciHeap[T]{}
}

func (f *FibonacciHeap[T]) GetMin() *Entry[T] {
	return f.mMin
}

// GetMinRank returns InvalidEdgeWeight if the heap is empty.
func (f *FibonacciHeap[T]) GetMinRank() EdgeWeight {
	if f.mMin == nil {
		return InvalidEdgeWeight
	}
	return f.mMin.priority
}

func (f *FibonacciHeap[T]) Size() int {
	return f.mSize
}

func (f *FibonacciHeap[T]) Insert(value T, priority EdgeWeight) *Entry[T] {
	result := NewEntry(value, priority)

	f.mMin = f.mergeLists(f.mMin, result)
	f.mSize++

	return result
}

// mergeLists splices two circular root lists and returns the smaller root.
func (f *FibonacciHeap[T]) mergeLists(one *Entry[T], two *Entry[T]) *Entry[T] {
	if one == nil {
		return two
	}
	if two == nil {
		return one
	}

	oneNext := one.next
	one.next = two.next
	one.next.prev = one
	two.next = oneNext
	two.next.prev = two

	if one.priority < two.priority {
		return one
	}
	return two
}

func (f *FibonacciHeap[T]) DecreaseKey(entry *Entry[T], newPriority EdgeWeight) error {
	if newPriority > entry.priority {
		return ErrPriorityIncreased
	}
	entry.priority = newPriority

	if entry.parent != nil && entry.priority <= entry.parent.priority {
		f.cutNode(entry)
	}

	if entry.priority < f.mMin.priority {
		f.mMin = entry
	}
	return nil
}

// cutNode moves entry to the root list and cascades the cut to marked ancestors.
func (f *FibonacciHeap[T]) cutNode(entry *Entry[T]) {
	entry.isMarked = false

	if entry.parent == nil {
		return
	}

	if entry.next != entry {
		entry.next.prev = entry.prev
		entry.prev.next = entry.next
	}

	if entry.parent.child == entry {
		if entry.next != entry {
			entry.parent.child = entry.next
		} else {
			entry.parent.child = nil
		}
	}

	entry.parent.degree--

	entry.prev = entry
	entry.next = entry

	f.mMin = f.mergeLists(f.mMin, entry)

	parent := entry.parent
	entry.parent = nil
	if parent.isMarked {
		f.cutNode(parent)
	} else {
		parent.isMarked = true
	}
}

func (f *FibonacciHeap[T]) ExtractMin() (*Entry[T], error) {
	if f.mMin == nil {
		return nil, ErrEmptyHeap
	}

	f.mSize--

	minElem := f.mMin

	if f.mMin.next == f.mMin {
		f.mMin = nil
	} else {
		f.mMin.prev.next = f.mMin.next
		f.mMin.next.prev = f.mMin.prev
		f.mMin = f.mMin.next
	}

	if minElem.child != nil {
		curr := minElem.child
		for {
			curr.parent = nil
			curr = curr.next
			if curr == minElem.child {
				break
			}
		}
	}

	f.mMin = f.mergeLists(f.mMin, minElem.child)

	if f.mMin == nil {
		return minElem, nil
	}

	f.consolidate()

	return minElem, nil
}

// consolidate links roots of equal degree until every root has a distinct degree.
func (f *FibonacciHeap[T]) consolidate() {
	treeTable := make([]*Entry[T], 0)

	toVisit := make([]*Entry[T], 0)
	for curr := f.mMin; len(toVisit) == 0 || toVisit[0] != curr; curr = curr.next {
		toVisit = append(toVisit, curr)
	}

	for _, curr := range toVisit {
		for {
			for curr.degree >= len(treeTable) {
				treeTable = append(treeTable, nil)
			}

			if treeTable[curr.degree] == nil {
				treeTable[curr.degree] = curr
				break
			}

			other := treeTable[curr.degree]
			treeTable[curr.degree] = nil

			var min, max *Entry[T]
			if other.priority < curr.priority {
				min, max = other, curr
			} else {
				min, max = curr, other
			}

			max.next.prev = max.prev
			max.prev.next = max.next

			max.next = max
			max.prev = max
			min.child = f.mergeLists(min.child, max)

			max.parent = min
			max.isMarked = false
			min.degree++

			curr = min
		}

		if curr.priority <= f.mMin.priority {
			f.mMin = curr
		}
	}
}
