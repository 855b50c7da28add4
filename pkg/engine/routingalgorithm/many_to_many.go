package routingalgorithm

import (
	"fmt"
	"runtime"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"golang.org/x/sync/errgroup"
)

// DistanceTable is a row-major sources x targets matrix, unreachable pairs hold InvalidEdgeWeight.
type DistanceTable struct {
	NumSources int
	NumTargets int
	Distances  []datastructure.EdgeWeight
}

func newDistanceTable(numSources, numTargets int) *DistanceTable {
	distances := make([]datastructure.EdgeWeight, numSources*numTargets)
	for i := range distances {
		distances[i] = datastructure.InvalidEdgeWeight
	}
	return &DistanceTable{
		NumSources: numSources,
		NumTargets: numTargets,
		Distances:  distances,
	}
}

func (t *DistanceTable) At(source, target int) datastructure.EdgeWeight {
	return t.Distances[source*t.NumTargets+target]
}

func (t *DistanceTable) Row(source int) []datastructure.EdgeWeight {
	return t.Distances[source*t.NumTargets : (source+1)*t.NumTargets]
}

type ManyToManyRouting[F DataFacade] struct {
	facade  F
	pool    *datastructure.HeapPool
	workers int
	opts    searchOptions
}

// NewManyToManyRouting. workers <= 0 means one worker per cpu.
func NewManyToManyRouting[F DataFacade](facade F, pool *datastructure.HeapPool, workers int) *ManyToManyRouting[F] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ManyToManyRouting[F]{
		facade:  facade,
		pool:    pool,
		workers: workers,
	}
}

// ManyToMany builds the buckets of targets and runs one forward scan per source.
func (r *ManyToManyRouting[F]) ManyToMany(sources, targets []datastructure.PhantomNode) (*DistanceTable, error) {
	table, err := buildBuckets(r.facade, r.pool, targets, r.opts)
	if err != nil {
		return nil, err
	}
	return r.ManyToManyWithBuckets(sources, table)
}

// ManyToManyWithBuckets answers the sources against an already frozen bucket table.
// rows are computed concurrently, each worker owns its heap and writes only its own row.
func (r *ManyToManyRouting[F]) ManyToManyWithBuckets(sources []datastructure.PhantomNode,
	table *BucketTable) (*DistanceTable, error) {
	if table == nil {
		return nil, ErrBucketsNotBuilt
	}
	if len(sources) == 0 {
		return nil, ErrEmptySources
	}
	if r.pool.NumNodes() != r.facade.GetNumberOfNodes() {
		return nil, fmt.Errorf("pool for %d nodes, graph has %d nodes: %w", r.pool.NumNodes(),
			r.facade.GetNumberOfNodes(), ErrHeapPoolMismatch)
	}

	result := newDistanceTable(len(sources), int(table.NumTargets()))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i := range sources {
		i := i
		g.Go(func() error {
			return r.pool.WithHeap(func(heap *datastructure.QueryHeap) error {
				row := denseRow(result.Row(i))
				if err := forwardRoutingStep(r.facade, heap, table, sources[i], NoDistanceLimit, r.opts, row); err != nil {
					return fmt.Errorf("forward search for source %d: %w", i, err)
				}
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// OneToMany is ManyToMany with a single source row.
func (r *ManyToManyRouting[F]) OneToMany(source datastructure.PhantomNode,
	targets []datastructure.PhantomNode) ([]datastructure.EdgeWeight, error) {
	table, err := r.ManyToMany([]datastructure.PhantomNode{source}, targets)
	if err != nil {
		return nil, err
	}
	return table.Row(0), nil
}
