package routingalgorithm

import (
	"fmt"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

/*
OneToAllPoiRouting. bucket dari semua poi dibangun sekali waktu konstruksi,
setelah itu setiap query cuma satu forward scan dengan distance limit.
aman dipanggil concurrent karena bucket table read-only & tiap query ambil heap sendiri dari pool.
*/
type OneToAllPoiRouting[F DataFacade] struct {
	facade F
	pool   *datastructure.HeapPool
	table  *BucketTable
	opts   searchOptions
}

// NewOneToAllPoiRouting builds the buckets of pois, target id i refers to pois[i].
func NewOneToAllPoiRouting[F DataFacade](facade F, pool *datastructure.HeapPool,
	pois []datastructure.PhantomNode) (*OneToAllPoiRouting[F], error) {
	table, err := BuildBuckets(facade, pool, pois)
	if err != nil {
		return nil, fmt.Errorf("build poi buckets: %w", err)
	}
	return &OneToAllPoiRouting[F]{
		facade: facade,
		pool:   pool,
		table:  table,
	}, nil
}

// OneToAllPoiRoutingFromBuckets wraps a table built earlier (e.g. restored from the bucket cache).
func OneToAllPoiRoutingFromBuckets[F DataFacade](facade F, pool *datastructure.HeapPool,
	table *BucketTable) (*OneToAllPoiRouting[F], error) {
	if table == nil {
		return nil, ErrBucketsNotBuilt
	}
	if pool.NumNodes() != facade.GetNumberOfNodes() {
		return nil, fmt.Errorf("pool for %d nodes, graph has %d nodes: %w", pool.NumNodes(),
			facade.GetNumberOfNodes(), ErrHeapPoolMismatch)
	}
	if table.NumNodes() != facade.GetNumberOfNodes() {
		return nil, fmt.Errorf("bucket table for %d nodes, graph has %d nodes: %w", table.NumNodes(),
			facade.GetNumberOfNodes(), ErrNodeOutOfRange)
	}
	return &OneToAllPoiRouting[F]{
		facade: facade,
		pool:   pool,
		table:  table,
	}, nil
}

func (r *OneToAllPoiRouting[F]) Buckets() *BucketTable {
	return r.table
}

// OneToAll returns target id -> distance for every poi reached from source within limit (inclusive).
func (r *OneToAllPoiRouting[F]) OneToAll(source datastructure.PhantomNode,
	limit datastructure.EdgeWeight) (map[uint32]datastructure.EdgeWeight, error) {
	if r.table == nil {
		return nil, ErrBucketsNotBuilt
	}
	result := make(sparseResult)
	err := r.pool.WithHeap(func(heap *datastructure.QueryHeap) error {
		return forwardRoutingStep(r.facade, heap, r.table, source, limit, r.opts, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
