package routingalgorithm

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

// SearchEngine bundles the searches sharing one graph and one heap pool.
type SearchEngine[F DataFacade] struct {
	facade        F
	pool          *datastructure.HeapPool
	manyToMany    *ManyToManyRouting[F]
	shortestRoute *BidirectionalDijkstraCH[F]
}

func NewSearchEngine[F DataFacade](facade F, workers int) *SearchEngine[F] {
	pool := datastructure.NewHeapPool(facade.GetNumberOfNodes())
	return &SearchEngine[F]{
		facade:        facade,
		pool:          pool,
		manyToMany:    NewManyToManyRouting(facade, pool, workers),
		shortestRoute: NewBidirectionalDijkstraCH(facade, pool),
	}
}

func (se *SearchEngine[F]) NumberOfNodes() int {
	return se.facade.GetNumberOfNodes()
}

func (se *SearchEngine[F]) ManyToMany(sources, targets []datastructure.PhantomNode) (*DistanceTable, error) {
	return se.manyToMany.ManyToMany(sources, targets)
}

func (se *SearchEngine[F]) OneToMany(source datastructure.PhantomNode,
	targets []datastructure.PhantomNode) ([]datastructure.EdgeWeight, error) {
	return se.manyToMany.OneToMany(source, targets)
}

func (se *SearchEngine[F]) ShortestDistance(source, target datastructure.PhantomNode) (datastructure.EdgeWeight, error) {
	return se.shortestRoute.ShortestDistance(source, target)
}

// NewPoiRouting builds the poi buckets on the engine's graph.
func (se *SearchEngine[F]) NewPoiRouting(pois []datastructure.PhantomNode) (*OneToAllPoiRouting[F], error) {
	return NewOneToAllPoiRouting(se.facade, se.pool, pois)
}

// PoiRoutingFromSnapshot restores poi buckets saved with BucketTable.Snapshot.
func (se *SearchEngine[F]) PoiRoutingFromSnapshot(snap datastructure.BucketSnapshot) (*OneToAllPoiRouting[F], error) {
	table, err := BucketTableFromSnapshot(snap, se.facade.GetNumberOfNodes())
	if err != nil {
		return nil, err
	}
	return OneToAllPoiRoutingFromBuckets(se.facade, se.pool, table)
}
