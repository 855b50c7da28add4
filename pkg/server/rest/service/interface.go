package service

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/navigatorx-table/pkg/snap"
)

type SearchEngine interface {
	NumberOfNodes() int
	ManyToMany(sources, targets []datastructure.PhantomNode) (*routingalgorithm.DistanceTable, error)
	OneToMany(source datastructure.PhantomNode, targets []datastructure.PhantomNode) ([]datastructure.EdgeWeight, error)
	ShortestDistance(source, target datastructure.PhantomNode) (datastructure.EdgeWeight, error)
}

type PoiRouting interface {
	OneToAll(source datastructure.PhantomNode, limit datastructure.EdgeWeight) (map[uint32]datastructure.EdgeWeight, error)
}

type RoadSnapper interface {
	Snap(lat, lon float64) (snap.SnapResult, error)
}
