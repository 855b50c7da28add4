package concurrent

import "github.com/lintang-b-s/navigatorx-table/pkg/datastructure"

// SnapCoordinateParam is one query coordinate to be resolved to a phantom node.
// Index is its position in the request.
type SnapCoordinateParam struct {
	Index int
	Coord datastructure.Coordinate
}

func NewSnapCoordinateParam(index int, coord datastructure.Coordinate) SnapCoordinateParam {
	return SnapCoordinateParam{
		Index: index,
		Coord: coord,
	}
}

type JobI interface {
	SnapCoordinateParam
}

type Job[T JobI] struct {
	ID      int
	JobItem T
}
type JobFunc[T JobI, G any] func(job T) G
