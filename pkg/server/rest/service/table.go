package service

import (
	"context"
	"errors"

	"github.com/lintang-b-s/navigatorx-table/pkg/concurrent"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/navigatorx-table/pkg/geo"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"github.com/lintang-b-s/navigatorx-table/pkg/snap"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"
)

// OneToManyRow is the result for one location of a one-to-many query.
type OneToManyRow struct {
	Distance datastructure.EdgeWeight
	Coord    datastructure.Coordinate
	// AirDistance is the great circle distance between the source and Coord, in meters.
	AirDistance float64
}

type PoiRow struct {
	Poi      datastructure.Poi
	Distance datastructure.EdgeWeight
}

type TableService struct {
	engine  SearchEngine
	snapper RoadSnapper
	// poiRouting nil kalau server jalan tanpa poi.
	poiRouting PoiRouting
	// pois[i] adalah target i di bucket table poi.
	pois []datastructure.Poi

	maxLocations int
	poiLimit     datastructure.EdgeWeight
	workers      int
}

func NewTableService(engine SearchEngine, snapper RoadSnapper, poiRouting PoiRouting, pois []datastructure.Poi,
	maxLocations int, poiLimit datastructure.EdgeWeight, workers int) *TableService {
	return &TableService{
		engine:       engine,
		snapper:      snapper,
		poiRouting:   poiRouting,
		pois:         pois,
		maxLocations: maxLocations,
		poiLimit:     poiLimit,
		workers:      workers,
	}
}

type snapResult struct {
	index int
	res   snap.SnapResult
	err   error
}

// snapCoordinates resolves every coordinate onto the road network in parallel.
func (s *TableService) snapCoordinates(ctx context.Context, coords []datastructure.Coordinate) ([]snap.SnapResult, error) {
	workers := concurrent.NewWorkerPool[concurrent.SnapCoordinateParam, snapResult](s.workers, len(coords))
	for i, c := range coords {
		workers.AddJob(concurrent.NewSnapCoordinateParam(i, c))
	}
	workers.Close()
	workers.Start(func(job concurrent.SnapCoordinateParam) snapResult {
		if ctx.Err() != nil {
			return snapResult{index: job.Index, err: ctx.Err()}
		}
		res, err := s.snapper.Snap(job.Coord.Lat, job.Coord.Lon)
		return snapResult{index: job.Index, res: res, err: err}
	})
	workers.Wait()

	snapped := make([]snap.SnapResult, len(coords))
	var firstErr error
	firstErrIdx := len(coords)
	for r := range workers.CollectResults() {
		if r.err != nil {
			if r.index < firstErrIdx {
				firstErr, firstErrIdx = r.err, r.index
			}
			continue
		}
		snapped[r.index] = r.res
	}

	if firstErr != nil {
		if errors.Is(firstErr, snap.ErrNoSegment) {
			return nil, server.WrapErrorf(firstErr, server.ErrNotFound, "coordinate %d (%f, %f) is not near any road",
				firstErrIdx, coords[firstErrIdx].Lat, coords[firstErrIdx].Lon)
		}
		if errors.Is(firstErr, context.Canceled) || errors.Is(firstErr, context.DeadlineExceeded) {
			return nil, server.WrapErrorf(firstErr, server.ErrBadParamInput, "request cancelled")
		}
		return nil, server.WrapErrorf(firstErr, server.ErrInternalServerError, "internal server error")
	}
	return snapped, nil
}

func selectIndices(indices []int, n int, name string) ([]int, error) {
	if len(indices) == 0 {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, server.NewErrorf(server.ErrBadParamInput, "%s index %d out of range [0, %d)", name, idx, n)
		}
	}
	return indices, nil
}

func pick(snapped []snap.SnapResult, indices []int) []snap.SnapResult {
	picked := make([]snap.SnapResult, len(indices))
	for i, idx := range indices {
		picked[i] = snapped[idx]
	}
	return picked
}

func sourcePhantoms(snapped []snap.SnapResult) []datastructure.PhantomNode {
	phantoms := make([]datastructure.PhantomNode, len(snapped))
	for i, res := range snapped {
		phantoms[i] = res.Source
	}
	return phantoms
}

func targetPhantoms(snapped []snap.SnapResult) []datastructure.PhantomNode {
	phantoms := make([]datastructure.PhantomNode, len(snapped))
	for i, res := range snapped {
		phantoms[i] = res.Target
	}
	return phantoms
}

// shorterOnSegment returns dist, or the distance along the segment if source and target share a segment and it is shorter.
func shorterOnSegment(source, target snap.SnapResult, dist datastructure.EdgeWeight) datastructure.EdgeWeight {
	if direct, ok := snap.DirectDistance(source, target); ok && direct < dist {
		return direct
	}
	return dist
}

/*
Table. distance table antara coords[sources] x coords[destinations].
sources/destinations kosong = semua coordinate.
*/
func (s *TableService) Table(ctx context.Context, coords []datastructure.Coordinate, sources,
	destinations []int) (*routingalgorithm.DistanceTable, error) {
	if len(coords) == 0 {
		return nil, server.NewErrorf(server.ErrBadParamInput, "at least one coordinate is required")
	}
	if len(coords) > s.maxLocations {
		return nil, server.NewErrorf(server.ErrBadParamInput, "too many coordinates: %d, max %d", len(coords), s.maxLocations)
	}
	srcIdx, err := selectIndices(sources, len(coords), "source")
	if err != nil {
		return nil, err
	}
	dstIdx, err := selectIndices(destinations, len(coords), "destination")
	if err != nil {
		return nil, err
	}

	snapped, err := s.snapCoordinates(ctx, coords)
	if err != nil {
		return nil, err
	}
	srcSnapped, dstSnapped := pick(snapped, srcIdx), pick(snapped, dstIdx)

	table, err := s.engine.ManyToMany(sourcePhantoms(srcSnapped), targetPhantoms(dstSnapped))
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
	for i := range srcSnapped {
		row := table.Row(i)
		for j := range dstSnapped {
			row[j] = shorterOnSegment(srcSnapped[i], dstSnapped[j], row[j])
		}
	}
	return table, nil
}

/*
OneToMany. coords[0] adalah source, distance dihitung ke semua coords (termasuk source nya sendiri).
coordinate lebih dari maxLocations dipotong.
*/
func (s *TableService) OneToMany(ctx context.Context, coords []datastructure.Coordinate) ([]OneToManyRow, error) {
	if len(coords) < 2 {
		return nil, server.NewErrorf(server.ErrBadParamInput, "at least two coordinates are required")
	}
	if len(coords) > s.maxLocations {
		coords = coords[:s.maxLocations]
	}

	snapped, err := s.snapCoordinates(ctx, coords)
	if err != nil {
		return nil, err
	}

	distances, err := s.engine.OneToMany(snapped[0].Source, targetPhantoms(snapped))
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	src := coords[0]
	rows := make([]OneToManyRow, len(coords))
	for i, c := range coords {
		rows[i] = OneToManyRow{
			Distance:    shorterOnSegment(snapped[0], snapped[i], distances[i]),
			Coord:       c,
			AirDistance: util.RoundFloat(geo.CalculateHaversineDistance(src.Lat, src.Lon, c.Lat, c.Lon)*1000, 1),
		}
	}
	return rows, nil
}

// Distance is the shortest road distance from source to destination, InvalidEdgeWeight if there is no route.
func (s *TableService) Distance(ctx context.Context, source, destination datastructure.Coordinate) (datastructure.EdgeWeight, error) {
	snapped, err := s.snapCoordinates(ctx, []datastructure.Coordinate{source, destination})
	if err != nil {
		return datastructure.InvalidEdgeWeight, err
	}

	dist, err := s.engine.ShortestDistance(snapped[0].Source, snapped[1].Target)
	if err != nil {
		return datastructure.InvalidEdgeWeight, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
	return shorterOnSegment(snapped[0], snapped[1], dist), nil
}

// PoiTable returns the pois reachable from coord within limit, nearest first. limit <= 0 uses the default limit.
func (s *TableService) PoiTable(ctx context.Context, coord datastructure.Coordinate,
	limit datastructure.EdgeWeight) ([]PoiRow, error) {
	if s.poiRouting == nil {
		return nil, server.NewErrorf(server.ErrNotFound, "poi table is not available")
	}
	if limit <= 0 {
		limit = s.poiLimit
	}

	snapped, err := s.snapCoordinates(ctx, []datastructure.Coordinate{coord})
	if err != nil {
		return nil, err
	}

	distances, err := s.poiRouting.OneToAll(snapped[0].Source, limit)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	rows := make([]PoiRow, 0, len(distances))
	for targetID, dist := range distances {
		if int(targetID) >= len(s.pois) {
			continue
		}
		rows = append(rows, PoiRow{Poi: s.pois[targetID], Distance: dist})
	}
	rows = util.QuickSortG(rows, func(a, b PoiRow) int {
		if a.Distance != b.Distance {
			if a.Distance < b.Distance {
				return -1
			}
			return 1
		}
		if a.Poi.OsmID < b.Poi.OsmID {
			return -1
		} else if a.Poi.OsmID > b.Poi.OsmID {
			return 1
		}
		return 0
	})
	return rows, nil
}
