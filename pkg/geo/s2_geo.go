package geo

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"

	"github.com/golang/geo/s2"
)

func toS2Point(c datastructure.Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

/*
ProjectPointToSegment. proyeksi titik p ke segment a-b di permukaan bola (s2).
return titik hasil proyeksi & posisi relatif nya di segment (0 = a, 1 = b).
*/
func ProjectPointToSegment(a, b, p datastructure.Coordinate) (datastructure.Coordinate, float64) {
	if a == b {
		return a, 0
	}
	aS2 := toS2Point(a)
	bS2 := toS2Point(b)
	projection := s2.Project(toS2Point(p), aS2, bS2)
	projectLatLng := s2.LatLngFromPoint(projection)

	segmentLength := aS2.Distance(bS2).Radians()
	fraction := 0.0
	if segmentLength > 0 {
		fraction = aS2.Distance(projection).Radians() / segmentLength
	}
	if fraction > 1 {
		fraction = 1
	}
	return datastructure.NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees()), fraction
}

// DistanceMeters is the s2 angular distance between a and b in meters.
func DistanceMeters(a, b datastructure.Coordinate) float64 {
	return s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon)).Radians() * earthRadiusM
}
