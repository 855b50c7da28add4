package osmparser

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

var (
	skipHighway = map[string]struct{}{
		"footway":                struct{}{},
		"construction":           struct{}{},
		"cycleway":               struct{}{},
		"path":                   struct{}{},
		"pedestrian":             struct{}{},
		"busway":                 struct{}{},
		"steps":                  struct{}{},
		"bridleway":              struct{}{},
		"corridor":               struct{}{},
		"street_lamp":            struct{}{},
		"bus_stop":               struct{}{},
		"crossing":               struct{}{},
		"cyclist_waiting_aid":    struct{}{},
		"elevator":               struct{}{},
		"emergency_bay":          struct{}{},
		"emergency_access_point": struct{}{},
		"give_way":               struct{}{},
		"phone":                  struct{}{},
		"ladder":                 struct{}{},
		"milestone":              struct{}{},
		"passing_place":          struct{}{},
		"platform":               struct{}{},
		"speed_camera":           struct{}{},
		"track":                  struct{}{},
		"bus_guideway":           struct{}{},
		"speed_display":          struct{}{},
		"stop":                   struct{}{},
		"toll_gantry":            struct{}{},
		"traffic_mirror":         struct{}{},
		"traffic_signals":        struct{}{},
		"trailhead":              struct{}{},
	}
)

// ParsedMap is the road network and poi list extracted from an openstreetmap extract.
// node ids of Edges index Coordinates.
type ParsedMap struct {
	Coordinates []datastructure.Coordinate
	Edges       []datastructure.Edge
	Pois        []datastructure.Poi
}

func (m *ParsedMap) NumNodes() int {
	return len(m.Coordinates)
}

type OsmParser struct {
	wayNodeMap      map[int64]struct{}
	acceptedNodeMap map[int64]datastructure.Coordinate
	nodeIDMap       map[int64]int32

	coords []datastructure.Coordinate
	edges  []datastructure.Edge
	pois   []datastructure.Poi
}

func NewOSMParser() *OsmParser {
	return &OsmParser{
		wayNodeMap:      make(map[int64]struct{}),
		acceptedNodeMap: make(map[int64]datastructure.Coordinate),
		nodeIDMap:       make(map[int64]int32),
		coords:          make([]datastructure.Coordinate, 0),
		edges:           make([]datastructure.Edge, 0),
		pois:            make([]datastructure.Poi, 0),
	}
}

func (p *OsmParser) ParseFile(ctx context.Context, mapFile string) (*ParsedMap, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, fmt.Errorf("open osm file %s: %w", mapFile, err)
	}
	defer f.Close()
	return p.Parse(ctx, f)
}

/*
Parse. dua kali scan file pbf:
 1. baca semua way yang diterima, tandai node nya.
 2. simpan koordinat node yang ditandai (+ poi dari node amenity), lalu bikin edge per pasangan node berurutan di way.

tiap node way jadi node graph, jadi setiap edge adalah garis lurus (dipakai buat snapping).
*/
func (p *OsmParser) Parse(ctx context.Context, r io.ReadSeeker) (*ParsedMap, error) {
	scanner := osmpbf.New(ctx, r, 1)
	// must not be parallel
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if !p.markWayNodes(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			log.Printf("reading openstreetmap ways: %d...", countWays+1)
		}
		countWays++
	}
	err := scanner.Err()
	scanner.Close()
	if err != nil {
		return nil, fmt.Errorf("scan openstreetmap ways: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	scanner = osmpbf.New(ctx, r, 1)
	defer scanner.Close()

	countNodes := 0
	for scanner.Scan() {
		o := scanner.Object()

		switch o.ObjectID().Type() {
		case osm.TypeNode:
			if (countNodes+1)%500000 == 0 {
				log.Printf("processing openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++
			p.processNode(o.(*osm.Node))
		case osm.TypeWay:
			p.processWay(o.(*osm.Way))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan openstreetmap nodes: %w", err)
	}

	log.Printf("total nodes: %d, total edges: %d, total pois: %d", len(p.coords), len(p.edges), len(p.pois))
	return p.result(), nil
}

func (p *OsmParser) result() *ParsedMap {
	return &ParsedMap{
		Coordinates: p.coords,
		Edges:       p.edges,
		Pois:        p.pois,
	}
}

// markWayNodes returns false if way is not a drivable road.
func (p *OsmParser) markWayNodes(way *osm.Way) bool {
	if len(way.Nodes) < 2 || !acceptOsmWay(way) {
		return false
	}
	for _, node := range way.Nodes {
		p.wayNodeMap[int64(node.ID)] = struct{}{}
	}
	return true
}

func (p *OsmParser) processNode(node *osm.Node) {
	if _, ok := p.wayNodeMap[int64(node.ID)]; ok {
		p.acceptedNodeMap[int64(node.ID)] = datastructure.NewCoordinate(node.Lat, node.Lon)
	}

	if amenity := node.Tags.Find("amenity"); amenity != "" {
		p.pois = append(p.pois, datastructure.Poi{
			OsmID:   int64(node.ID),
			Lat:     node.Lat,
			Lon:     node.Lon,
			Amenity: amenity,
			Name:    node.Tags.Find("name"),
		})
	}
}

func (p *OsmParser) processWay(way *osm.Way) {
	if len(way.Nodes) < 2 || !acceptOsmWay(way) {
		return
	}
	forward, backward := wayDirection(way)
	if !forward && !backward {
		return
	}

	for i := 1; i < len(way.Nodes); i++ {
		fromOsm, toOsm := int64(way.Nodes[i-1].ID), int64(way.Nodes[i].ID)
		if fromOsm == toOsm {
			continue
		}
		fromCoord, okFrom := p.acceptedNodeMap[fromOsm]
		toCoord, okTo := p.acceptedNodeMap[toOsm]
		if !okFrom || !okTo {
			// node di luar extract
			continue
		}

		from := p.graphNodeID(fromOsm, fromCoord)
		to := p.graphNodeID(toOsm, toCoord)
		weight := geo.EdgeWeightFromKM(geo.CalculateHaversineDistance(fromCoord.Lat, fromCoord.Lon,
			toCoord.Lat, toCoord.Lon))

		if forward {
			p.edges = append(p.edges, datastructure.NewEdge(from, to, weight))
		}
		if backward {
			p.edges = append(p.edges, datastructure.NewEdge(to, from, weight))
		}
	}
}

func (p *OsmParser) graphNodeID(osmID int64, coord datastructure.Coordinate) int32 {
	if id, ok := p.nodeIDMap[osmID]; ok {
		return id
	}
	id := int32(len(p.coords))
	p.nodeIDMap[osmID] = id
	p.coords = append(p.coords, coord)
	return id
}

func isRestricted(value string) bool {
	if value == "no" || value == "restricted" || value == "military" || value == "emergency" || value == "private" || value == "permit" {
		return true
	}
	return false
}

func getReversedOneWay(way *osm.Way) (bool, bool, bool, bool) {
	vehicleForward := way.Tags.Find("vehicle:forward")
	motorVehicleForward := way.Tags.Find("motor_vehicle:forward")
	vehicleBackward := way.Tags.Find("vehicle:backward")
	motorVehicleBackward := way.Tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward), isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

// wayDirection reports whether the way can be driven in node order (forward) and against it (backward).
func wayDirection(way *osm.Way) (bool, bool) {
	forward, backward := true, true

	switch way.Tags.Find("oneway") {
	case "yes", "1", "true":
		backward = false
	case "-1", "reverse":
		forward = false
	case "no", "false", "0":
	default:
		junction := way.Tags.Find("junction")
		if junction == "roundabout" || junction == "circular" ||
			way.Tags.Find("highway") == "motorway" {
			backward = false
		}
	}

	okvf, okmvf, okvb, okmvb := getReversedOneWay(way)
	if okvf || okmvf {
		// restricted/not allowed forward.
		forward = false
	}
	if okvb || okmvb {
		backward = false
	}
	return forward, backward
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	if highway != "" {
		if _, ok := skipHighway[highway]; !ok {
			return true
		}
	} else if way.Tags.Find("route") == "road" {
		return true
	} else if junction != "" {
		return true
	}
	return false
}
