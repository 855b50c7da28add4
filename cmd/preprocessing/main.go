package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/lintang-b-s/navigatorx-table/pkg/contractor"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/kv"
	"github.com/lintang-b-s/navigatorx-table/pkg/osmparser"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"
	"golang.org/x/sync/errgroup"
)

var (
	mapFile    = flag.String("f", "solo_jogja.osm.pbf", "openstreeetmap file buat road network graphnya")
	outFile    = flag.String("out", "./data/navigatorx-table.graph", "output contracted graph file")
	poiDBDir   = flag.String("poidb", "./data/poi", "pebble directory buat daftar poi")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		// https://go.dev/blog/pprof
		// ./bin/navigatorx-table-preprocessing -cpuprofile=navigatorxcpu.prof -memprofile=navigatorxmem.mprof
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Printf("reading osm file %s", *mapFile)
	osmParser := osmparser.NewOSMParser()
	parsed, err := osmParser.ParseFile(ctx, *mapFile)
	if err != nil {
		log.Fatal(err)
	}
	recordMemProfile(memprofile, "parsing_osm_data")

	graph := datastructure.NewGraph(parsed.NumNodes(), parsed.Edges)

	// snapping hanya ke segment di strongly connected component terbesar, biar lokasi query tidak nyangkut di pulau kecil.
	scc := contractor.KosarajuSCC(graph)
	segments := make([]datastructure.Edge, 0, len(parsed.Edges))
	for _, e := range parsed.Edges {
		if scc.InLargestComponent(e.From) && scc.InLargestComponent(e.To) {
			segments = append(segments, e)
		}
	}
	log.Printf("snapping segments in largest scc: %d of %d", len(segments), len(parsed.Edges))

	poiStore, err := kv.OpenPoiStore(*poiDBDir)
	if err != nil {
		log.Fatal(err)
	}
	defer poiStore.Close()

	var eg errgroup.Group
	eg.Go(func() error {
		return poiStore.SavePois(parsed.Pois)
	})

	ch := contractor.NewContractedGraph(graph)
	if err := ch.Contraction(); err != nil {
		log.Fatal(err)
	}

	qg, err := ch.QueryGraph()
	if err != nil {
		log.Fatal(err)
	}
	qg.SetGeometry(parsed.Coordinates, segments)

	log.Printf("Saving Contracted Graph to a file...")
	if err := os.MkdirAll(filepath.Dir(*outFile), 0755); err != nil {
		log.Fatal(err)
	}
	if err := datastructure.SaveQueryGraph(qg, *outFile); err != nil {
		log.Fatal(err)
	}

	if err := eg.Wait(); err != nil {
		log.Fatal(err)
	}
	recordMemProfile(memprofile, "finish_contracting_graph")

	fmt.Printf("\n Contraction Hieararchies ready: %d nodes, %d shortcuts, %d pois\n",
		ch.Metadata.NodeCount, ch.Metadata.ShortcutsCount, len(parsed.Pois))
}

func recordMemProfile(memprofile *string, name string) {
	if err := util.RecordMemProfile(*memprofile, name); err != nil {
		log.Printf("memory profile %s: %v", name, err)
	}
}
