package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/lintang-b-s/navigatorx-table/pkg/config"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/navigatorx-table/pkg/kv"
	"github.com/lintang-b-s/navigatorx-table/pkg/server/rest"
	"github.com/lintang-b-s/navigatorx-table/pkg/server/rest/service"
	"github.com/lintang-b-s/navigatorx-table/pkg/snap"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "net/http/pprof"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var (
	configFile  = flag.String("config", "", "yaml config file")
	listenAddr  = flag.String("listenaddr", "", "server listen address")
	graphFile   = flag.String("graph", "", "contracted graph file hasil preprocessing")
	poiDBDir    = flag.String("poidb", "", "pebble directory daftar poi")
	bucketDBDir = flag.String("bucketdb", "", "badger directory cache bucket table poi")
	workers     = flag.Int("workers", 0, "jumlah worker many to many, 0 = pakai config / jumlah cpu")
	memprofile  = flag.String("memprofile", "", "write memory profile to this file")
)

type queryEngine = routingalgorithm.SearchEngine[*datastructure.QueryGraph]

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	overrideConfig(cfg)

	qg, err := datastructure.LoadQueryGraph(cfg.GraphFile)
	if err != nil {
		log.Fatal(err)
	}
	recordMemProfile(memprofile, "load_contracted_graph")

	engine := routingalgorithm.NewSearchEngine(qg, cfg.Workers)

	snapper, err := snap.NewRoadSnapper(qg.Coordinates, qg.Segments, cfg.MaxSnapMeters)
	if err != nil {
		log.Fatal(err)
	}

	pois, poiRouting, err := loadPoiRouting(cfg, qg, engine, snapper)
	if err != nil {
		log.Fatal(err)
	}
	recordMemProfile(memprofile, "poi_buckets")

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	tableSvc := service.NewTableService(engine, snapper, poiRouting, pois, cfg.MaxLocations,
		datastructure.EdgeWeight(cfg.PoiLimit), cfg.Workers)
	rest.TableRouter(r, tableSvc, m)

	fmt.Printf("\n Contraction Hieararchies + bucket many to many Ready!!")
	fmt.Printf("\nserver started at %s\n", cfg.ListenAddr)

	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}

func overrideConfig(cfg *config.Config) {
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *graphFile != "" {
		cfg.GraphFile = *graphFile
	}
	if *poiDBDir != "" {
		cfg.PoiDBDir = *poiDBDir
	}
	if *bucketDBDir != "" {
		cfg.BucketCacheDir = *bucketDBDir
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
}

/*
loadPoiRouting. load poi dari pebble, snap ke road network, lalu restore bucket table poi dari cache badger.
kalau belum ada di cache, bucket table di build & disimpan ke cache.
poi yang gagal di snap tidak ikut jadi target.
*/
func loadPoiRouting(cfg *config.Config, qg *datastructure.QueryGraph, engine *queryEngine,
	snapper *snap.RoadSnapper) ([]datastructure.Poi, service.PoiRouting, error) {
	if cfg.PoiDBDir == "" {
		return nil, nil, nil
	}

	poiStore, err := kv.OpenPoiStore(cfg.PoiDBDir)
	if err != nil {
		return nil, nil, err
	}
	defer poiStore.Close()

	allPois, err := poiStore.LoadPois()
	if err != nil {
		return nil, nil, err
	}

	pois := make([]datastructure.Poi, 0, len(allPois))
	targets := make([]datastructure.PhantomNode, 0, len(allPois))
	for _, poi := range allPois {
		res, err := snapper.Snap(poi.Lat, poi.Lon)
		if err != nil {
			continue
		}
		pois = append(pois, poi)
		targets = append(targets, res.Target)
	}
	log.Printf("snapped %d of %d pois", len(pois), len(allPois))
	if len(targets) == 0 {
		return nil, nil, nil
	}

	var bucketStore *kv.BucketStore
	key := kv.BucketKey(qg.GetChecksum(), targets)
	if cfg.BucketCacheDir != "" {
		bucketStore, err = kv.OpenBucketStore(cfg.BucketCacheDir)
		if err != nil {
			return nil, nil, err
		}
		defer bucketStore.Close()

		snapshot, err := bucketStore.Load(key)
		switch {
		case err == nil:
			poiRouting, err := engine.PoiRoutingFromSnapshot(snapshot)
			if err == nil {
				log.Printf("restored poi buckets from cache %s", key)
				return pois, poiRouting, nil
			}
			log.Printf("cached poi buckets %s are invalid, rebuilding: %v", key, err)
		case errors.Is(err, kv.ErrBucketsNotFound):
		default:
			return nil, nil, err
		}
	}

	log.Printf("building poi buckets for %d pois...", len(targets))
	poiRouting, err := engine.NewPoiRouting(targets)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("poi buckets: %d entries", poiRouting.Buckets().NumEntries())

	if bucketStore != nil {
		if err := bucketStore.Save(key, poiRouting.Buckets().Snapshot()); err != nil {
			return nil, nil, err
		}
	}
	return pois, poiRouting, nil
}

func recordMemProfile(memprofile *string, name string) {
	if err := util.RecordMemProfile(*memprofile, name); err != nil {
		log.Printf("memory profile %s: %v", name, err)
	}
}
