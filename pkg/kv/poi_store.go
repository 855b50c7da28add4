package kv

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

var (
	poiKeyPrefix = []byte("poi/")
	// poiKeyEnd is the exclusive upper bound of every poi key.
	poiKeyEnd = []byte("poi0")
)

// PoiStore keeps the poi list produced by preprocessing, keyed by its position in the list.
type PoiStore struct {
	db *pebble.DB
}

func NewPoiStore(db *pebble.DB) *PoiStore {
	return &PoiStore{db}
}

// OpenPoiStore opens a pebble db at dir, or an in-memory one if dir is empty.
func OpenPoiStore(dir string) (*PoiStore, error) {
	opts := &pebble.Options{}
	if dir == "" {
		opts.FS = vfs.NewMem()
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open poi store %q: %w", dir, err)
	}
	return NewPoiStore(db), nil
}

func poiKey(idx uint32) []byte {
	key := make([]byte, len(poiKeyPrefix)+4)
	copy(key, poiKeyPrefix)
	binary.BigEndian.PutUint32(key[len(poiKeyPrefix):], idx)
	return key
}

// SavePois replaces the stored poi list with pois.
func (p *PoiStore) SavePois(pois []datastructure.Poi) error {
	batch := p.db.NewBatch()
	defer batch.Close()

	if err := batch.DeleteRange(poiKeyPrefix, poiKeyEnd, nil); err != nil {
		return fmt.Errorf("clear pois: %w", err)
	}
	for i, poi := range pois {
		val, err := encodePoi(poi)
		if err != nil {
			return fmt.Errorf("encode poi %d: %w", poi.OsmID, err)
		}
		if err := batch.Set(poiKey(uint32(i)), val, nil); err != nil {
			return err
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit pois: %w", err)
	}
	log.Printf("saved %d pois", len(pois))
	return nil
}

// LoadPois returns the stored pois in the order they were saved.
func (p *PoiStore) LoadPois() ([]datastructure.Poi, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: poiKeyPrefix,
		UpperBound: poiKeyEnd,
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	pois := make([]datastructure.Poi, 0)
	for iter.First(); iter.Valid(); iter.Next() {
		poi, err := decodePoi(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decode poi %x: %w", iter.Key(), err)
		}
		pois = append(pois, poi)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return pois, nil
}

func (p *PoiStore) Close() error {
	return p.db.Close()
}
