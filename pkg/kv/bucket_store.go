package kv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

var (
	ErrBucketsNotFound = errors.New("bucket snapshot not found")
)

const bucketKeyPrefix = "buckets/"

/*
BucketStore. cache bucket table (hasil backward search semua target) di badger,
biar server tidak perlu build ulang bucket poi setiap start.
key = xxhash(checksum graph, semua phantom target), jadi graph atau target set yang berubah otomatis dapat key baru.
*/
type BucketStore struct {
	db *badger.DB
}

func NewBucketStore(db *badger.DB) *BucketStore {
	return &BucketStore{db}
}

// OpenBucketStore opens a badger db at dir, or an in-memory one if dir is empty.
func OpenBucketStore(dir string) (*BucketStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open bucket store %q: %w", dir, err)
	}
	return NewBucketStore(db), nil
}

// BucketKey identifies the bucket table of targets on the graph with the given checksum.
func BucketKey(graphChecksum uint64, targets []datastructure.PhantomNode) []byte {
	h := xxhash.New()
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], graphChecksum)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(len(targets)))
	h.Write(buf)
	for _, t := range targets {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(t.ForwardNodeID))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(t.ReverseNodeID))
		binary.LittleEndian.PutUint32(buf[8:12], uint32(t.ForwardWeight))
		binary.LittleEndian.PutUint32(buf[12:16], uint32(t.ReverseWeight))
		h.Write(buf)
	}
	return []byte(fmt.Sprintf("%s%016x", bucketKeyPrefix, h.Sum64()))
}

func (k *BucketStore) Save(key []byte, snap datastructure.BucketSnapshot) error {
	val, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	err = k.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
	if err != nil {
		return fmt.Errorf("save bucket snapshot %s: %w", key, err)
	}
	log.Printf("saved bucket snapshot %s: %d nodes, %d entries, %d bytes", key, len(snap.Nodes), len(snap.Buckets), len(val))
	return nil
}

func (k *BucketStore) Load(key []byte) (datastructure.BucketSnapshot, error) {
	val, err := k.get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return datastructure.BucketSnapshot{}, ErrBucketsNotFound
	}
	if err != nil {
		return datastructure.BucketSnapshot{}, fmt.Errorf("load bucket snapshot %s: %w", key, err)
	}
	return decodeSnapshot(val)
}

func (k *BucketStore) Delete(key []byte) error {
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (k *BucketStore) get(key []byte) ([]byte, error) {
	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}

func (k *BucketStore) Close() error {
	return k.db.Close()
}
