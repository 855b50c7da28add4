package kv

import (
	"fmt"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

// bucketSnapshotFile is the stored form of a bucket snapshot, struct of arrays.
type bucketSnapshotFile struct {
	NumTargets uint32
	Nodes      []int32
	Offsets    []uint32
	TargetIDs  []uint32
	Distances  []int32
}

func encodeSnapshot(snap datastructure.BucketSnapshot) ([]byte, error) {
	f := bucketSnapshotFile{
		NumTargets: snap.NumTargets,
		Nodes:      snap.Nodes,
		Offsets:    snap.Offsets,
		TargetIDs:  make([]uint32, len(snap.Buckets)),
		Distances:  make([]int32, len(snap.Buckets)),
	}
	for i, b := range snap.Buckets {
		f.TargetIDs[i] = b.TargetID
		f.Distances[i] = b.Distance
	}

	bb, err := encode(f)
	if err != nil {
		return nil, fmt.Errorf("encode bucket snapshot: %w", err)
	}
	return compress(bb)
}

func decodeSnapshot(bbCompressed []byte) (datastructure.BucketSnapshot, error) {
	bb, err := decompress(bbCompressed)
	if err != nil {
		return datastructure.BucketSnapshot{}, fmt.Errorf("decompress bucket snapshot: %w", err)
	}
	f, err := decode[bucketSnapshotFile](bb)
	if err != nil {
		return datastructure.BucketSnapshot{}, fmt.Errorf("decode bucket snapshot: %w", err)
	}
	if len(f.TargetIDs) != len(f.Distances) {
		return datastructure.BucketSnapshot{}, fmt.Errorf("decode bucket snapshot: %d target ids, %d distances",
			len(f.TargetIDs), len(f.Distances))
	}

	snap := datastructure.BucketSnapshot{
		NumTargets: f.NumTargets,
		Nodes:      f.Nodes,
		Offsets:    f.Offsets,
		Buckets:    make([]datastructure.NodeBucket, len(f.TargetIDs)),
	}
	for i := range f.TargetIDs {
		snap.Buckets[i] = datastructure.NewNodeBucket(f.TargetIDs[i], f.Distances[i])
	}
	return snap, nil
}

func encodePoi(p datastructure.Poi) ([]byte, error) {
	return encode(p)
}

func decodePoi(bb []byte) (datastructure.Poi, error) {
	return decode[datastructure.Poi](bb)
}
