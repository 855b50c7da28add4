package datastructure

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kelindar/binary"
	"github.com/klauspost/compress/zstd"
)

var (
	ErrChecksumMismatch = errors.New("graph file checksum mismatch")
	ErrCorruptGraphFile = errors.New("corrupt graph file")
)

const (
	flagForward  uint8 = 1
	flagBackward uint8 = 2
	flagShortcut uint8 = 4
)

// graphFile is the on-disk layout of a QueryGraph (struct of arrays, kelindar/binary encoded, zstd compressed).
type graphFile struct {
	FirstOut  []int32
	Targets   []int32
	Distances []int32
	Vias      []int32
	Flags     []uint8
	Rank      []int32
	Lats      []float64
	Lons      []float64
	SegFrom   []int32
	SegTo     []int32
	SegWeight []int32
	Checksum  uint64
}

func EncodeQueryGraph(g *QueryGraph) ([]byte, error) {
	gf := graphFile{
		FirstOut:  g.FirstOut,
		Targets:   make([]int32, len(g.Edges)),
		Distances: make([]int32, len(g.Edges)),
		Vias:      make([]int32, len(g.Edges)),
		Flags:     make([]uint8, len(g.Edges)),
		Rank:      g.Rank,
		Lats:      make([]float64, len(g.Coordinates)),
		Lons:      make([]float64, len(g.Coordinates)),
		SegFrom:   make([]int32, len(g.Segments)),
		SegTo:     make([]int32, len(g.Segments)),
		SegWeight: make([]int32, len(g.Segments)),
		Checksum:  g.Checksum,
	}

	for i, e := range g.Edges {
		gf.Targets[i] = e.Target
		gf.Distances[i] = e.Data.Distance
		gf.Vias[i] = e.Data.Via
		var flags uint8
		if e.Data.Forward {
			flags |= flagForward
		}
		if e.Data.Backward {
			flags |= flagBackward
		}
		if e.Data.Shortcut {
			flags |= flagShortcut
		}
		gf.Flags[i] = flags
	}
	for i, c := range g.Coordinates {
		gf.Lats[i] = c.Lat
		gf.Lons[i] = c.Lon
	}
	for i, s := range g.Segments {
		gf.SegFrom[i] = s.From
		gf.SegTo[i] = s.To
		gf.SegWeight[i] = s.Weight
	}

	encoded, err := binary.Marshal(gf)
	if err != nil {
		return nil, fmt.Errorf("encode query graph: %w", err)
	}

	var out bytes.Buffer
	if err := compressData(encoded, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func DecodeQueryGraph(data []byte) (*QueryGraph, error) {
	var raw bytes.Buffer
	if err := decompressData(data, &raw); err != nil {
		return nil, fmt.Errorf("decompress query graph: %w", err)
	}

	var gf graphFile
	if err := binary.Unmarshal(raw.Bytes(), &gf); err != nil {
		return nil, fmt.Errorf("decode query graph: %w", err)
	}
	if err := gf.validate(); err != nil {
		return nil, err
	}

	g := &QueryGraph{
		FirstOut:    gf.FirstOut,
		Edges:       make([]QueryEdge, len(gf.Targets)),
		Rank:        gf.Rank,
		Coordinates: NewCoordinates(gf.Lats, gf.Lons),
		Segments:    make([]Edge, len(gf.SegFrom)),
	}
	for i := range gf.Targets {
		flags := gf.Flags[i]
		g.Edges[i] = NewQueryEdge(gf.Targets[i], gf.Distances[i], flags&flagForward != 0,
			flags&flagBackward != 0, flags&flagShortcut != 0, gf.Vias[i])
	}
	for i := range gf.SegFrom {
		g.Segments[i] = NewEdge(gf.SegFrom[i], gf.SegTo[i], gf.SegWeight[i])
	}

	g.Checksum = g.computeChecksum()
	if g.Checksum != gf.Checksum {
		return nil, ErrChecksumMismatch
	}
	return g, nil
}

// validate checks the array lengths & the csr offsets before any of them is indexed.
func (gf *graphFile) validate() error {
	if len(gf.FirstOut) == 0 || gf.FirstOut[0] != 0 {
		return fmt.Errorf("first out offsets must start at 0: %w", ErrCorruptGraphFile)
	}
	numNodes := len(gf.FirstOut) - 1
	numEdges := len(gf.Targets)
	for i := 1; i < len(gf.FirstOut); i++ {
		if gf.FirstOut[i] < gf.FirstOut[i-1] {
			return fmt.Errorf("first out offsets decrease at node %d: %w", i-1, ErrCorruptGraphFile)
		}
	}
	if int(gf.FirstOut[numNodes]) != numEdges {
		return fmt.Errorf("first out ends at %d, file has %d edges: %w", gf.FirstOut[numNodes], numEdges, ErrCorruptGraphFile)
	}
	if len(gf.Distances) != numEdges || len(gf.Vias) != numEdges || len(gf.Flags) != numEdges {
		return fmt.Errorf("edge arrays have different lengths: %w", ErrCorruptGraphFile)
	}
	for i, target := range gf.Targets {
		if target < 0 || int(target) >= numNodes {
			return fmt.Errorf("edge %d targets node %d of %d: %w", i, target, numNodes, ErrCorruptGraphFile)
		}
	}
	if len(gf.Rank) != numNodes {
		return fmt.Errorf("%d ranks for %d nodes: %w", len(gf.Rank), numNodes, ErrCorruptGraphFile)
	}
	if len(gf.Lats) != len(gf.Lons) || (len(gf.Lats) != 0 && len(gf.Lats) != numNodes) {
		return fmt.Errorf("%d lats, %d lons for %d nodes: %w", len(gf.Lats), len(gf.Lons), numNodes, ErrCorruptGraphFile)
	}
	if len(gf.SegTo) != len(gf.SegFrom) || len(gf.SegWeight) != len(gf.SegFrom) {
		return fmt.Errorf("segment arrays have different lengths: %w", ErrCorruptGraphFile)
	}
	return nil
}

func SaveQueryGraph(g *QueryGraph, filename string) error {
	data, err := EncodeQueryGraph(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write graph file %s: %w", filename, err)
	}
	log.Printf("saved contracted graph to %s (%d nodes, %d edges)", filename, g.GetNumberOfNodes(), g.GetNumberOfEdges())
	return nil
}

func LoadQueryGraph(filename string) (*QueryGraph, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read graph file %s: %w", filename, err)
	}
	g, err := DecodeQueryGraph(data)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded contracted graph from %s (%d nodes, %d edges)", filename, g.GetNumberOfNodes(), g.GetNumberOfEdges())
	return g, nil
}

func compressData(inData []byte, bbufOut *bytes.Buffer) error {
	encoder, err := zstd.NewWriter(bbufOut, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	_, err = io.Copy(encoder, bytes.NewReader(inData))
	if err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

func decompressData(inData []byte, out io.Writer) error {
	d, err := zstd.NewReader(bytes.NewReader(inData))
	if err != nil {
		return err
	}
	defer d.Close()

	_, err = io.Copy(out, d)
	return err
}
