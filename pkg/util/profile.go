package util

import (
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
)

// MemProfileName builds the heap profile file name of one phase, e.g. mem.mprof -> memparsing.mprof.
func MemProfileName(base, name string) string {
	if strings.HasSuffix(base, ".mprof") {
		return strings.TrimSuffix(base, ".mprof") + name + ".mprof"
	}
	return base + name
}

// RecordMemProfile writes a heap profile of the current phase. empty base disables profiling.
func RecordMemProfile(base, name string) error {
	if base == "" {
		return nil
	}
	filename := MemProfileName(base, name)
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create memory profile %s: %w", filename, err)
	}
	if err := pprof.WriteHeapProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("write memory profile %s: %w", filename, err)
	}
	return f.Close()
}
