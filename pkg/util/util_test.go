package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickSort(t *testing.T) {
	arr := []int{4, 3, 2, 1, 10, 5555, -1, 20, 100, -100}
	sorted := QuickSortG(arr, func(a, b int) int {
		if a < b {
			return -1
		} else if a > b {
			return 1
		} else {
			return 0
		}
	})

	assert.Equal(t, []int{-100, -1, 1, 2, 3, 4, 10, 20, 100, 5555}, sorted)
	// input is not modified
	assert.Equal(t, 4, arr[0])
	assert.Empty(t, QuickSortG([]int{}, func(a, b int) int { return a - b }))
}

func TestReverseG(t *testing.T) {
	arr := []int32{1, 2, 3}
	assert.Equal(t, []int32{3, 2, 1}, ReverseG(arr))
	assert.Equal(t, []int32{1, 2, 3}, arr)
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1.23, RoundFloat(1.2345, 2))
	assert.Equal(t, 2.0, RoundFloat(1.5, 0))
}

func TestMemProfileName(t *testing.T) {
	base := "navigatorxmem.mprof"
	assert.Equal(t, "navigatorxmemload_contracted_graph.mprof", MemProfileName(base, "load_contracted_graph"))
	// tiap phase dibangun dari nama flag asli, bukan dari nama phase sebelumnya
	assert.Equal(t, "navigatorxmempoi_buckets.mprof", MemProfileName(base, "poi_buckets"))
	assert.Equal(t, "memdumppoi_buckets", MemProfileName("memdump", "poi_buckets"))
}

func TestRecordMemProfile(t *testing.T) {
	assert.NoError(t, RecordMemProfile("", "skip"))

	base := filepath.Join(t.TempDir(), "mem.mprof")
	require.NoError(t, RecordMemProfile(base, "first"))
	require.NoError(t, RecordMemProfile(base, "second"))
	assert.FileExists(t, filepath.Join(filepath.Dir(base), "memfirst.mprof"))
	assert.FileExists(t, filepath.Join(filepath.Dir(base), "memsecond.mprof"))

	err := RecordMemProfile(filepath.Join(t.TempDir(), "missing", "mem.mprof"), "x")
	assert.Error(t, err)
}
