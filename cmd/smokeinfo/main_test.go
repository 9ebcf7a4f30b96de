package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/smoke/smokefile"
)

func TestScanReportsChangedBlocks(t *testing.T) {
	loc := smokefile.Locator{Dirs: []string{t.TempDir()}}
	grid := make([]float32, 16*16*16)

	w := smokefile.NewWriter(loc)
	require.NoError(t, w.WriteInit("info", 16, grid, 8))
	grid[3] = 1
	require.NoError(t, w.AddFrame(grid))
	require.NoError(t, w.AddFrame(grid))
	require.NoError(t, w.StopWrite())

	r := smokefile.NewReader(loc)
	require.NoError(t, r.ReadInit("info"))
	defer r.StopRead()

	frames, err := scan(r)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, frameInfo{Frame: 0, ChangedBlocks: 8, PayloadBytes: 8 + 8*512*4}, frames[0])
	assert.Equal(t, frameInfo{Frame: 1, ChangedBlocks: 1, PayloadBytes: 8 + 512*4, TotalDensity: 1}, frames[1])
	assert.Equal(t, frameInfo{Frame: 2, ChangedBlocks: 0, PayloadBytes: 8, TotalDensity: 1}, frames[2])
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.csv")
	require.NoError(t, writeCSV(path, []frameInfo{{Frame: 0, ChangedBlocks: 2, PayloadBytes: 40}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "frame,changed_blocks,payload_bytes,total_density\n0,2,40,0\n", string(data))
}
