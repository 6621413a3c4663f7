package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shrinkScript = `malloc p1 64
write p1 payload
realloc p1 8
malloc p2 16
check
`

func TestRunCommandText(t *testing.T) {
	resetFlags()
	path := writeScript(t, shrinkScript)

	out, err := captureOutput(t, func() error {
		return runScript([]string{path})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "malloc")
	assert.Contains(t, out, "Heap [0x1000, 0x1068) on arena, 2 block(s)")
	assert.Contains(t, out, "data=0x1028")
	assert.Contains(t, out, "data=0x1058")
	assert.Contains(t, out, "24 byte(s) used, 0 byte(s) free")
}

func TestRunCommandJSON(t *testing.T) {
	for _, backend := range []string{"arena", "mmap", "file"} {
		t.Run(backend, func(t *testing.T) {
			resetFlags()
			jsonOut = true
			runBackend = backend
			if backend == "file" {
				runFile = filepath.Join(t.TempDir(), "heap.bin")
			}
			path := writeScript(t, shrinkScript)

			out, err := captureOutput(t, func() error {
				return runScript([]string{path})
			})
			require.NoError(t, err)

			var report runReport
			require.NoError(t, json.Unmarshal([]byte(out), &report))
			assert.Equal(t, backend, report.Backend)
			assert.Equal(t, "0x1000", report.Base)
			assert.Equal(t, "0x1068", report.Boundary)
			require.Len(t, report.Steps, 5)
			assert.Equal(t, "0x1028", report.Steps[2].Addr, "shrink stays in place")
			assert.Equal(t, "0x1058", report.Steps[3].Addr, "remainder reused")
			require.Len(t, report.Blocks, 2)
			assert.Equal(t, uint64(8), report.Blocks[0].Size)
			assert.Equal(t, uint64(16), report.Blocks[1].Size)
			assert.False(t, report.Blocks[1].Free)
		})
	}
}

func TestRunCommandUnknownBackend(t *testing.T) {
	resetFlags()
	runBackend = "tape"
	path := writeScript(t, "malloc a 8\n")

	_, err := captureOutput(t, func() error {
		return runScript([]string{path})
	})
	require.ErrorIs(t, err, errUnknownBackend)
}

func TestRunCommandMissingScript(t *testing.T) {
	resetFlags()
	err := runScript([]string{filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, err)
}
