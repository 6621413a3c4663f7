package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/brk"
)

func TestParseScript(t *testing.T) {
	src := `
# reuse scenario
malloc p1 10
MALLOC p2 0x0a
calloc z 4 8
write p1 hello world
realloc p1 64
free p2
check
`
	cmds, err := parseScript(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, cmds, 7)

	assert.Equal(t, command{Line: 3, Op: "malloc", Name: "p1", Args: []uint64{10}}, cmds[0])
	assert.Equal(t, []uint64{10}, cmds[1].Args, "hex sizes accepted")
	assert.Equal(t, []uint64{4, 8}, cmds[2].Args)
	assert.Equal(t, "hello world", cmds[3].Text)
	assert.Equal(t, "free", cmds[5].Op)
	assert.Equal(t, command{Line: 9, Op: "check"}, cmds[6])
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown command", "alloc a 10"},
		{"missing name", "malloc"},
		{"missing size", "malloc a"},
		{"extra argument", "free a 10"},
		{"bad number", "malloc a ten"},
		{"write without text", "write a"},
		{"check with argument", "check now"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseScript(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func newTestSession(t *testing.T, limit int) *session {
	t.Helper()
	a, err := brk.NewArena(brk.ArenaOptions{Limit: limit})
	require.NoError(t, err)
	h, err := alloc.New(a, nil)
	require.NoError(t, err)
	return newSession(h)
}

func TestSessionReuseScenario(t *testing.T) {
	s := newTestSession(t, 1<<16)
	cmds, err := parseScript(strings.NewReader("malloc p1 10\nmalloc p2 10\nfree p1\nmalloc p3 8\ncheck\n"))
	require.NoError(t, err)

	results, err := s.run(cmds)
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, results[0].Addr, results[3].Addr, "p3 reuses p1")
	assert.Empty(t, results[4].Err)
}

func TestSessionReportsFailuresWithoutStopping(t *testing.T) {
	s := newTestSession(t, 128)
	cmds, err := parseScript(strings.NewReader("malloc big 1000\nmalloc zero 0\nwrite ghost hi\nmalloc ok 8\n"))
	require.NoError(t, err)

	results, err := s.run(cmds)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Contains(t, results[0].Err, "exhausted")
	assert.Contains(t, results[1].Err, "invalid request")
	assert.Contains(t, results[2].Err, "invalid pointer")
	assert.Empty(t, results[3].Err)
	assert.NotEmpty(t, results[3].Addr)
}

func TestSessionWriteAndRealloc(t *testing.T) {
	s := newTestSession(t, 1<<16)
	cmds, err := parseScript(strings.NewReader("malloc a 8\nmalloc guard 8\nwrite a heapkit!\nrealloc a 64\n"))
	require.NoError(t, err)

	_, err = s.run(cmds)
	require.NoError(t, err)

	data, err := s.h.Bytes(s.names["a"])
	require.NoError(t, err)
	assert.Equal(t, "heapkit!", string(data[:8]))
}

func TestSessionWriteTooLong(t *testing.T) {
	s := newTestSession(t, 1<<16)
	cmds, err := parseScript(strings.NewReader("malloc a 4\nwrite a toolong\n"))
	require.NoError(t, err)

	results, err := s.run(cmds)
	require.NoError(t, err)
	assert.Contains(t, results[1].Err, "does not fit")
}
