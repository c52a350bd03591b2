package gfa

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallGraph = "S\t1\tACGT\nS\t2\tGGGG\nL\t1\t+\t2\t+\nP\tHG002#1#chr19\t1+,2+\n"

func writeGzip(t *testing.T, path string, members ...string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	// One gzip member per chunk, the way bgzip lays out blocks.
	for _, m := range members {
		zw := gzip.NewWriter(f)
		_, err := zw.Write([]byte(m))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	}
}

func TestParseFile_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.gfa")
	require.NoError(t, os.WriteFile(path, []byte(smallGraph), 0o644))

	graph, report, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, graph.NodeCount())
	assert.Equal(t, 1, graph.SampleCount())
	assert.Equal(t, 4, report.Lines)
}

func TestParseFile_GzipMultiMember(t *testing.T) {
	// Name has no .gz suffix on purpose: detection goes by content.
	path := filepath.Join(t.TempDir(), "graph.gfa")
	writeGzip(t, path, "S\t1\tACGT\nS\t2\tGG", "GG\nL\t1\t+\t2\t+\n")

	graph, _, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, graph.NodeCount())
	assert.Equal(t, []int64{4, 4}, graph.NodeLengths())
	assert.Equal(t, 1, graph.EdgeCount())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.gfa"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Contains(t, srcErr.Path, "nope.gfa")
}

func TestOpen_Directory(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestOpen_CorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gfa.gz")
	require.NoError(t, os.WriteFile(path, []byte{0x1f, 0x8b, 0x00}, 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestParseFile_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gfa")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	graph, _, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, graph.NodeCount())
}

func TestGraphName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"chr19_chunk1.gfa", "chr19_chunk1"},
		{"/data/chr19.hprc-v1.0-pggb.gfa.gz", "chr19.hprc-v1.0-pggb"},
		{"out/apoe.fa.gz.14b29fc.11fba48.smooth.final.gfa", "apoe"},
		{"out/apoe.seqwish.gfa", "apoe"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GraphName(tt.path), tt.path)
	}
}
