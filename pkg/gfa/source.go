package gfa

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
)

// ErrSourceUnavailable is matched by errors.Is for any input that cannot be
// opened or decoded at all.
var ErrSourceUnavailable = errors.New("graph source unavailable")

// SourceError reports an unreadable or missing graph input.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

var gzipMagic = []byte{0x1f, 0x8b}

// Open opens a graph file for line reading. Gzip and bgzip input is detected
// from the magic bytes and decompressed transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &SourceError{Path: path, Err: err}
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, &SourceError{Path: path, Err: errors.New("is a directory")}
	}

	br := bufio.NewReaderSize(f, 1<<20)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, &SourceError{Path: path, Err: err}
	}

	if len(head) == len(gzipMagic) && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		// gzip.Reader reads concatenated members, which covers bgzip blocks.
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, &SourceError{Path: path, Err: fmt.Errorf("gzip header: %w", err)}
		}
		return &gzipFile{Reader: zr, file: f}, nil
	}

	return &plainFile{Reader: br, file: f}, nil
}

type plainFile struct {
	*bufio.Reader
	file *os.File
}

func (p *plainFile) Close() error { return p.file.Close() }

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	ferr := g.file.Close()
	return errors.Join(zerr, ferr)
}

// ParseFile opens path and parses it to the end.
func ParseFile(path string) (*model.Graph, *Report, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rc.Close() }()

	graph, report, err := Parse(rc)
	if err != nil {
		return graph, report, fmt.Errorf("parsing %s: %w", path, err)
	}
	return graph, report, nil
}
