package gfa

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/logging"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
)

// Report summarizes one parse pass.
type Report struct {
	Lines        int `json:"lines"`
	Blank        int `json:"blank"`
	Segments     int `json:"segments"`
	Links        int `json:"links"`
	Paths        int `json:"paths"`
	Unrecognized int `json:"unrecognized"`

	Malformed        int `json:"malformed"`         // Skipped lines with too few fields
	MissingSequences int `json:"missing_sequences"` // Segments kept with length 0
	DuplicateNodes   int `json:"duplicate_nodes"`   // Later definition replaced the earlier one
	DuplicatePaths   int `json:"duplicate_paths"`
	DanglingEdgeRefs int `json:"dangling_edge_refs"` // Edge endpoints with no segment record
	DanglingPathRefs int `json:"dangling_path_refs"` // Path steps with no segment record
}

// Warnings is the total number of recovered input problems.
func (r *Report) Warnings() int {
	return r.Malformed + r.MissingSequences + r.DuplicateNodes + r.DuplicatePaths +
		r.DanglingEdgeRefs + r.DanglingPathRefs
}

// ReadError is an I/O failure while reading the line stream.
type ReadError struct {
	Line int // Last line read successfully
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading graph after line %d: %v", e.Line, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Parser turns a line stream into a model.Graph.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser logging under the "gfa" component.
func NewParser() *Parser {
	return &Parser{logger: logging.New("gfa")}
}

// Parse reads r to the end with a fresh Parser.
func Parse(r io.Reader) (*model.Graph, *Report, error) {
	return NewParser().Parse(r)
}

// Parse reads every line of r exactly once, in order. Records are applied to
// the graph as they are read; a node defined twice keeps the later definition.
// Only a read error stops the pass. The partial graph and report are returned
// alongside it.
func (p *Parser) Parse(r io.Reader) (*model.Graph, *Report, error) {
	graph := model.NewGraph()
	report := &Report{}

	br := bufio.NewReaderSize(r, 1<<20)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			report.Lines++
			p.apply(graph, report, ParseLine(line))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return graph, report, &ReadError{Line: report.Lines, Err: err}
		}
	}

	report.DanglingEdgeRefs, report.DanglingPathRefs = graph.DanglingReferences()
	p.summarize(report)

	return graph, report, nil
}

func (p *Parser) apply(graph *model.Graph, report *Report, rec Record) {
	switch r := rec.(type) {
	case Blank:
		report.Blank++

	case Segment:
		report.Segments++
		if r.MissingSequence {
			report.MissingSequences++
			p.logger.Debug("segment without sequence", "line", report.Lines, "id", r.ID)
		}
		if graph.AddNode(model.Node{ID: r.ID, Length: r.Length}) {
			report.DuplicateNodes++
			p.logger.Debug("duplicate segment id, keeping later definition", "line", report.Lines, "id", r.ID)
		}

	case Link:
		report.Links++
		graph.AddEdge(model.Edge{From: r.From, To: r.To})

	case PathRecord:
		report.Paths++
		if graph.AddPath(model.Path{ID: r.ID, Steps: r.Steps}) {
			report.DuplicatePaths++
			p.logger.Debug("duplicate path id, keeping later definition", "line", report.Lines, "id", r.ID)
		}

	case Unrecognized:
		report.Unrecognized++
		p.logger.Log(context.Background(), logging.LevelTrace, "ignoring record", "line", report.Lines, "tag", r.Tag)

	case Malformed:
		report.Malformed++
		p.logger.Debug("skipping malformed line", "line", report.Lines, "tag", r.Tag, "fields", r.Fields, "want", r.Want)

	default:
		panic(fmt.Sprintf("gfa: unhandled record kind %v", rec.Kind()))
	}
}

func (p *Parser) summarize(report *Report) {
	if report.Malformed > 0 {
		p.logger.Warn("skipped malformed lines", "count", report.Malformed)
	}
	if report.MissingSequences > 0 {
		p.logger.Warn("segments without sequence length", "count", report.MissingSequences)
	}
	if report.DuplicateNodes > 0 || report.DuplicatePaths > 0 {
		p.logger.Warn("duplicate ids replaced by later definitions",
			"nodes", report.DuplicateNodes, "paths", report.DuplicatePaths)
	}
	if report.DanglingEdgeRefs > 0 || report.DanglingPathRefs > 0 {
		p.logger.Warn("references to undefined segments",
			"edgeEndpoints", report.DanglingEdgeRefs, "pathSteps", report.DanglingPathRefs)
	}
}
