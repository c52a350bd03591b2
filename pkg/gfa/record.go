// Package gfa parses line-oriented graph exchange text into a model.Graph.
//
// Only segment (S), link (L) and path (P) records are interpreted; every other
// record tag is ignored. A bad line never aborts a parse: it is counted in the
// Report and skipped.
package gfa

import (
	"strconv"
	"strings"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
)

// RecordKind identifies the variant of a parsed line.
type RecordKind int

const (
	KindBlank RecordKind = iota
	KindSegment
	KindLink
	KindPath
	KindUnrecognized
	KindMalformed
)

func (k RecordKind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindSegment:
		return "segment"
	case KindLink:
		return "link"
	case KindPath:
		return "path"
	case KindUnrecognized:
		return "unrecognized"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

// Record is one parsed line. The concrete type is one of Blank, Segment,
// Link, PathRecord, Unrecognized or Malformed.
type Record interface {
	Kind() RecordKind
}

// Blank is an empty or whitespace-only line.
type Blank struct{}

// Segment defines a node.
type Segment struct {
	ID     string
	Length int64
	// MissingSequence is set when the line had no sequence field, or a "*"
	// placeholder without a length tag. Length is 0 in both cases.
	MissingSequence bool
}

// Link defines a directed edge. Orientations and overlap are dropped.
type Link struct {
	From string
	To   string
}

// PathRecord defines a named traversal.
type PathRecord struct {
	ID    string
	Steps []model.Step
}

// Unrecognized is a line with a tag other than S, L or P.
type Unrecognized struct {
	Tag string
}

// Malformed is a line whose tag is recognized but which has too few fields.
type Malformed struct {
	Tag    string
	Fields int
	Want   int
}

func (Blank) Kind() RecordKind        { return KindBlank }
func (Segment) Kind() RecordKind      { return KindSegment }
func (Link) Kind() RecordKind         { return KindLink }
func (PathRecord) Kind() RecordKind   { return KindPath }
func (Unrecognized) Kind() RecordKind { return KindUnrecognized }
func (Malformed) Kind() RecordKind    { return KindMalformed }

// Minimum field counts per tag.
const (
	minSegmentFields = 2 // S <id>, sequence optional
	minLinkFields    = 4 // L <from> <orient> <to>, to-orient and overlap optional
	minPathFields    = 3 // P <id> <steps>
)

// ParseLine classifies one line of input. Leading and trailing whitespace is
// removed first, so a trailing tab does not produce an empty field.
func ParseLine(line string) Record {
	line = strings.TrimSpace(line)
	if line == "" {
		return Blank{}
	}

	tag, _, _ := strings.Cut(line, "\t")
	switch tag {
	case "S":
		return parseSegment(line)
	case "L":
		return parseLink(line)
	case "P":
		return parsePath(line)
	default:
		return Unrecognized{Tag: tag}
	}
}

func parseSegment(line string) Record {
	// The sequence can be very long; splitting into at most four parts
	// keeps the optional tags in one slice without scanning the sequence twice.
	parts := strings.SplitN(line, "\t", 4)
	if len(parts) < minSegmentFields {
		return Malformed{Tag: "S", Fields: len(parts), Want: minSegmentFields}
	}

	// The id is cloned so the graph does not pin the whole line, sequence
	// included.
	seg := Segment{ID: strings.Clone(parts[1])}
	if len(parts) < 3 {
		seg.MissingSequence = true
		return seg
	}

	seq := parts[2]
	if seq != "*" {
		seg.Length = int64(len(seq))
		return seg
	}

	if len(parts) == 4 {
		if n, ok := lengthTag(parts[3]); ok {
			seg.Length = n
			return seg
		}
	}
	seg.MissingSequence = true
	return seg
}

// lengthTag finds an LN:i:<n> optional field.
func lengthTag(tags string) (int64, bool) {
	for _, tag := range strings.Split(tags, "\t") {
		if v, ok := strings.CutPrefix(tag, "LN:i:"); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

func parseLink(line string) Record {
	parts := strings.SplitN(line, "\t", 6)
	if len(parts) < minLinkFields {
		return Malformed{Tag: "L", Fields: len(parts), Want: minLinkFields}
	}
	return Link{From: strings.Clone(parts[1]), To: strings.Clone(parts[3])}
}

func parsePath(line string) Record {
	parts := strings.SplitN(line, "\t", 4)
	if len(parts) < minPathFields {
		return Malformed{Tag: "P", Fields: len(parts), Want: minPathFields}
	}
	return PathRecord{ID: strings.Clone(parts[1]), Steps: parseSteps(parts[2])}
}

// parseSteps splits "11+,12-,13+" into steps. A token without a trailing
// orientation keeps its full text as the node id.
func parseSteps(field string) []model.Step {
	tokens := strings.Split(field, ",")
	steps := make([]model.Step, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		step := model.Step{NodeID: tok, Orientation: '?'}
		if last := tok[len(tok)-1]; len(tok) > 1 && (last == '+' || last == '-') {
			step.NodeID = tok[:len(tok)-1]
			step.Orientation = last
		}
		steps = append(steps, step)
	}
	return steps
}
