package gfa

import (
	"path/filepath"
	"strings"
)

var (
	// Removed wherever they appear in the base name.
	nameExtensions = []string{".gz", ".gfa", ".fa"}

	// Build-tool suffixes left by pggb and seqwish runs.
	nameSuffixes = []string{".smooth.final", ".seqwish", ".14b29fc.11fba48", ".14b29fc"}
)

// GraphName derives a short display name from a graph file path,
// e.g. "chr19.hprc-v1.0-pggb.gfa.gz" -> "chr19.hprc-v1.0-pggb".
func GraphName(path string) string {
	name := filepath.Base(path)
	for _, ext := range nameExtensions {
		name = strings.ReplaceAll(name, ext, "")
	}
	for _, suffix := range nameSuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}
	return name
}
