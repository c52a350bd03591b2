package watcher

import "path/filepath"

// ChangeAnalysis describes which graph inputs need to be analyzed again
type ChangeAnalysis struct {
	Reanalyze    []string // Input paths to parse and analyze again
	Missing      []string // Input paths that no longer exist
	ChangedFiles []string
}

// AnalyzeChanges maps a debounced event onto the configured input paths.
// Paths are compared in absolute form; inputs the event does not name are
// left alone.
func AnalyzeChanges(event ChangeEvent, inputs []string) *ChangeAnalysis {
	changed := make(map[string]bool, len(event.Paths))
	for _, p := range event.Paths {
		changed[absPath(p)] = true
	}

	analysis := &ChangeAnalysis{ChangedFiles: event.Paths}
	for _, in := range inputs {
		if !changed[absPath(in)] {
			continue
		}
		switch event.Type {
		case ChangeTypeModified:
			analysis.Reanalyze = append(analysis.Reanalyze, in)
		case ChangeTypeRemoved:
			// A removed file is usually about to be replaced; analyzing now
			// would only report it unavailable.
			analysis.Missing = append(analysis.Missing, in)
		}
	}
	return analysis
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
