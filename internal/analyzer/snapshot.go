package analyzer

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/market-pulse/internal/model"
)

// SnapshotWriter persists run outputs under <dir>/<slug>/: the full analysis
// snapshot and, for completed runs, a lightweight summary.
type SnapshotWriter struct {
	dir string
}

// NewSnapshotWriter writes snapshots under the given output directory.
func NewSnapshotWriter(dir string) *SnapshotWriter {
	return &SnapshotWriter{dir: dir}
}

// Write persists the analysis result and optional summary, returning the
// marshaled snapshot bytes for run-store persistence.
func (w *SnapshotWriter) Write(slug string, result *model.AnalysisResult, summary *model.Summary) ([]byte, error) {
	runDir := filepath.Join(w.dir, slug)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "snapshot: create run dir")
	}

	snapshot, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: marshal analysis")
	}
	path := filepath.Join(runDir, slug+"_analysis.json")
	if err := os.WriteFile(path, snapshot, 0o644); err != nil {
		return nil, eris.Wrapf(err, "snapshot: write %s", path)
	}

	if summary != nil {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return nil, eris.Wrap(err, "snapshot: marshal summary")
		}
		path := filepath.Join(runDir, slug+"_summary.json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, eris.Wrapf(err, "snapshot: write %s", path)
		}
	}

	return snapshot, nil
}
