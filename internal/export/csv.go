// -----------------------------------------------------------------------
// CSV export - report rows for spreadsheet consumption
// -----------------------------------------------------------------------

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/models"
)

// setSeparator joins multi-valued cells (shared libraries, module names).
const setSeparator = ";"

var columns = []string{
	"team",
	"full_path",
	"name",
	"url",
	"pipeline_type",
	"scm_url",
	"jenkinsfile_path",
	"branch_specifier",
	"modularity",
	"shared_libraries",
	"module_names",
	"last_run_at",
	"is_active",
	"error",
}

// CSVWriter renders job records as a CSV report.
type CSVWriter struct {
	logger arbor.ILogger
}

// NewCSVWriter creates a CSV report writer.
func NewCSVWriter(logger arbor.ILogger) *CSVWriter {
	return &CSVWriter{logger: logger}
}

// WriteFile writes the report to path, creating parent directories as
// needed.
func (w *CSVWriter) WriteFile(path string, records []models.JobRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := w.Write(f, records); err != nil {
		return err
	}

	w.logger.Info().
		Str("path", path).
		Int("rows", len(records)).
		Msg("Report written")
	return nil
}

// Write renders the records to out, header row first.
func (w *CSVWriter) Write(out io.Writer, records []models.JobRecord) error {
	cw := csv.NewWriter(out)

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		if err := cw.Write(row(rec)); err != nil {
			return fmt.Errorf("failed to write row for %q: %w", rec.FullPath, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// row renders one record. Absent values become empty cells, never a
// placeholder string.
func row(rec models.JobRecord) []string {
	lastRun := ""
	if rec.LastRunAt != nil {
		lastRun = rec.LastRunAt.UTC().Format(time.RFC3339)
	}

	return []string{
		rec.Team,
		rec.FullPath,
		rec.Name,
		rec.URL,
		string(rec.PipelineType),
		rec.SCMURL,
		rec.JenkinsfilePath,
		rec.BranchSpecifier,
		string(rec.Modularity),
		strings.Join(rec.SharedLibraries, setSeparator),
		strings.Join(rec.ModuleNames, setSeparator),
		lastRun,
		strconv.FormatBool(rec.IsActive),
		rec.Error,
	}
}
