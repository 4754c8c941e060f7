// -----------------------------------------------------------------------
// Job Record - Immutable per-job row of the consolidation report
// -----------------------------------------------------------------------

package models

import (
	"strings"
	"time"
)

// PipelineType classifies how a Jenkins job is defined.
type PipelineType string

const (
	PipelineTypeFreestyle   PipelineType = "freestyle"
	PipelineTypePipeline    PipelineType = "pipeline"
	PipelineTypeMultibranch PipelineType = "multibranch"
	PipelineTypeFolder      PipelineType = "folder"
	PipelineTypeUnknown     PipelineType = "unknown"
)

// Modularity is the verdict of the pipeline classifier.
type Modularity string

const (
	ModularityModular Modularity = "modular"
	ModularityLegacy  Modularity = "legacy"
	// ModularityUndetermined means the pipeline source could not be retrieved.
	// It is never inferred from absence of signatures, only from absence of text.
	ModularityUndetermined Modularity = "undetermined"
)

// PathSeparator joins hierarchy segments into a full path string.
const PathSeparator = "/"

// JobRecord is one row of the final report. A record is assembled once per
// leaf job per run and is not modified after the consolidator hands it off
// to the export step.
type JobRecord struct {
	// Core identification
	Name     string   `json:"name"`      // Job name within its parent folder
	Path     []string `json:"path"`      // Parent folder names + job name, root first
	FullPath string   `json:"full_path"` // Path joined with PathSeparator; unique per run
	URL      string   `json:"url"`       // Jenkins job URL
	Team     string   `json:"team"`      // First path segment (owning team convention)

	// Job configuration
	PipelineType    PipelineType `json:"pipeline_type"`
	SCMURL          string       `json:"scm_url,omitempty"`          // Normalized https URL, empty when no SCM configured
	JenkinsfilePath string       `json:"jenkinsfile_path,omitempty"` // Empty when the job is not SCM-backed
	BranchSpecifier string       `json:"branch_specifier,omitempty"`

	// Classification
	Modularity      Modularity `json:"modularity"`
	SharedLibraries []string   `json:"shared_libraries"` // Sorted, may be empty
	ModuleNames     []string   `json:"module_names"`     // Sorted, may be empty
	Degraded        bool       `json:"degraded"`         // Classifier fell back to raw-text matching

	// Activity
	LastRunAt *time.Time `json:"last_run_at,omitempty"` // Nil when the job never ran
	IsActive  bool       `json:"is_active"`

	// Error holds a retrieval/parsing failure for this specific job. When set,
	// the other derived fields keep their undetermined/absent defaults; the
	// record is still emitted so the report row count matches the leaf count.
	Error string `json:"error,omitempty"`
}

// JoinPath renders a hierarchy path as a single string key.
func JoinPath(path []string) string {
	return strings.Join(path, PathSeparator)
}

// NewJobRecord creates a record with identity fields populated from a
// hierarchy path and every derived field at its default value.
func NewJobRecord(path []string, url string) JobRecord {
	rec := JobRecord{
		Path:            path,
		FullPath:        JoinPath(path),
		URL:             url,
		PipelineType:    PipelineTypeUnknown,
		Modularity:      ModularityUndetermined,
		SharedLibraries: []string{},
		ModuleNames:     []string{},
	}
	if len(path) > 0 {
		rec.Name = path[len(path)-1]
		rec.Team = path[0]
	}
	return rec
}
