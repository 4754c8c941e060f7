package models

import "strings"

// Jenkins item class names used to map tree nodes to pipeline types.
const (
	classFolder      = "com.cloudbees.hudson.plugins.folder.Folder"
	classWorkflowJob = "org.jenkinsci.plugins.workflow.job.WorkflowJob"
	classMultibranch = "org.jenkinsci.plugins.workflow.multibranch.WorkflowMultiBranchProject"
	classFreestyle   = "hudson.model.FreeStyleProject"
)

// ChildRef is one entry returned by the CI server when listing a folder.
type ChildRef struct {
	Name        string
	Class       string // Jenkins _class of the item
	URL         string
	HasChildren bool // The item carries a nested jobs list
}

// Kind maps the Jenkins item class to a PipelineType. Items of an unknown
// class that still expose children are treated as folders so the walker can
// descend into organization folders and similar plugin types.
func (c ChildRef) Kind() PipelineType {
	switch c.Class {
	case classFolder:
		return PipelineTypeFolder
	case classWorkflowJob:
		return PipelineTypePipeline
	case classMultibranch:
		return PipelineTypeMultibranch
	case classFreestyle:
		return PipelineTypeFreestyle
	}
	if c.HasChildren {
		return PipelineTypeFolder
	}
	return PipelineTypeUnknown
}

// Leaf is one executable job discovered by the tree walker. A leaf with Err
// set is synthetic: it marks a subtree that could not be traversed and is
// reported as an error-flagged record instead of aborting the run.
type Leaf struct {
	Path []string
	Kind PipelineType
	URL  string
	Err  error
}

// FullPathString renders the leaf path as a single key.
func (l Leaf) FullPathString() string {
	return JoinPath(l.Path)
}

// JobMetadata is the job configuration resolved from the CI server.
type JobMetadata struct {
	PipelineType    PipelineType
	SCMURL          string // Raw URL as configured, may be scp-style
	JenkinsfilePath string // Empty for inline-script and non-pipeline jobs
	BranchSpecifier string
}

// RepoRef identifies one repository on a source-control host.
type RepoRef struct {
	Host        string // e.g. "gitlab.example.com", keeps a non-default port
	ProjectPath string // group/subgroup/project, no leading slash, no .git
}

// Owner returns the first segment of the project path.
func (r RepoRef) Owner() string {
	if i := strings.Index(r.ProjectPath, "/"); i > 0 {
		return r.ProjectPath[:i]
	}
	return r.ProjectPath
}

// Repo returns the project path with the owner segment removed.
func (r RepoRef) Repo() string {
	if i := strings.Index(r.ProjectPath, "/"); i >= 0 {
		return r.ProjectPath[i+1:]
	}
	return ""
}

func (r RepoRef) String() string {
	return r.Host + "/" + r.ProjectPath
}
