package jenkins

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/census/internal/models"
)

// Jenkins config.xml class markers.
const (
	defClassInlineScript = "org.jenkinsci.plugins.workflow.cps.CpsFlowDefinition"
	defClassScmScript    = "org.jenkinsci.plugins.workflow.cps.CpsScmFlowDefinition"

	rootFreestyle   = "project"
	rootPipeline    = "flow-definition"
	rootFolder      = "com.cloudbees.hudson.plugins.folder.Folder"
	rootMultibranch = "org.jenkinsci.plugins.workflow.multibranch.WorkflowMultiBranchProject"
)

// parseJobConfig extracts the fields the consolidator needs from a job's
// config.xml. Jenkins serializes plugin class names as element names, so
// this walks tokens with an element stack rather than unmarshaling into a
// fixed struct shape.
func parseJobConfig(data []byte) (*models.JobMetadata, error) {
	md := &models.JobMetadata{PipelineType: models.PipelineTypeUnknown}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var stack []string
	scmBacked := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid config.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			stack = append(stack, name)

			if len(stack) == 1 {
				md.PipelineType = pipelineTypeFromRoot(name)
			}

			if name == "definition" {
				switch attrValue(t, "class") {
				case defClassScmScript:
					scmBacked = true
				case defClassInlineScript:
					scmBacked = false
				}
			}

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" || len(stack) == 0 {
				continue
			}
			switch stack[len(stack)-1] {
			case "scriptPath":
				if md.JenkinsfilePath == "" {
					md.JenkinsfilePath = text
				}
			case "url":
				if md.SCMURL == "" && stackContains(stack, "userRemoteConfigs") {
					md.SCMURL = text
				}
			case "remote":
				// Multibranch branch sources carry the repository under
				// <source><remote> instead of a GitSCM block
				if md.SCMURL == "" && stackContains(stack, "source") {
					md.SCMURL = text
				}
			case "name":
				if md.BranchSpecifier == "" && stackContains(stack, "branches") {
					md.BranchSpecifier = text
				}
			}
		}
	}

	// An inline-script pipeline has no Jenkinsfile to fetch
	if !scmBacked && md.PipelineType == models.PipelineTypePipeline {
		md.JenkinsfilePath = ""
	}

	// Wildcard is the Jenkins default when no branch is pinned
	if md.SCMURL != "" && md.BranchSpecifier == "" {
		md.BranchSpecifier = "**"
	}

	return md, nil
}

func pipelineTypeFromRoot(name string) models.PipelineType {
	switch name {
	case rootFreestyle:
		return models.PipelineTypeFreestyle
	case rootPipeline:
		return models.PipelineTypePipeline
	case rootFolder:
		return models.PipelineTypeFolder
	case rootMultibranch:
		return models.PipelineTypeMultibranch
	default:
		return models.PipelineTypeUnknown
	}
}

func attrValue(el xml.StartElement, name string) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func stackContains(stack []string, name string) bool {
	for _, s := range stack {
		if s == name {
			return true
		}
	}
	return false
}
