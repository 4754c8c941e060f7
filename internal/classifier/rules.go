package classifier

import (
	"regexp"
	"strings"
)

// SignatureKind separates the two independent signature families the
// modular standard defines.
type SignatureKind string

const (
	// KindLibrary marks a shared-library declaration.
	KindLibrary SignatureKind = "library"
	// KindModule marks a call site invoking a named module.
	KindModule SignatureKind = "module"
)

// SignatureRule maps one named signature pattern to an extraction function.
// The rule table is the definition of the organization's modular standard;
// updating the standard means updating this table, not the control flow.
type SignatureRule struct {
	Name    string
	Kind    SignatureKind
	Pattern *regexp.Regexp
	// Extract turns one pattern match (full match + submatches) into zero or
	// more identifiers. A nil Extract takes submatch 1 verbatim.
	Extract func(match []string) []string
}

var (
	// @Library('name'), @Library(['a', 'b']), with optional trailing underscore
	libraryAnnotationRe = regexp.MustCompile(`@Library\(\s*(\[[^\)\]]*\]|'[^']*'|"[^"]*")\s*\)`)
	// library 'name' / library('name') step form
	libraryStepRe = regexp.MustCompile(`(?m)^\s*library\s*\(?\s*(?:identifier\s*:\s*)?['"]([^'"]+)['"]`)
	// modules.<name>(...) qualified call
	moduleQualifiedRe = regexp.MustCompile(`\bmodules\.(\w+)\s*\(`)
	// moduleName: "<name>" keyword argument
	moduleKeywordRe = regexp.MustCompile(`\bmoduleName\s*:\s*['"]([^'"]+)['"]`)
	// Top-of-line entry-point call: NamedPipeline(...) at statement start
	moduleEntryCallRe = regexp.MustCompile(`(?m)^\s*(\w+)\s*\(`)

	quotedNameRe = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

// groovyBuiltinSteps are call targets that never name a module. The entry-call
// pattern would otherwise match ordinary declarative and scripted steps.
var groovyBuiltinSteps = map[string]bool{
	"pipeline":   true,
	"node":       true,
	"stage":      true,
	"stages":     true,
	"steps":      true,
	"agent":      true,
	"library":    true,
	"properties": true,
	"parameters": true,
	"options":    true,
	"echo":       true,
	"sh":         true,
	"bat":        true,
	"script":     true,
	"checkout":   true,
	"timeout":    true,
	"retry":      true,
	"if":         true,
	"for":        true,
	"while":      true,
	"switch":     true,
	"catch":      true,
	"println":    true,
	"def":        true,
	"return":     true,
}

// DefaultRules returns the signature table of the modular pipeline standard.
func DefaultRules() []SignatureRule {
	return []SignatureRule{
		{
			Name:    "library-annotation",
			Kind:    KindLibrary,
			Pattern: libraryAnnotationRe,
			Extract: extractLibraryNames,
		},
		{
			Name:    "library-step",
			Kind:    KindLibrary,
			Pattern: libraryStepRe,
			Extract: func(m []string) []string { return []string{stripLibraryVersion(m[1])} },
		},
		{
			Name:    "module-qualified-call",
			Kind:    KindModule,
			Pattern: moduleQualifiedRe,
		},
		{
			Name:    "module-keyword-argument",
			Kind:    KindModule,
			Pattern: moduleKeywordRe,
		},
		{
			Name:    "module-entry-call",
			Kind:    KindModule,
			Pattern: moduleEntryCallRe,
			Extract: extractEntryCall,
		},
	}
}

// extractLibraryNames pulls every quoted library identifier out of a
// @Library argument, which may be a single string or a list.
func extractLibraryNames(match []string) []string {
	var names []string
	for _, q := range quotedNameRe.FindAllStringSubmatch(match[1], -1) {
		if name := stripLibraryVersion(q[1]); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// stripLibraryVersion removes a pinned version suffix: "pipeline-lib@2.1" -> "pipeline-lib".
func stripLibraryVersion(name string) string {
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// extractEntryCall accepts a statement-initial call only when the target is
// not a builtin step, so `MyGenericPipeline(...)` counts and `stage(...)`
// does not.
func extractEntryCall(match []string) []string {
	name := match[1]
	if groovyBuiltinSteps[strings.ToLower(name)] {
		return nil
	}
	return []string{name}
}
