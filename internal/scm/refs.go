package scm

import "strings"

// ResolveRefs turns a Jenkins branch specifier into the ordered list of
// refs to try when fetching the pipeline source. Wildcard specifiers fall
// back to the configured default branches; a concrete specifier is tried
// as-is after stripping the remote and refs/heads prefixes.
func ResolveRefs(branchSpecifier string, defaults []string) []string {
	spec := strings.TrimSpace(branchSpecifier)

	switch spec {
	case "", "**", "*/**", "Any":
		return defaults
	}

	spec = strings.TrimPrefix(spec, "*/")
	spec = strings.TrimPrefix(spec, "refs/heads/")
	if spec == "" || strings.ContainsAny(spec, "*?") {
		return defaults
	}

	return []string{spec}
}
