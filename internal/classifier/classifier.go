// -----------------------------------------------------------------------
// Pipeline Classifier - modular-design verdict over pipeline source text
// -----------------------------------------------------------------------

package classifier

import (
	"sort"

	"github.com/ternarybob/census/internal/models"
)

// Policy decides how the two signature families combine into a verdict.
type Policy string

const (
	// PolicyConjunctive requires both a shared-library declaration and a
	// module call. Importing without invoking, or inline logic without an
	// import, is legacy.
	PolicyConjunctive Policy = "conjunctive"
	// PolicyAny accepts either signal on its own.
	PolicyAny Policy = "any"
)

// Result is the classifier output for one pipeline definition.
type Result struct {
	Modularity      models.Modularity
	SharedLibraries []string // Sorted, distinct
	ModuleNames     []string // Sorted, distinct
	// Degraded is set when the structural pass over the source failed and
	// the rules ran over raw text instead. A quality flag, not an error.
	Degraded bool
}

// Classifier scans pipeline source text against a signature rule table.
// Classify is deterministic and pure; a Classifier is safe for concurrent use.
type Classifier struct {
	rules  []SignatureRule
	policy Policy
}

// New creates a classifier with the default rule table.
func New(policy Policy) *Classifier {
	return NewWithRules(policy, DefaultRules())
}

// NewWithRules creates a classifier with a custom rule table.
func NewWithRules(policy Policy, rules []SignatureRule) *Classifier {
	if policy != PolicyAny {
		policy = PolicyConjunctive
	}
	return &Classifier{rules: rules, policy: policy}
}

// Classify inspects pipeline source text and emits a modularity verdict plus
// the extracted shared-library and module identifiers. A nil source (text
// could not be retrieved) yields an undetermined verdict with empty sets;
// undetermined is never inferred from absence of signatures.
func (c *Classifier) Classify(source *string) Result {
	if source == nil {
		return Result{
			Modularity:      models.ModularityUndetermined,
			SharedLibraries: []string{},
			ModuleNames:     []string{},
		}
	}

	text, degraded := stripComments(*source)

	libraries := map[string]bool{}
	modules := map[string]bool{}

	for _, rule := range c.rules {
		for _, match := range rule.Pattern.FindAllStringSubmatch(text, -1) {
			var names []string
			switch {
			case rule.Extract != nil:
				names = rule.Extract(match)
			case len(match) > 1:
				names = []string{match[1]}
			}
			for _, name := range names {
				if name == "" {
					continue
				}
				switch rule.Kind {
				case KindLibrary:
					libraries[name] = true
				case KindModule:
					modules[name] = true
				}
			}
		}
	}

	modularity := models.ModularityLegacy
	switch c.policy {
	case PolicyAny:
		if len(libraries) > 0 || len(modules) > 0 {
			modularity = models.ModularityModular
		}
	default:
		if len(libraries) > 0 && len(modules) > 0 {
			modularity = models.ModularityModular
		}
	}

	return Result{
		Modularity:      modularity,
		SharedLibraries: sortedKeys(libraries),
		ModuleNames:     sortedKeys(modules),
		Degraded:        degraded,
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stripComments removes Groovy line and block comments so commented-out
// signatures do not count. The scan is tolerant of invalid or partial text:
// when it cannot finish (unterminated block comment or string) it degrades
// to matching over the raw text and reports that via the second return.
func stripComments(source string) (string, bool) {
	var out []byte
	i := 0
	n := len(source)

	for i < n {
		c := source[i]

		switch {
		case c == '/' && i+1 < n && source[i+1] == '/':
			// Line comment: skip to end of line, keep the newline
			for i < n && source[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && source[i+1] == '*':
			// Block comment: skip to closing */
			end := indexFrom(source, i+2, "*/")
			if end < 0 {
				return source, true
			}
			// Preserve line structure for line-anchored rules
			for j := i; j < end+2; j++ {
				if source[j] == '\n' {
					out = append(out, '\n')
				}
			}
			i = end + 2

		case c == '\'' || c == '"':
			// String literal: copy verbatim, honoring escapes. Triple-quoted
			// Groovy strings close on the same quote character so the simple
			// scan still terminates on them.
			out = append(out, c)
			i++
			closed := false
			for i < n {
				out = append(out, source[i])
				if source[i] == '\\' && i+1 < n {
					out = append(out, source[i+1])
					i += 2
					continue
				}
				if source[i] == c {
					closed = true
					i++
					break
				}
				if source[i] == '\n' {
					// Groovy single-quoted strings do not span lines; treat
					// as closed rather than swallowing the rest of the file
					closed = true
					i++
					break
				}
				i++
			}
			if !closed {
				return source, true
			}

		default:
			out = append(out, c)
			i++
		}
	}

	return string(out), false
}

func indexFrom(s string, start int, substr string) int {
	if start >= len(s) {
		return -1
	}
	for i := start; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
