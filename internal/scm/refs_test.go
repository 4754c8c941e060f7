package scm

import "testing"

func TestResolveRefs(t *testing.T) {
	defaults := []string{"main", "master"}

	tests := []struct {
		name      string
		specifier string
		want      []string
	}{
		{"empty falls back to defaults", "", defaults},
		{"double star wildcard", "**", defaults},
		{"remote wildcard", "*/**", defaults},
		{"any keyword", "Any", defaults},
		{"remote prefix stripped", "*/develop", []string{"develop"}},
		{"refs heads prefix stripped", "refs/heads/release-1.4", []string{"release-1.4"}},
		{"plain branch", "develop", []string{"develop"}},
		{"glob after stripping falls back", "*/release-*", defaults},
		{"whitespace trimmed", "  main  ", []string{"main"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRefs(tt.specifier, defaults)
			if len(got) != len(tt.want) {
				t.Fatalf("ResolveRefs(%q) = %v, want %v", tt.specifier, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ResolveRefs(%q)[%d] = %q, want %q", tt.specifier, i, got[i], tt.want[i])
				}
			}
		})
	}
}
