package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSCMURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"https passthrough", "https://gitlab.example.com/team/app.git", "https://gitlab.example.com/team/app.git", false},
		{"http upgraded", "http://gitlab.example.com/team/app.git", "https://gitlab.example.com/team/app.git", false},
		{"scp style", "git@gitlab.example.com:team/app.git", "https://gitlab.example.com/team/app.git", false},
		{"scp style with subgroup", "git@gitlab.example.com:team/sub/app.git", "https://gitlab.example.com/team/sub/app.git", false},
		{"git protocol", "git://gitlab.example.com/team/app.git", "https://gitlab.example.com/team/app.git", false},
		{"ssh protocol", "ssh://git@gitlab.example.com/team/app.git", "https://gitlab.example.com/team/app.git", false},
		{"ssh with port keeps the port", "ssh://git@gitlab.example.com:8443/team/app.git", "https://gitlab.example.com:8443/team/app.git", false},
		{"empty", "", "", true},
		{"garbage", "not a url at all", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSCMURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRepoRef(t *testing.T) {
	ref, err := ParseRepoRef("https://gitlab.example.com/team/sub/app.git")
	require.NoError(t, err)
	assert.Equal(t, "gitlab.example.com", ref.Host)
	assert.Equal(t, "team/sub/app", ref.ProjectPath)
	assert.Equal(t, "team", ref.Owner())
	assert.Equal(t, "sub/app", ref.Repo())
}

func TestParseRepoRefKeepsPort(t *testing.T) {
	ref, err := ParseRepoRef("https://gitlab.example.com:8443/team/app.git")
	require.NoError(t, err)
	assert.Equal(t, "gitlab.example.com:8443", ref.Host)
	assert.Equal(t, "team/app", ref.ProjectPath)
}

func TestParseRepoRefRejectsHostOnly(t *testing.T) {
	_, err := ParseRepoRef("https://gitlab.example.com/")
	assert.Error(t, err)
}
