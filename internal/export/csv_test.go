package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/models"
)

func TestWrite(t *testing.T) {
	lastRun := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)

	records := []models.JobRecord{
		{
			Name:            "deploy-api",
			FullPath:        "payments/deploy-api",
			URL:             "http://j/job/payments/job/deploy-api/",
			Team:            "payments",
			PipelineType:    models.PipelineTypePipeline,
			SCMURL:          "https://gitlab.example.com/payments/service.git",
			JenkinsfilePath: "ci/Jenkinsfile",
			BranchSpecifier: "**",
			Modularity:      models.ModularityModular,
			SharedLibraries: []string{"deployLib", "testLib"},
			ModuleNames:     []string{"buildAndPush"},
			LastRunAt:       &lastRun,
			IsActive:        true,
		},
		{
			Name:         "broken",
			FullPath:     "platform/broken",
			Team:         "platform",
			PipelineType: models.PipelineTypeUnknown,
			Modularity:   models.ModularityUndetermined,
			Error:        "job config: unexpected status",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(arbor.NewLogger()).Write(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per record")

	assert.Equal(t, columns, rows[0])

	deploy := rows[1]
	assert.Equal(t, "payments", deploy[0])
	assert.Equal(t, "payments/deploy-api", deploy[1])
	assert.Equal(t, "modular", deploy[8])
	assert.Equal(t, "deployLib;testLib", deploy[9])
	assert.Equal(t, "buildAndPush", deploy[10])
	assert.Equal(t, "2026-08-20T14:30:00Z", deploy[11])
	assert.Equal(t, "true", deploy[12])
	assert.Equal(t, "", deploy[13])

	broken := rows[2]
	assert.Equal(t, "undetermined", broken[8])
	assert.Equal(t, "", broken[9], "absent sets render as empty cells")
	assert.Equal(t, "", broken[11], "never ran renders as an empty cell")
	assert.Equal(t, "false", broken[12])
	assert.Equal(t, "job config: unexpected status", broken[13])
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "results.csv")
	require.NoError(t, NewCSVWriter(arbor.NewLogger()).WriteFile(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "full_path", "header written even with no rows")
}
