package helpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func TestLoadStructuredByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"portal","count":3}`), 0644))
	var fromJSON sample
	require.NoError(t, LoadStructured(jsonPath, &fromJSON))
	assert.Equal(t, sample{Name: "portal", Count: 3}, fromJSON)

	yamlPath := filepath.Join(dir, "in.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: portal\ncount: 4\n"), 0644))
	var fromYAML sample
	require.NoError(t, LoadStructured(yamlPath, &fromYAML))
	assert.Equal(t, sample{Name: "portal", Count: 4}, fromYAML)

	txtPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0644))
	assert.Error(t, LoadStructured(txtPath, &sample{}))
}

func TestSaveJSONAndText(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EnsureDir(filepath.Join(dir, "out")))

	path := filepath.Join(dir, "out", "data.json")
	require.NoError(t, SaveJSON(sample{Name: "a", Count: 1}, path))
	assert.True(t, FileExists(path))

	var back sample
	require.NoError(t, LoadStructured(path, &back))
	assert.Equal(t, "a", back.Name)

	textPath := filepath.Join(dir, "out", "notes.md")
	require.NoError(t, SaveText("# Notes\n", textPath))
	got, err := ReadFile(textPath)
	require.NoError(t, err)
	assert.Equal(t, "# Notes\n", got)
}

func TestGenerateOutputFilename(t *testing.T) {
	ts := time.Date(2026, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "analysis-20260309-140507.json", GenerateOutputFilename("analysis", "json", ts))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "student-wellness-portal", Slugify("  Student Wellness Portal! "))
	assert.Equal(t, "v2-rollout", Slugify("--V2 -- Rollout--"))
	assert.Equal(t, "", Slugify("***"))
}
