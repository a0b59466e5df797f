package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalogFile(t, `[
		{"id": "esim-001", "title": "ESim", "source_ref": "https://support.example.com/esim"},
		{"id": "roaming-001", "title": "Roaming", "source_ref": "https://support.example.com/roaming"}
	]`)

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())

	entry, ok := catalog.Resolve("esim-001")
	require.True(t, ok)
	assert.Equal(t, "ESim", entry.Title)
	assert.Equal(t, "https://support.example.com/esim", entry.SourceRef)

	assert.True(t, catalog.Contains("roaming-001"))
	assert.False(t, catalog.Contains("nope"))

	_, ok = catalog.Resolve("nope")
	assert.False(t, ok)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadCatalogMalformedJSON(t *testing.T) {
	path := writeCatalogFile(t, `{"not": "a list"}`)

	_, err := LoadCatalog(path)
	assert.Error(t, err)
}

func TestLoadCatalogRejectsIncompleteEntries(t *testing.T) {
	path := writeCatalogFile(t, `[{"id": "", "title": "No ID"}]`)

	_, err := LoadCatalog(path)
	assert.Error(t, err)

	path = writeCatalogFile(t, `[{"id": "x", "title": ""}]`)

	_, err = LoadCatalog(path)
	assert.Error(t, err)
}
