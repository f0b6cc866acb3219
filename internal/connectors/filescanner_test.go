package connectors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	write("b.csv", "a\n1\n")
	write("a.CSV", "a\n")
	write("c.csv.gz", "x")
	write("notes.txt", "x")
	write("nested/d.csv", "a\n1\n2\n")

	files, n, err := DiscoverFiles(root, []string{"csv"}, DiscoveryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, filepath.Join(root, "a.CSV"), files[0].Path)
	assert.Equal(t, filepath.Join(root, "b.csv"), files[1].Path)

	files, n, err = DiscoverFiles(root, []string{".csv", "csv.gz"}, DiscoveryOptions{Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, filepath.Join(root, "nested", "d.csv"), files[3].Path)

	_, n, err = DiscoverFiles(root, []string{"csv"}, DiscoveryOptions{Recursive: true, MinSize: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, n, err = DiscoverFiles(root, []string{"parquet"}, DiscoveryOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDiscoverFilesErrors(t *testing.T) {
	_, _, err := DiscoverFiles("", []string{"csv"}, DiscoveryOptions{})
	assert.Error(t, err)

	_, _, err = DiscoverFiles(filepath.Join(t.TempDir(), "missing"), []string{"csv"}, DiscoveryOptions{})
	assert.Error(t, err)

	_, _, err = DiscoverFiles(t.TempDir(), nil, DiscoveryOptions{})
	assert.Error(t, err)
}
