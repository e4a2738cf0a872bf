package export

import (
	"compress/gzip"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readGzipCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	records, err := csv.NewReader(gz).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriter_CommitProducesReadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv.gz")

	w, err := NewWriter(path, []string{"login", "name"}, false)
	require.NoError(t, err)

	require.NoError(t, w.WriteRow([]string{"alice", "Alice"}))
	require.NoError(t, w.WriteRow([]string{"bob", "résumé, with comma"}))
	require.NoError(t, w.Commit())

	assert.Equal(t, 2, w.Rows())

	records := readGzipCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"login", "name"}, records[0])
	assert.Equal(t, []string{"alice", "Alice"}, records[1])
	// CSV phải tự escape dấu phẩy và giữ nguyên nội dung
	assert.Equal(t, []string{"bob", "résumé, with comma"}, records[2])
}

func TestWriter_CommitBeforeRenameLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv.gz")

	w, err := NewWriter(path, []string{"a"}, false)
	require.NoError(t, err)

	// File đích chỉ xuất hiện sau Commit, trước đó chỉ có file tạm
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".tmp")
	assert.NoError(t, err)

	require.NoError(t, w.Commit())

	_, err = os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriter_DiscardRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv.gz")

	w, err := NewWriter(path, []string{"a"}, false)
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]string{"1"}))
	require.NoError(t, w.Discard())

	// Không để lại file đích lẫn file tạm
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriter_DiscardKeepsPartialWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv.gz")

	w, err := NewWriter(path, []string{"a"}, true)
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]string{"1"}))
	require.NoError(t, w.WriteRow([]string{"2"}))
	require.NoError(t, w.Discard())

	records := readGzipCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1"}, records[1])
	assert.Equal(t, []string{"2"}, records[2])
}

func TestWriter_CommitIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv.gz")

	w, err := NewWriter(path, []string{"a"}, false)
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	require.NoError(t, w.Commit())
	require.NoError(t, w.Discard())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
