package results

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/aeadbench/sweep"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeResult(t *testing.T, dir, name string, s Series) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, WriteSeries(&buf, s))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func TestCollectSkipsGarbage(t *testing.T) {
	dir := t.TempDir()
	writeResult(t, dir, "aes256gcm_64_128.csv", Series{{TimeUs: 10, ThroughputGBs: 1}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes_final.csv"), []byte("x"), 0o644))

	col, err := NewCollector(discardLogger()).Collect(dir, sweep.Software)
	require.NoError(t, err)

	require.Len(t, col.Series, 1)
	assert.Contains(t, col.Series, Key{Algorithm: "aes256gcm", MsgNum: 64, MsgSize: 128})
	require.Len(t, col.Diagnostics, 1)
	assert.Equal(t, filepath.Join(dir, "notes_final.csv"), col.Diagnostics[0].Path)
}

func TestCollectHardwareKernelOnly(t *testing.T) {
	dir := t.TempDir()
	s := Series{{TimeUs: 10, ThroughputGBs: 1}}
	writeResult(t, dir, "aes256gcm_kernel_64_128.csv", s)
	writeResult(t, dir, "aes256gcm_h2d_64_128.csv", s)
	writeResult(t, dir, "aes256gcm_d2h_64_128.csv", s)

	col, err := NewCollector(discardLogger()).Collect(dir, sweep.Hardware)
	require.NoError(t, err)

	assert.Equal(t, map[Key]Series{
		{Algorithm: "aes256gcm", Kernel: true, MsgNum: 64, MsgSize: 128}: s,
	}, col.Series)
	assert.Empty(t, col.Diagnostics)
	assert.Equal(t, []string{"aes256gcm"}, col.Algorithms())
}

func TestCollectSoftwareIgnoresKernel(t *testing.T) {
	dir := t.TempDir()
	s := Series{{TimeUs: 10, ThroughputGBs: 1}}
	writeResult(t, dir, "aes_kernel_64_128.csv", s)
	writeResult(t, dir, "aes_64_128.csv", s)

	col, err := NewCollector(discardLogger()).Collect(dir, sweep.Software)
	require.NoError(t, err)

	assert.Len(t, col.Series, 1)
	assert.Contains(t, col.Series, Key{Algorithm: "aes", MsgNum: 64, MsgSize: 128})
}

func TestCollectPartialFile(t *testing.T) {
	dir := t.TempDir()
	// A run still being written: header plus half a row.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aes_64_128.csv"),
		[]byte("run, time in microseconds, throughput (GB/s)\n0, 12"), 0o644))
	// A run that has created its file but written nothing.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aes_64_256.csv"), nil, 0o644))
	// Header only.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aes_64_512.csv"),
		[]byte("run, time in microseconds, throughput (GB/s)\n"), 0o644))

	col, err := NewCollector(discardLogger()).Collect(dir, sweep.Software)
	require.NoError(t, err)

	assert.Empty(t, col.Series)
	assert.Len(t, col.Diagnostics, 3)
}

func TestCollectMissingDir(t *testing.T) {
	col, err := NewCollector(discardLogger()).
		Collect(filepath.Join(t.TempDir(), "absent"), sweep.Hardware)
	require.NoError(t, err)

	assert.Empty(t, col.Series)
	assert.Equal(t, sweep.Hardware, col.Backend)
}

func TestCollectIgnoresSubdirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old_64_128.csv"), 0o755))

	col, err := NewCollector(discardLogger()).Collect(dir, sweep.Software)
	require.NoError(t, err)

	assert.Empty(t, col.Series)
	assert.Empty(t, col.Diagnostics)
}
