package downloader

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeYtDlp writes a shell script standing in for the yt-dlp binary: it
// creates the expected output file and prints the --print-json metadata
// line the real binary would, without touching the network.
func fakeYtDlp(t *testing.T, videoID string, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake yt-dlp script is a POSIX shell script")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestDownload_ParsesMetadataAndReturnsFilePath(t *testing.T) {
	script := `#!/bin/sh
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "--output" ]; then
    out="$arg"
  fi
  prev="$arg"
done
dir=$(dirname "$out")
file="$dir/vid123.mp3"
touch "$file"
echo '{"id":"vid123","title":"A Talk About Goroutines","duration":312.5}'
`
	bin := fakeYtDlp(t, "vid123", script)
	d := NewDownloader(bin)

	outDir := t.TempDir()
	res, err := d.Download(context.Background(), "https://youtube.com/watch?v=vid123", outDir)
	require.NoError(t, err)
	assert.Equal(t, "A Talk About Goroutines", res.Title)
	assert.Equal(t, 312.5, res.DurationSecs)
	assert.Equal(t, filepath.Join(outDir, "vid123.mp3"), res.FilePath)
	assert.FileExists(t, res.FilePath)
}

func TestDownload_MissingOutputFileFailsEvenIfCommandSucceeds(t *testing.T) {
	script := `#!/bin/sh
echo '{"id":"vid999","title":"Ghost","duration":10}'
`
	bin := fakeYtDlp(t, "vid999", script)
	d := NewDownloader(bin)

	_, err := d.Download(context.Background(), "https://youtube.com/watch?v=vid999", t.TempDir())
	assert.ErrorContains(t, err, "expected downloaded file not found")
}

func TestDownload_NonZeroExitReturnsStderr(t *testing.T) {
	script := `#!/bin/sh
echo "video unavailable" 1>&2
exit 1
`
	bin := fakeYtDlp(t, "vid-bad", script)
	d := NewDownloader(bin)

	_, err := d.Download(context.Background(), "https://youtube.com/watch?v=bad", t.TempDir())
	assert.ErrorContains(t, err, "video unavailable")
}

func TestDownload_MalformedJSONFails(t *testing.T) {
	script := `#!/bin/sh
echo 'not json'
`
	bin := fakeYtDlp(t, "vid-x", script)
	d := NewDownloader(bin)

	_, err := d.Download(context.Background(), "https://youtube.com/watch?v=x", t.TempDir())
	assert.ErrorContains(t, err, "failed to parse yt-dlp output")
}

func TestNewDownloader_DefaultsBinaryWhenEmpty(t *testing.T) {
	d := NewDownloader("")
	assert.Equal(t, "yt-dlp", d.binary)
}

func TestProbeExists_FalseForUnresolvableBinary(t *testing.T) {
	d := NewDownloader("definitely-not-a-real-binary-on-this-system")
	assert.False(t, d.ProbeExists())
}

func TestProbeExists_TrueForResolvableBinary(t *testing.T) {
	d := NewDownloader("sh")
	assert.True(t, d.ProbeExists())
}
