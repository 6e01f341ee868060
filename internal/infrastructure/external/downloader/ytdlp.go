package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Downloader shells out to a yt-dlp binary to pull the best-audio stream
// for a URL and transcode it to mp3, mirroring the reference pipeline's
// YouTubeDownloader.
type Downloader struct {
	binary string
}

// NewDownloader creates a downloader using the given yt-dlp binary path
// (falling back to "yt-dlp" on PATH if empty).
func NewDownloader(binary string) *Downloader {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Downloader{binary: binary}
}

// Result describes a completed download.
type Result struct {
	Title        string
	FilePath     string
	DurationSecs float64
	URL          string
}

// Download fetches the audio for url into outputDir, returning the path
// to the resulting mp3 file and metadata about the source video.
func (d *Downloader) Download(ctx context.Context, url, outputDir string) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outTemplate := filepath.Join(outputDir, "%(id)s.%(ext)s")
	cmd := exec.CommandContext(ctx, d.binary,
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--output", outTemplate,
		"--print-json",
		"--no-warnings",
		"--quiet",
		url,
	)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("yt-dlp failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("failed to run yt-dlp: %w", err)
	}

	var meta struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	filePath := filepath.Join(outputDir, meta.ID+".mp3")
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("expected downloaded file not found: %w", err)
	}

	return &Result{
		Title:        meta.Title,
		FilePath:     filePath,
		DurationSecs: meta.Duration,
		URL:          url,
	}, nil
}

// ProbeExists checks the binary is resolvable, used by the health sensor.
func (d *Downloader) ProbeExists() bool {
	_, err := exec.LookPath(d.binary)
	return err == nil
}
