package sensors

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
)

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".flac": true,
}

// AudioFileSensor watches the artifact store's ingress directory for
// manually dropped audio files and admits each unseen one as a queued
// submission, mirroring the reference pipeline's audio_file_sensor.
type AudioFileSensor struct {
	submissions repositories.SubmissionRepository
	ingressDir  string
	dedupWindow time.Duration
	interval    time.Duration
	logger      *zap.Logger
}

// NewAudioFileSensor constructs the ingress-directory watcher.
func NewAudioFileSensor(submissions repositories.SubmissionRepository, ingressDir string, dedupWindow, interval time.Duration, logger *zap.Logger) *AudioFileSensor {
	return &AudioFileSensor{submissions: submissions, ingressDir: ingressDir, dedupWindow: dedupWindow, interval: interval, logger: logger}
}

// Name identifies the sensor for logging.
func (s *AudioFileSensor) Name() string { return "audio_file_sensor" }

// Interval reports how often the sensor ticks.
func (s *AudioFileSensor) Interval() time.Duration { return s.interval }

// Tick scans the ingress directory and registers any file not already
// represented by a recent submission with the same file hash (name, size,
// and modification time).
func (s *AudioFileSensor) Tick(ctx context.Context) error {
	entries, err := os.ReadDir(s.ingressDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		hash := fileHash(entry.Name(), info.Size(), info.ModTime())
		existing, err := s.submissions.FindRecentByHash(ctx, hash, s.dedupWindow)
		if err != nil {
			s.logger.Warn("failed to check for duplicate audio submission", zap.Error(err))
			continue
		}
		if existing != nil {
			continue
		}

		submission := entities.NewSubmission(entities.SourceAudioFile, "", hash, "")
		submission.OriginalName = entry.Name()
		if err := s.submissions.Create(ctx, submission); err != nil {
			s.logger.Warn("failed to register audio file submission", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		s.logger.Info("registered dropped audio file", zap.String("file", entry.Name()))
	}
	return nil
}

func fileHash(name string, size int64, mtime time.Time) string {
	content := fmt.Sprintf("%s_%d_%d", name, size, mtime.UnixNano())
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
