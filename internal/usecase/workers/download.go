package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/errors"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/downloader"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/storage"
)

// DownloadWorker resolves a submission's audio, either by shelling out to
// the video downloader for a YouTube URL or by adopting an already-dropped
// file from the artifact store's ingress directory, and advances the
// submission into the transcribing stage.
type DownloadWorker struct {
	submissions repositories.SubmissionRepository
	artifacts   repositories.AudioArtifactRepository
	store       *storage.ArtifactStore
	mirror      *storage.ArtifactMirror
	downloader  *downloader.Downloader
	logger      *zap.Logger
	workerID    string
}

// NewDownloadWorker constructs the download stage worker.
func NewDownloadWorker(
	submissions repositories.SubmissionRepository,
	artifacts repositories.AudioArtifactRepository,
	store *storage.ArtifactStore,
	mirror *storage.ArtifactMirror,
	dl *downloader.Downloader,
	logger *zap.Logger,
	workerID string,
) *DownloadWorker {
	return &DownloadWorker{
		submissions: submissions,
		artifacts:   artifacts,
		store:       store,
		mirror:      mirror,
		downloader:  dl,
		logger:      logger,
		workerID:    workerID,
	}
}

// Stage identifies this worker's pipeline stage.
func (w *DownloadWorker) Stage() entities.SubmissionStage {
	return entities.StageDownloading
}

// Process resolves the audio for one submission and stores it.
func (w *DownloadWorker) Process(ctx context.Context, submission *entities.Submission) error {
	var relPath, checksum string
	var size int64
	var err error

	switch submission.Source {
	case entities.SourceYouTubeURL:
		relPath, checksum, size, err = w.downloadFromURL(ctx, submission)
	case entities.SourceAudioFile:
		relPath, checksum, size, err = w.adoptIngressFile(submission)
	default:
		err = errors.ErrInputInvalid(fmt.Sprintf("unsupported submission source: %s", submission.Source))
	}
	if err != nil {
		return err
	}

	artifact := entities.NewAudioArtifact(submission.ID, relPath, checksum, size)
	if err := w.artifacts.Create(ctx, artifact); err != nil {
		return fmt.Errorf("failed to persist audio artifact: %w", err)
	}

	if w.mirror != nil {
		go w.mirrorArtifact(context.Background(), artifact)
	}

	if err := w.submissions.CompleteStage(ctx, submission.ID, w.workerID, entities.StageTranscribing); err != nil {
		return fmt.Errorf("failed to advance submission to transcribing: %w", err)
	}
	return nil
}

func (w *DownloadWorker) downloadFromURL(ctx context.Context, submission *entities.Submission) (relPath, checksum string, size int64, err error) {
	dir, err := w.store.SubmissionDir(submission.ID)
	if err != nil {
		return "", "", 0, err
	}

	result, err := w.downloader.Download(ctx, submission.SourceURL, dir)
	if err != nil {
		return "", "", 0, errors.ErrTransientNetwork(err)
	}

	f, err := os.Open(result.FilePath)
	if err != nil {
		return "", "", 0, err
	}
	defer f.Close()

	hasher := sha256.New()
	written, err := io.Copy(hasher, f)
	if err != nil {
		return "", "", 0, err
	}

	rel, err := filepath.Rel(w.store.Root(), result.FilePath)
	if err != nil {
		return "", "", 0, err
	}
	return rel, hex.EncodeToString(hasher.Sum(nil)), written, nil
}

func (w *DownloadWorker) adoptIngressFile(submission *entities.Submission) (relPath, checksum string, size int64, err error) {
	src := filepath.Join(w.store.IngressDir(), submission.OriginalName)
	f, err := os.Open(src)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to open ingress file: %w", err)
	}
	defer f.Close()

	rel, sum, n, err := w.store.WriteAudioFile(submission.ID, submission.OriginalName, f)
	if err != nil {
		return "", "", 0, err
	}
	_ = os.Remove(src)
	return rel, sum, n, nil
}

func (w *DownloadWorker) mirrorArtifact(ctx context.Context, artifact *entities.AudioArtifact) {
	objectName := fmt.Sprintf("%s/%s", artifact.SubmissionID.String(), filepath.Base(artifact.RelativePath))
	absPath := w.store.AbsPath(artifact.RelativePath)
	if err := w.mirror.UploadFile(ctx, objectName, absPath); err != nil {
		if w.logger != nil {
			w.logger.Warn("failed to mirror artifact to object storage", zap.Error(err), zap.String("submission_id", artifact.SubmissionID.String()))
		}
		return
	}
	if err := w.artifacts.MarkMirrored(ctx, artifact.ID); err != nil && w.logger != nil {
		w.logger.Warn("failed to record artifact mirror timestamp", zap.Error(err))
	}
}
