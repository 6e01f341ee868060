package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ArtifactStore is the source-of-truth filesystem layout for downloaded
// audio and derived artifacts, rooted at a configured data directory:
//
//	<root>/audio/<submission-id>/<filename>
//	<root>/ingress/                (drop directory watched by the audio-file sensor)
//
// Everything under root is plain files, so the whole store can be backed
// up as a single tarball without any database in the loop.
type ArtifactStore struct {
	root string
}

// NewArtifactStore creates the store, ensuring its base directories exist.
func NewArtifactStore(root string) (*ArtifactStore, error) {
	dirs := []string{
		filepath.Join(root, "audio"),
		filepath.Join(root, "ingress"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create artifact directory %s: %w", d, err)
		}
	}
	return &ArtifactStore{root: root}, nil
}

// Root returns the configured data root.
func (s *ArtifactStore) Root() string {
	return s.root
}

// IngressDir returns the drop directory watched for uploaded audio files.
func (s *ArtifactStore) IngressDir() string {
	return filepath.Join(s.root, "ingress")
}

// SubmissionDir returns (creating if needed) the directory for one
// submission's audio artifacts.
func (s *ArtifactStore) SubmissionDir(submissionID uuid.UUID) (string, error) {
	dir := filepath.Join(s.root, "audio", submissionID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create submission directory: %w", err)
	}
	return dir, nil
}

// WriteAudioFile copies src into a temp file in the submission's directory
// and renames it into place under the given filename, so readers never see
// a partially written file. It returns the relative path and checksum
// recorded on the AudioArtifact entity.
func (s *ArtifactStore) WriteAudioFile(submissionID uuid.UUID, filename string, src io.Reader) (relPath, checksum string, size int64, err error) {
	dir, err := s.SubmissionDir(submissionID)
	if err != nil {
		return "", "", 0, err
	}
	dst := filepath.Join(dir, filename)
	f, err := os.CreateTemp(dir, filename+".tmp-*")
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create artifact file: %w", err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)

	hasher := sha256.New()
	written, err := io.Copy(f, io.TeeReader(src, hasher))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to write artifact file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return "", "", 0, fmt.Errorf("failed to finalize artifact file: %w", err)
	}

	rel, err := filepath.Rel(s.root, dst)
	if err != nil {
		return "", "", 0, err
	}
	return rel, hex.EncodeToString(hasher.Sum(nil)), written, nil
}

// Open opens an artifact for reading given its path relative to the root.
func (s *ArtifactStore) Open(relPath string) (*os.File, error) {
	return os.Open(filepath.Join(s.root, relPath))
}

// AbsPath resolves an artifact's relative path to an absolute filesystem path.
func (s *ArtifactStore) AbsPath(relPath string) string {
	return filepath.Join(s.root, relPath)
}

// Remove deletes an artifact file, used when a submission is purged by the
// cleanup sensor.
func (s *ArtifactStore) Remove(relPath string) error {
	return os.Remove(filepath.Join(s.root, relPath))
}

// DiskUsage walks the audio directory and returns the total bytes on disk,
// reported by the status endpoint alongside pipeline and vector-store size.
func (s *ArtifactStore) DiskUsage() (int64, error) {
	var total int64
	audioDir := filepath.Join(s.root, "audio")
	err := filepath.WalkDir(audioDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk artifact directory: %w", err)
	}
	return total, nil
}
