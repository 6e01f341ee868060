package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

// ArtifactMirror asynchronously copies audio artifacts to object storage
// as a durability backup. The filesystem ArtifactStore remains the source
// of truth the pipeline reads from; the mirror only exists so a lost data
// root can be recovered without re-downloading everything.
type ArtifactMirror struct {
	client *minio.Client
	bucket string
}

// NewArtifactMirror creates a mirror client and ensures its bucket exists.
// Returns (nil, nil) if mirroring is disabled in configuration.
func NewArtifactMirror(cfg *config.StorageConfig) (*ArtifactMirror, error) {
	if !cfg.MirrorEnabled {
		return nil, nil
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	mirror := &ArtifactMirror{client: minioClient, bucket: cfg.BucketName}

	ctx := context.Background()
	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return mirror, nil
}

// UploadFile mirrors a single artifact file at absPath under objectName.
func (m *ArtifactMirror) UploadFile(ctx context.Context, objectName, absPath string) error {
	f, err := os.Open(absPath)
	if err != nil {
		return fmt.Errorf("failed to open artifact for mirroring: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat artifact for mirroring: %w", err)
	}

	_, err = m.client.PutObject(ctx, m.bucket, objectName, f, info.Size(), minio.PutObjectOptions{
		ContentType: "audio/mpeg",
	})
	if err != nil {
		return fmt.Errorf("failed to mirror artifact: %w", err)
	}
	return nil
}

// ObjectExists checks whether an artifact has already been mirrored.
func (m *ArtifactMirror) ObjectExists(ctx context.Context, objectName string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
