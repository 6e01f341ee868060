package workers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/storage"
)

type fakeAudioArtifactRepo struct {
	created []*entities.AudioArtifact
	mirrored []uuid.UUID
}

func (f *fakeAudioArtifactRepo) Create(ctx context.Context, a *entities.AudioArtifact) error {
	f.created = append(f.created, a)
	return nil
}
func (f *fakeAudioArtifactRepo) GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*entities.AudioArtifact, error) {
	for _, a := range f.created {
		if a.SubmissionID == submissionID {
			return a, nil
		}
	}
	return nil, assert.AnError
}
func (f *fakeAudioArtifactRepo) MarkMirrored(ctx context.Context, id uuid.UUID) error {
	f.mirrored = append(f.mirrored, id)
	return nil
}

func TestDownloadWorker_Process_AdoptsIngressFileAndAdvancesStage(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewArtifactStore(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(store.IngressDir(), "lecture.mp3"), []byte("audio-bytes"), 0o644))

	submission := &entities.Submission{ID: uuid.New(), Source: entities.SourceAudioFile, OriginalName: "lecture.mp3"}
	submissions := &fakeSubmissionRepo{}
	artifacts := &fakeAudioArtifactRepo{}

	w := NewDownloadWorker(submissions, artifacts, store, nil, nil, nil, "worker-1")
	require.NoError(t, w.Process(context.Background(), submission))

	require.Len(t, artifacts.created, 1)
	assert.Equal(t, entities.StageTranscribing, submissions.completedStage)
	assert.Equal(t, submission.ID, submissions.completedID)

	_, statErr := os.Stat(filepath.Join(store.IngressDir(), "lecture.mp3"))
	assert.True(t, os.IsNotExist(statErr), "adopted file should be removed from ingress")

	stored, err := store.Open(artifacts.created[0].RelativePath)
	require.NoError(t, err)
	defer stored.Close()
}

func TestDownloadWorker_Process_MissingIngressFileFails(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewArtifactStore(root)
	require.NoError(t, err)

	submission := &entities.Submission{ID: uuid.New(), Source: entities.SourceAudioFile, OriginalName: "missing.mp3"}
	w := NewDownloadWorker(&fakeSubmissionRepo{}, &fakeAudioArtifactRepo{}, store, nil, nil, nil, "worker-1")

	err = w.Process(context.Background(), submission)
	assert.Error(t, err)
}

func TestDownloadWorker_Process_UnsupportedSourceFails(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewArtifactStore(root)
	require.NoError(t, err)

	submission := &entities.Submission{ID: uuid.New(), Source: entities.SubmissionSource("carrier-pigeon")}
	w := NewDownloadWorker(&fakeSubmissionRepo{}, &fakeAudioArtifactRepo{}, store, nil, nil, nil, "worker-1")

	err = w.Process(context.Background(), submission)
	assert.Error(t, err)
}
