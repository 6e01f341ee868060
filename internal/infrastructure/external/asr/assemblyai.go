package asr

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/cenkalti/backoff/v4"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

// Client wraps the official AssemblyAI SDK for the transcribe stage. It
// uploads a local audio file and submits it for asynchronous
// transcription, correlating results back to a submission by external
// job id when the webhook or the timeout-recovery poll fires.
type Client struct {
	sdk            *aai.Client
	webhookBaseURL string
}

// NewClient creates an AssemblyAI-backed ASR client.
func NewClient(cfg *config.ASRConfig) *Client {
	return &Client{
		sdk:            aai.NewClient(cfg.APIKey),
		webhookBaseURL: cfg.WebhookBaseURL,
	}
}

// SubmitResult is what the transcribe stage worker records against a
// submission's transcript row while it awaits the webhook callback.
type SubmitResult struct {
	ExternalJobID string
}

// SubmitFile uploads a local audio file and starts a transcription job,
// returning the provider's job id.
func (c *Client) SubmitFile(ctx context.Context, absPath string) (*SubmitResult, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	retry := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	var uploadURL string
	err = backoff.Retry(func() error {
		if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
			return backoff.Permanent(seekErr)
		}
		u, uploadErr := c.sdk.Upload(ctx, f)
		if uploadErr != nil {
			return uploadErr
		}
		uploadURL = u
		return nil
	}, retry)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio to transcription provider: %w", err)
	}

	webhookURL := c.webhookBaseURL + "/v1/webhooks/asr"
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
		WebhookURL:    &webhookURL,
	}

	var transcript aai.Transcript
	err = backoff.Retry(func() error {
		t, submitErr := c.sdk.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
		if submitErr != nil {
			return submitErr
		}
		transcript = t
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to submit transcription job: %w", err)
	}

	if transcript.ID == nil {
		return nil, fmt.Errorf("transcription provider returned no job id")
	}
	return &SubmitResult{ExternalJobID: *transcript.ID}, nil
}

// FetchCompleted polls the provider directly for a job's final transcript,
// used by the webhook-timeout recovery path when no callback arrived
// within the expected window.
func (c *Client) FetchCompleted(ctx context.Context, externalJobID string) (*entities.Transcript, error) {
	transcript, err := c.sdk.Transcripts.Get(ctx, externalJobID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}
	return toEntity(transcript), nil
}

// GetStatus reports the provider-side status string for a job, used by the
// timeout worker to decide whether a stuck submission is still processing,
// completed, or errored.
func (c *Client) GetStatus(ctx context.Context, externalJobID string) (string, error) {
	transcript, err := c.sdk.Transcripts.Get(ctx, externalJobID)
	if err != nil {
		return "", err
	}
	if transcript.Status == "" {
		return "", nil
	}
	return string(transcript.Status), nil
}

func toEntity(t aai.Transcript) *entities.Transcript {
	out := &entities.Transcript{
		ModelUsed: "assemblyai",
	}
	if t.Text != nil {
		out.Text = *t.Text
	}
	if t.LanguageCode != "" {
		out.Language = string(t.LanguageCode)
	}
	if t.Confidence != nil {
		out.ConfidenceScore = *t.Confidence
	}
	if t.ID != nil {
		out.ExternalJobID = *t.ID
	}

	for _, u := range t.Utterances {
		seg := entities.TranscriptSegment{}
		if u.Start != nil {
			seg.Start = float64(*u.Start) / 1000.0
		}
		if u.End != nil {
			seg.End = float64(*u.End) / 1000.0
		}
		if u.Text != nil {
			seg.Text = *u.Text
		}
		if u.Speaker != nil {
			seg.Speaker = *u.Speaker
		}
		if u.Confidence != nil {
			seg.Confidence = *u.Confidence
		}
		out.Segments = append(out.Segments, seg)
	}

	return out
}

// PollInterval is how often the timeout-recovery worker checks stuck jobs.
const PollInterval = 2 * time.Minute
