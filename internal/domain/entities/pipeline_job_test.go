package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPipelineJob_NextBackoff_GrowsExponentiallyAndCaps(t *testing.T) {
	job := NewPipelineJob(uuid.New(), JobKindEmbed, 5)

	job.AttemptCount = 0
	assert.Equal(t, 5*time.Second, job.NextBackoff())

	job.AttemptCount = 1
	assert.Equal(t, 10*time.Second, job.NextBackoff())

	job.AttemptCount = 2
	assert.Equal(t, 20*time.Second, job.NextBackoff())

	job.AttemptCount = 10
	assert.Equal(t, 60*time.Second, job.NextBackoff(), "backoff must cap at 60s")
}

func TestPipelineJob_IsRetryable(t *testing.T) {
	job := NewPipelineJob(uuid.New(), JobKindDownload, 3)
	job.Status = JobStatusFailed
	job.AttemptCount = 2
	assert.True(t, job.IsRetryable())

	job.AttemptCount = 3
	assert.False(t, job.IsRetryable(), "must not retry once attempts reach the max")

	job.AttemptCount = 0
	job.Status = JobStatusSucceeded
	assert.False(t, job.IsRetryable(), "a succeeded job is never retryable")
}
