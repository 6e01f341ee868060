package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords_StripsStopWordsAndPunctuation(t *testing.T) {
	got := extractKeywords("What is the difference between a goroutine and a channel?")
	assert.Equal(t, []string{"difference", "between", "goroutine", "channel"}, got)
}

func TestExtractKeywords_DropsShortWords(t *testing.T) {
	got := extractKeywords("Is it ok to do it in Go?")
	for _, kw := range got {
		assert.Greater(t, len(kw), 2)
	}
}

func TestExtractKeywords_EmptyInput(t *testing.T) {
	assert.Empty(t, extractKeywords(""))
	assert.Empty(t, extractKeywords("the a an of"))
}

func TestExtractKeywords_LowercasesTerms(t *testing.T) {
	got := extractKeywords("RETRIEVAL Augmented Generation")
	assert.Equal(t, []string{"retrieval", "augmented", "generation"}, got)
}
