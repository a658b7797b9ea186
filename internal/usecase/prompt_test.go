package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("What is <b>X</b>?", "Document 1 (Source: a.txt):\nX is Y & Z.")

	assert.Contains(t, p, "Context:\nDocument 1 (Source: a.txt):\nX is Y & Z.")
	assert.Contains(t, p, "Question: What is <b>X</b>?")
	assert.Less(t, strings.Index(p, "Context:"), strings.Index(p, "Question:"))
	assert.Less(t, strings.Index(p, "Question:"), strings.Index(p, "\nAnswer:"))
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	assert.Equal(t, BuildPrompt("q", "c"), BuildPrompt("q", "c"))
}
