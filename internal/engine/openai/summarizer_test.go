package openai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSummaryPrompt(t *testing.T) {
	t.Run("with participants", func(t *testing.T) {
		prompt := buildSummaryPrompt("hello\nworld", []string{"alice", "bob"})

		assert.Contains(t, prompt, "Participants: alice, bob")
		assert.Contains(t, prompt, "hello\nworld")
		assert.Contains(t, prompt, "## Meeting overview")
		assert.Contains(t, prompt, "## Action items")
		assert.Contains(t, prompt, "## Next meeting")
	})

	t.Run("without participants", func(t *testing.T) {
		prompt := buildSummaryPrompt("hello", nil)

		assert.False(t, strings.Contains(prompt, "Participants:"))
		assert.Contains(t, prompt, "hello")
	})
}
