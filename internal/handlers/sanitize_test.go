package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMessageContent(t *testing.T) {
	t.Run("strips script tags", func(t *testing.T) {
		out, err := SanitizeMessageContent(`hello <script>alert("x")</script>world`)
		require.NoError(t, err)
		assert.NotContains(t, out, "script")
		assert.Contains(t, out, "hello")
	})

	t.Run("strips inline event handlers", func(t *testing.T) {
		out, err := SanitizeMessageContent(`<img src=x onerror=alert(1)> hi`)
		require.NoError(t, err)
		assert.NotContains(t, out, "onerror=")
	})

	t.Run("escapes html", func(t *testing.T) {
		out, err := SanitizeMessageContent(`<b>bold</b>`)
		require.NoError(t, err)
		assert.NotContains(t, out, "<b>")
		assert.Contains(t, out, "&lt;b&gt;")
	})

	t.Run("rejects blank input", func(t *testing.T) {
		_, err := SanitizeMessageContent("   \n\t ")
		assert.Error(t, err)
	})

	t.Run("rejects over-length input", func(t *testing.T) {
		_, err := SanitizeMessageContent(strings.Repeat("a", MaxMessageLength+1))
		assert.Error(t, err)
	})

	t.Run("rejects input that sanitizes to nothing", func(t *testing.T) {
		_, err := SanitizeMessageContent(`<script>alert(1)</script>`)
		assert.Error(t, err)
	})
}
