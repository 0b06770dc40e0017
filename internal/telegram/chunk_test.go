package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linesOf builds text of n lines, each lineLen bytes including the newline.
func linesOf(n, lineLen int) string {
	line := strings.Repeat("x", lineLen-1) + "\n"
	return strings.Repeat(line, n)
}

func TestSplitMessageShortPassthrough(t *testing.T) {
	parts, asFile := SplitMessage("hello\nworld")

	require.False(t, asFile)
	require.Len(t, parts, 1)
	assert.Equal(t, "hello\nworld", parts[0])
}

func TestSplitMessageExactLimit(t *testing.T) {
	text := strings.Repeat("a", MaxMessageLength)
	parts, asFile := SplitMessage(text)

	require.False(t, asFile)
	require.Len(t, parts, 1)
	assert.Equal(t, text, parts[0])
}

func TestSplitMessageChunksOnLineBoundaries(t *testing.T) {
	// 120 lines of 100 bytes = 12000 bytes: three 4000-byte chunks.
	text := linesOf(120, 100)
	parts, asFile := SplitMessage(text)

	require.False(t, asFile)
	require.Len(t, parts, 3)
	for _, part := range parts {
		assert.LessOrEqual(t, len(part), MaxMessageLength)
		assert.False(t, strings.HasSuffix(part, "\n"))
	}

	// Nothing is lost: rejoining the parts restores every line.
	rejoined := strings.Join(parts, "\n") + "\n"
	assert.Equal(t, text, rejoined)
}

func TestSplitMessageTooLongBecomesFile(t *testing.T) {
	// 130 lines of 100 bytes = 13000 bytes: would need a fourth chunk.
	parts, asFile := SplitMessage(linesOf(130, 100))

	assert.True(t, asFile)
	assert.Nil(t, parts)
}

func TestSplitMessageHardSplitsUnbrokenLine(t *testing.T) {
	// A single 9000-byte line with no newlines must still fit the limit.
	text := strings.Repeat("a", 9000)
	parts, asFile := SplitMessage(text)

	require.False(t, asFile)
	require.Len(t, parts, 3)
	for _, part := range parts {
		assert.LessOrEqual(t, len(part), MaxMessageLength)
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestSplitMessageHardSplitKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("é", 5000) // 10000 bytes of 2-byte runes
	parts, asFile := SplitMessage(text)

	require.False(t, asFile)
	rejoined := strings.Join(parts, "")
	assert.Equal(t, text, rejoined)
	for _, part := range parts {
		assert.LessOrEqual(t, len(part), MaxMessageLength)
		assert.True(t, utf8.ValidString(part))
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("é", 3000)
	preview := Preview(long)
	assert.Equal(t, 1000, len([]rune(preview)))

	short := "short reply"
	assert.Equal(t, short, Preview(short))
}
