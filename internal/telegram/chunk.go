package telegram

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageLength stays under Telegram's 4096-character limit.
	MaxMessageLength = 4000

	// maxChunks is the most separate messages one reply may become before
	// it is sent as a file instead.
	maxChunks = 3

	previewLength = 1000
)

// SplitMessage splits text into messages that fit MaxMessageLength, breaking
// on line boundaries. A single line longer than the limit is hard-split on
// rune boundaries so no chunk ever exceeds it. If the text would take more
// than maxChunks messages it returns (nil, true): send a preview plus the
// full text as a file.
func SplitMessage(text string) ([]string, bool) {
	if len(text) <= MaxMessageLength {
		return []string{text}, false
	}

	var parts []string
	var current strings.Builder

	for _, line := range splitLinesKeepEnds(text) {
		for _, piece := range splitOversizedLine(line) {
			if current.Len()+len(piece) > MaxMessageLength && current.Len() > 0 {
				parts = append(parts, strings.TrimRight(current.String(), "\n"))
				current.Reset()
			}
			current.WriteString(piece)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, strings.TrimRight(current.String(), "\n"))
	}

	if len(parts) > maxChunks {
		return nil, true
	}
	return parts, false
}

// Preview returns the head of the text for the message that accompanies a
// file attachment.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength])
}

// splitOversizedLine breaks a line that exceeds MaxMessageLength into pieces
// that fit, never cutting through a multi-byte rune.
func splitOversizedLine(line string) []string {
	if len(line) <= MaxMessageLength {
		return []string{line}
	}

	var pieces []string
	var b strings.Builder
	for _, r := range line {
		if b.Len()+utf8.RuneLen(r) > MaxMessageLength {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}

func splitLinesKeepEnds(text string) []string {
	var lines []string
	for {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			if text != "" {
				lines = append(lines, text)
			}
			return lines
		}
		lines = append(lines, text[:idx+1])
		text = text[idx+1:]
	}
}
