package typing

import "strings"

// ChunkStrategy selects how a message is split for progressive delivery.
type ChunkStrategy string

const (
	ChunkBySentence  ChunkStrategy = "sentence"
	ChunkByWord      ChunkStrategy = "word"
	ChunkByCharacter ChunkStrategy = "character"
)

// Chunk is one delivery unit with its own independently computed delay.
type Chunk struct {
	Text  string
	Delay float64 // seconds
}

// ComputeChunkedDelays splits text by the given strategy and computes each
// chunk's delay with the same formula used for whole messages. Chunk delays
// are not a proportional split of the whole-message delay.
func (e *Engine) ComputeChunkedDelays(text, personality string, strategy ChunkStrategy) []Chunk {
	parts := splitChunks(text, strategy)
	chunks := make([]Chunk, 0, len(parts))
	for _, part := range parts {
		chunks = append(chunks, Chunk{
			Text:  part,
			Delay: e.ComputeDelay(part, personality, ""),
		})
	}
	return chunks
}

func splitChunks(text string, strategy ChunkStrategy) []string {
	switch strategy {
	case ChunkByWord:
		return strings.Fields(text)
	case ChunkByCharacter:
		runes := []rune(text)
		parts := make([]string, 0, len(runes))
		for _, r := range runes {
			parts = append(parts, string(r))
		}
		return parts
	default:
		return SplitSentences(text)
	}
}

// SplitSentences groups text at ".", "!" and "?" boundaries, keeping trailing
// punctuation (including runs like "?!") with its sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	terminated := false

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
		terminated = false
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?':
			current.WriteRune(r)
			terminated = true
		default:
			if terminated {
				flush()
			}
			current.WriteRune(r)
		}
	}
	flush()

	return sentences
}
