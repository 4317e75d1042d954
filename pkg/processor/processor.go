package processor

import "strings"

type ProcessorConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Processor splits normalized text into fixed-size overlapping windows.
// It is pure and stateless: the same input always yields the same chunks.
type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 800
	}
	if config.ChunkOverlap < 0 {
		config.ChunkOverlap = 0
	}

	return Processor{
		config: config,
	}
}

// Chunk normalizes the text and walks it with a sliding window of
// ChunkSize characters, each window starting ChunkOverlap characters
// before the previous one ended. Whitespace-only input yields no chunks.
// Window offsets count runes, not bytes, so multi-byte text is never
// split mid-character.
func (p Processor) Chunk(text string) []string {
	cleaned := Normalize(text)
	if cleaned == "" {
		return nil
	}

	var chunks []string
	runes := []rune(cleaned)
	n := len(runes)

	start := 0
	for start < n {
		end := start + p.config.ChunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == n {
			break
		}

		next := end - p.config.ChunkOverlap
		if next <= start {
			// Overlap at least the chunk size would otherwise stall the
			// window; force forward progress of one character.
			next = start + 1
		}
		start = next
	}

	return chunks
}

// Normalize strips each line, drops blank lines, and rejoins the rest
// with single newlines, preserving line order.
func Normalize(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
