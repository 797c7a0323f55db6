package knowledge

import "strings"

// Defaults for scraped web content; uploads use the same values unless
// configured otherwise.
const (
	DefaultChunkSize    = 600
	DefaultChunkOverlap = 50
)

// Split breaks text into chunks of at most chunkSize runes with chunkOverlap
// runes of context carried between neighboring chunks. Cuts prefer the last
// space in the chunk so words stay whole.
func Split(text string, chunkSize, chunkOverlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if chunkSize <= 0 || len(runes) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(runes); {
		end := start + chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if idx := lastSpaceBetween(runes, start, end); idx > start+chunkSize/2 {
			// Prefer a word boundary unless it would halve the chunk.
			end = idx
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}
		next := end - chunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func lastSpaceBetween(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
