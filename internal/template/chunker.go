package template

const (
	// DefaultChunkSize and DefaultChunkOverlap mirror the ingestion defaults
	// tuned for long legal documents.
	DefaultChunkSize    = 8000
	DefaultChunkOverlap = 500
)

// Chunk splits text into overlapping windows of at most size characters with
// the given overlap between consecutive windows. Windows are produced left to
// right and their union covers every position of the input. Sizes count
// runes, so multi-byte text never splits mid-character. Overlap must be
// smaller than size; invalid overlaps are treated as zero.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}
	var chunks []string
	start := 0
	for {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end - overlap
	}
}
