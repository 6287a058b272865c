package port

// Chunker splits transcript text into ordered retrieval units.
type Chunker interface {
	Split(text string, targetSize int) []string
}
