package port

// Retriever answers natural-language queries with ranked unit texts.
type Retriever interface {
	// Ask returns at most topK texts ordered from most to least similar.
	// It never fails; an unusable query yields an empty result.
	Ask(query string, topK int) []string
}
