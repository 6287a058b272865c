package chunker

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SentenceChunker groups whole sentences until the group holds at least
// the target number of words. Sentences are never split and chunks never
// overlap.
type SentenceChunker struct {
	logger *slog.Logger
}

func NewSentenceChunker(logger *slog.Logger) *SentenceChunker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SentenceChunker{logger: logger}
}

// Split returns the chunks of text in order. A target below 1 is treated
// as 1, which makes every sentence its own chunk.
func (c *SentenceChunker) Split(text string, targetSize int) []string {
	if targetSize < 1 {
		targetSize = 1
	}

	var chunks []string
	var group []string
	words := 0

	flush := func() {
		if len(group) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(group, " "))
		group = group[:0]
		words = 0
	}

	for _, sentence := range SplitSentences(text) {
		group = append(group, sentence)
		words += len(strings.Fields(sentence))
		if words >= targetSize {
			flush()
		}
	}
	flush()

	c.logger.Debug("chunked transcript", "chunks", len(chunks), "target_words", targetSize)
	return chunks
}

// SplitSentences splits text after '.', '!' or '?' when the terminator is
// followed by whitespace or the end of input. Whitespace inside a sentence
// is collapsed to single spaces and empty sentences are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	emit := func(end int) {
		s := strings.Join(strings.Fields(text[start:end]), " ")
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i == len(text) {
			break
		}
		next, _ := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(next) {
			emit(i)
		}
	}
	emit(len(text))

	return sentences
}
