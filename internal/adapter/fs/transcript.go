package fs

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"videorag/internal/domain"
)

// TranscriptReader reads plain-text transcripts from disk and classifies
// each one instead of substituting fallback text.
type TranscriptReader struct {
	noSpeechMarker string
	failureMarker  string
}

// NewTranscriptReader returns a reader that treats a transcript consisting
// only of noSpeechMarker as skipped and one consisting only of
// failureMarker as failed. An empty marker disables its check.
func NewTranscriptReader(noSpeechMarker, failureMarker string) *TranscriptReader {
	return &TranscriptReader{
		noSpeechMarker: strings.TrimSpace(noSpeechMarker),
		failureMarker:  strings.TrimSpace(failureMarker),
	}
}

func (r *TranscriptReader) Read(source string) (domain.Transcript, domain.TranscriptResult) {
	result := domain.TranscriptResult{Source: source}

	data, err := os.ReadFile(source)
	if err != nil {
		result.Status = domain.StatusFailed
		result.Reason = "read failed"
		result.Err = err
		return domain.Transcript{}, result
	}

	if !utf8.Valid(data) {
		result.Status = domain.StatusFailed
		result.Reason = "not valid UTF-8"
		result.Err = fmt.Errorf("transcript %s: invalid UTF-8", source)
		return domain.Transcript{}, result
	}

	text := strings.TrimSpace(string(data))
	switch {
	case text == "":
		result.Status = domain.StatusSkipped
		result.Reason = "empty transcript"
		return domain.Transcript{}, result
	case r.noSpeechMarker != "" && text == r.noSpeechMarker:
		result.Status = domain.StatusSkipped
		result.Reason = "no speech detected"
		return domain.Transcript{}, result
	case r.failureMarker != "" && text == r.failureMarker:
		result.Status = domain.StatusFailed
		result.Reason = "transcription failed"
		result.Err = fmt.Errorf("transcript %s: transcription backend reported failure", source)
		return domain.Transcript{}, result
	}

	result.Status = domain.StatusOK
	return domain.Transcript{Source: source, Text: text}, result
}
