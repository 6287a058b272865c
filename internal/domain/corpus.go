package domain

import "errors"

var (
	ErrCorpusMissing = errors.New("corpus not found")
	ErrCorpusEmpty   = errors.New("corpus is empty")
	ErrCorpusCorrupt = errors.New("corpus is corrupt")
)

// Dedup collapses exact duplicates, keeping the first occurrence of each
// text. The returned order defines TextUnit IDs for one build.
func Dedup(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	unique := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}

// Units assigns positional IDs to texts.
func Units(texts []string) []TextUnit {
	units := make([]TextUnit, len(texts))
	for i, t := range texts {
		units[i] = TextUnit{ID: i, Text: t}
	}
	return units
}
