package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Chunk is a sub-phrase of an idiom used for segmented pronunciation practice
type Chunk struct {
	Text string `json:"text" yaml:"text"`
}

// Idiom is a flashcard record
type Idiom struct {
	ID                 int     `json:"id" yaml:"id"`
	Phrase             string  `json:"phrase" yaml:"phrase"`
	Chunks             []Chunk `json:"chunks" yaml:"chunks"`
	LiteralTranslation string  `json:"literal_translation" yaml:"literal_translation"`
	ActualMeaning      string  `json:"actual_meaning" yaml:"actual_meaning"`
	ExampleVietnamese  string  `json:"example_vietnamese" yaml:"example_vietnamese"`
	ExampleEnglish     string  `json:"example_english" yaml:"example_english"`
	Dialect            string  `json:"dialect,omitempty" yaml:"dialect,omitempty"`
}

// JoinedChunks returns chunk texts joined by single spaces
func (i Idiom) JoinedChunks() string {
	parts := make([]string, 0, len(i.Chunks))
	for _, c := range i.Chunks {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, " ")
}

// ChunksMatchPhrase reports whether the chunks spell out the phrase.
// Comparison is done on NFC-normalized text with collapsed whitespace, so
// precomposed and decomposed diacritics compare equal.
func (i Idiom) ChunksMatchPhrase() bool {
	if len(i.Chunks) == 0 {
		return false
	}
	return NormalizeText(i.JoinedChunks()) == NormalizeText(i.Phrase)
}

// NormalizeText applies NFC normalization and collapses runs of whitespace
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
