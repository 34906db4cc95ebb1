package testutil

import (
	"testing"
	"time"

	"idioviet/internal/catalog"
	"idioviet/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestIdiom creates a test idiom whose chunks are its space-separated words
func NewTestIdiom(id int, phrase string, chunks ...string) domain.Idiom {
	idiom := domain.Idiom{
		ID:                 id,
		Phrase:             phrase,
		LiteralTranslation: "literal " + phrase,
		ActualMeaning:      "meaning " + phrase,
		ExampleVietnamese:  phrase + ".",
		ExampleEnglish:     "example " + phrase,
	}
	for _, c := range chunks {
		idiom.Chunks = append(idiom.Chunks, domain.Chunk{Text: c})
	}
	return idiom
}

// NewTestCatalog creates a small catalog with idioms 1, 2 and 3
func NewTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]domain.Idiom{
		NewTestIdiom(1, "Càng đông, càng vui", "Càng đông,", "càng vui"),
		NewTestIdiom(2, "Ăn quả nhớ kẻ trồng cây", "Ăn quả", "nhớ kẻ trồng cây"),
		NewTestIdiom(3, "Có công mài sắt, có ngày nên kim", "Có công mài sắt,", "có ngày nên kim"),
	})
	require.NoError(t, err)
	return c
}

// NewTestRecording creates a test recording
func NewTestRecording(id, owner string, idiomID int, audio []byte) *domain.Recording {
	return &domain.Recording{
		ID:          id,
		Owner:       owner,
		IdiomID:     idiomID,
		ContentType: "audio/webm",
		Size:        len(audio),
		Audio:       audio,
		CreatedAt:   time.Now(),
	}
}

// NewTestDay creates a test day
func NewTestDay(date time.Time, attemptCount int) domain.Day {
	return domain.Day{
		Date:         date,
		AttemptCount: attemptCount,
	}
}
