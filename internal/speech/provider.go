package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MaxTextLength is the maximum number of characters forwarded upstream
const MaxTextLength = 200

// ErrEmptyText is returned when the text to speak is blank
var ErrEmptyText = errors.New("text is empty")

// Audio is a synthesized clip
type Audio struct {
	Data        []byte
	ContentType string
}

// Provider synthesizes speech for prepared text
type Provider interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(ctx context.Context, text string) (*Audio, error)

// Synthesize calls f
func (f ProviderFunc) Synthesize(ctx context.Context, text string) (*Audio, error) {
	return f(ctx, text)
}

// UpstreamError reports a non-2xx response from the TTS service
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream tts returned status %d", e.StatusCode)
}

// PrepareText trims raw and truncates it to MaxTextLength characters
func PrepareText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyText
	}

	runes := []rune(text)
	if len(runes) > MaxTextLength {
		text = string(runes[:MaxTextLength])
	}
	return text, nil
}
