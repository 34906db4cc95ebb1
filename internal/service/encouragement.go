package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"idioviet/internal/domain"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

// Encourager produces a short motivating message after a practice attempt
type Encourager interface {
	Encourage(ctx context.Context, idiom domain.Idiom) string
}

var defaultEncouragements = []string{
	"Nice work! Every repetition makes those tones feel more natural.",
	"Great effort! Try it once more and listen for the rising and falling tones.",
	"Well done! Saying it out loud is the fastest way to make it stick.",
	"Good job! Compare your attempt with the audio and give it another go.",
	"Keep going! Your ear for Vietnamese tones is getting sharper.",
	"Giỏi lắm! Practice a little every day and this idiom will be yours.",
}

// StaticEncourager picks a message from a fixed list
type StaticEncourager struct {
	messages []string
	pick     func(n int) int
}

// NewStaticEncourager creates an encourager over the built-in messages
func NewStaticEncourager() *StaticEncourager {
	return &StaticEncourager{
		messages: defaultEncouragements,
		pick:     rand.Intn,
	}
}

// Encourage returns a random message
func (e *StaticEncourager) Encourage(_ context.Context, _ domain.Idiom) string {
	return e.messages[e.pick(len(e.messages))]
}

const encouragementPrompt = `You are a friendly and encouraging language learning assistant.
A learner has just recorded themselves practicing a Vietnamese idiom.
Write one short, positive sentence (at most 25 words) that motivates them to keep practicing.
Be specific to the idiom and avoid generic phrases. Reply with the sentence only.`

// OpenAIEncourager generates messages with an OpenAI chat model and falls
// back to another Encourager on any failure
type OpenAIEncourager struct {
	client   oai.Client
	model    string
	timeout  time.Duration
	fallback Encourager
	logger   *zap.Logger
}

// NewOpenAIEncourager creates an OpenAI-backed encourager
func NewOpenAIEncourager(apiKey, model string, fallback Encourager, logger *zap.Logger, opts ...option.RequestOption) *OpenAIEncourager {
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIEncourager{
		client:   oai.NewClient(reqOpts...),
		model:    model,
		timeout:  8 * time.Second,
		fallback: fallback,
		logger:   logger,
	}
}

// Encourage asks the model for a message about idiom
func (e *OpenAIEncourager) Encourage(ctx context.Context, idiom domain.Idiom) string {
	msg, err := e.generate(ctx, idiom)
	if err != nil {
		e.logger.Warn("Failed to generate encouragement, using fallback",
			zap.Int("idiom_id", idiom.ID),
			zap.Error(err),
		)
		return e.fallback.Encourage(ctx, idiom)
	}
	return msg
}

func (e *OpenAIEncourager) generate(ctx context.Context, idiom domain.Idiom) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	user := fmt.Sprintf("Idiom: %s\nLiteral translation: %s\nMeaning: %s",
		idiom.Phrase, idiom.LiteralTranslation, idiom.ActualMeaning)

	resp, err := e.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(e.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(encouragementPrompt),
			oai.UserMessage(user),
		},
		MaxCompletionTokens: param.NewOpt(int64(80)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}

	msg := strings.TrimSpace(resp.Choices[0].Message.Content)
	if msg == "" {
		return "", fmt.Errorf("empty message in response")
	}
	return msg, nil
}
