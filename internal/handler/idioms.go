package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"idioviet/internal/catalog"
	"idioviet/internal/domain"
	"idioviet/internal/middleware"
	"idioviet/internal/speech"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cardText renders the flashcard front
func cardText(idiom domain.Idiom, position, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 %s\n", idiom.Phrase)
	if idiom.Dialect != "" {
		fmt.Fprintf(&b, "🗺 %s\n", idiom.Dialect)
	}

	chunks := make([]string, 0, len(idiom.Chunks))
	for _, chunk := range idiom.Chunks {
		chunks = append(chunks, chunk.Text)
	}
	fmt.Fprintf(&b, "\n🧩 %s\n", strings.Join(chunks, " · "))
	fmt.Fprintf(&b, "\n%d/%d · 🎙 Send a voice message to practise", position, total)
	return b.String()
}

// detailsText renders the flashcard back
func detailsText(idiom domain.Idiom) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 %s\n\n", idiom.Phrase)
	fmt.Fprintf(&b, "🔤 Literally: %s\n", idiom.LiteralTranslation)
	fmt.Fprintf(&b, "💡 Meaning: %s\n\n", idiom.ActualMeaning)
	fmt.Fprintf(&b, "🇻🇳 %s\n", idiom.ExampleVietnamese)
	fmt.Fprintf(&b, "🇬🇧 %s", idiom.ExampleEnglish)
	return b.String()
}

// cardMarkup builds the card keyboard: listen, chunks, save, details and carousel navigation
func cardMarkup(idiom domain.Idiom, saved bool, cat *catalog.Catalog) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{
		markup.Row(markup.Data("🔊 Listen", fmt.Sprintf("say_%d", idiom.ID))),
	}

	var chunkRow tele.Row
	for i, chunk := range idiom.Chunks {
		chunkRow = append(chunkRow, markup.Data("▶️ "+chunk.Text, fmt.Sprintf("chunk_%d_%d", idiom.ID, i)))
		if len(chunkRow) == 2 {
			rows = append(rows, chunkRow)
			chunkRow = nil
		}
	}
	if len(chunkRow) > 0 {
		rows = append(rows, chunkRow)
	}

	saveText := "☆ Save"
	if saved {
		saveText = "⭐ Saved"
	}
	rows = append(rows,
		markup.Row(
			markup.Data(saveText, fmt.Sprintf("save_%d", idiom.ID)),
			markup.Data("ℹ️ Details", fmt.Sprintf("info_%d", idiom.ID)),
		),
		markup.Row(
			markup.Data("⬅️", fmt.Sprintf("card_%d", cat.Neighbour(idiom.ID, -1).ID)),
			btnMainMenu,
			markup.Data("➡️", fmt.Sprintf("card_%d", cat.Neighbour(idiom.ID, 1).ID)),
		),
	)

	markup.Inline(rows...)
	return markup
}

// position returns the 1-based carousel position of id
func position(cat *catalog.Catalog, id int) int {
	for i, idiom := range cat.All() {
		if idiom.ID == id {
			return i + 1
		}
	}
	return 0
}

// handleRandom shows a random idiom card
func (h *Handler) handleRandom(c tele.Context) error {
	return h.showCard(c, h.catalog.Random())
}

// handleBrowse starts the carousel from the first idiom
func (h *Handler) handleBrowse(c tele.Context) error {
	return h.showCard(c, h.catalog.First())
}

// handleCard shows the card for card_<id>
func (h *Handler) handleCard(c tele.Context, args []string) error {
	idiom, ok := h.idiomArg(args, 0)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Idiom not found"})
	}
	return h.showCard(c, idiom)
}

func (h *Handler) showCard(c tele.Context, idiom domain.Idiom) error {
	userID := c.Sender().ID
	owner := middleware.TelegramOwner(c)

	saved, err := h.saved.IsSaved(owner, idiom.ID)
	if err != nil {
		h.logger.Error("Failed to check saved idiom", zap.Error(err), zap.String("owner", owner))
	}

	h.SetState(userID, &domain.StateData{
		State:          domain.StatePracticing,
		CurrentIdiomID: idiom.ID,
	})

	return h.show(c,
		cardText(idiom, position(h.catalog, idiom.ID), h.catalog.Len()),
		cardMarkup(idiom, saved, h.catalog),
	)
}

// handleDetails shows literal translation, meaning and examples
func (h *Handler) handleDetails(c tele.Context, args []string) error {
	idiom, ok := h.idiomArg(args, 0)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Idiom not found"})
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("🔊 Listen", fmt.Sprintf("say_%d", idiom.ID))),
		markup.Row(markup.Data("◀️ To card", fmt.Sprintf("card_%d", idiom.ID)), btnMainMenu),
	)
	return h.show(c, detailsText(idiom), markup)
}

// handleToggleSave saves or unsaves the idiom and redraws its card
func (h *Handler) handleToggleSave(c tele.Context, args []string) error {
	idiom, ok := h.idiomArg(args, 0)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Idiom not found"})
	}
	owner := middleware.TelegramOwner(c)

	saved, err := h.saved.Toggle(owner, idiom.ID)
	if err != nil {
		h.logger.Error("Failed to toggle saved idiom",
			zap.Error(err),
			zap.String("owner", owner),
			zap.Int("idiom_id", idiom.ID),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Could not update saved idioms"})
	}

	notice := "Removed from saved"
	if saved {
		notice = "Saved ⭐"
	}
	return h.showWithResponse(c,
		cardText(idiom, position(h.catalog, idiom.ID), h.catalog.Len()),
		cardMarkup(idiom, saved, h.catalog),
		&tele.CallbackResponse{Text: notice},
	)
}

// handleSavedList lists the learner's saved idioms
func (h *Handler) handleSavedList(c tele.Context) error {
	owner := middleware.TelegramOwner(c)

	idioms, err := h.saved.Idioms(owner)
	if err != nil {
		h.logger.Error("Failed to list saved idioms", zap.Error(err), zap.String("owner", owner))
		return h.fail(c, "Could not load saved idioms")
	}

	if len(idioms) == 0 {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{
				Text:      "You have no saved idioms yet",
				ShowAlert: true,
			})
		}
		return c.Send("You have no saved idioms yet", mainMenuMarkup())
	}

	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(idioms)+1)
	for _, idiom := range idioms {
		rows = append(rows, markup.Row(markup.Data(idiom.Phrase, fmt.Sprintf("card_%d", idiom.ID))))
	}
	rows = append(rows, markup.Row(btnMainMenu))
	markup.Inline(rows...)

	return h.show(c, fmt.Sprintf("⭐ Saved idioms (%d):", len(idioms)), markup)
}

// handleListen sends the phrase or one chunk as TTS audio
func (h *Handler) handleListen(c tele.Context, args []string, chunk bool) error {
	idiom, ok := h.idiomArg(args, 0)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Idiom not found"})
	}

	text := idiom.Phrase
	if chunk {
		i, ok := intArg(args, 1)
		if !ok || i < 0 || i >= len(idiom.Chunks) {
			return c.Respond(&tele.CallbackResponse{Text: "Chunk not found"})
		}
		text = idiom.Chunks[i].Text
	}

	prepared, err := speech.PrepareText(text)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Nothing to play"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), ttsTimeout)
	defer cancel()

	audio, err := h.tts.Synthesize(ctx, prepared)
	if err != nil {
		if !errors.Is(err, speech.ErrCircuitOpen) {
			h.logger.Error("Failed to synthesize speech",
				zap.Error(err),
				zap.Int("idiom_id", idiom.ID),
			)
		}
		return c.Respond(&tele.CallbackResponse{Text: "Audio is unavailable right now, try again later"})
	}

	if err := c.Send(&tele.Audio{
		File:     tele.FromReader(bytes.NewReader(audio.Data)),
		MIME:     audio.ContentType,
		FileName: "tts.mp3",
		Title:    prepared,
	}); err != nil {
		h.logger.Error("Failed to send speech audio", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Could not send audio"})
	}
	return c.Respond()
}

// idiomArg resolves the catalog idiom referenced by args[i]
func (h *Handler) idiomArg(args []string, i int) (domain.Idiom, bool) {
	id, ok := intArg(args, i)
	if !ok {
		return domain.Idiom{}, false
	}
	return h.catalog.Get(id)
}
