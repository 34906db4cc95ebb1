package handler

import (
	"strings"

	"idioviet/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const mainMenuText = "🏠 Main menu\n\nPick an idiom and send a voice message to practise it."

// handleStart handles /start command and the menu button
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("Learner opened menu",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	h.ResetState(userID)
	return h.show(c, mainMenuText, mainMenuMarkup())
}

// handleText answers free text; practice happens through voice messages
func (h *Handler) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	// Ignore unknown commands
	if strings.HasPrefix(text, "/") {
		return nil
	}

	state := h.GetState(c.Sender().ID)
	if state.State == domain.StatePracticing {
		if idiom, ok := h.catalog.Get(state.CurrentIdiomID); ok {
			return c.Send("🎙 Send a voice message saying:\n\n" + idiom.Phrase)
		}
	}

	return c.Send(mainMenuText, mainMenuMarkup())
}
