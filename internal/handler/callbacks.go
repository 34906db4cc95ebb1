package handler

import (
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// parseCallback splits "action_arg1_arg2" dynamic button data
func parseCallback(data string) (string, []string) {
	parts := strings.Split(data, "_")
	return parts[0], parts[1:]
}

// intArg returns args[i] as an int
func intArg(args []string, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// handleEditError handles errors from c.Edit(). If the message is not modified, just acknowledge the callback.
// Otherwise acknowledge and return the error so the caller can send a new message.
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// show edits the message when answering a callback, sends a new one otherwise
func (h *Handler) show(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return h.showWithResponse(c, text, markup, nil)
}

func (h *Handler) showWithResponse(c tele.Context, text string, markup *tele.ReplyMarkup, resp *tele.CallbackResponse) error {
	if c.Callback() == nil {
		return c.Send(text, markup)
	}

	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil
		}
		return c.Send(text, markup)
	}
	if resp != nil {
		return c.Respond(resp)
	}
	return c.Respond()
}

// fail reports an error as a callback toast or a message
func (h *Handler) fail(c tele.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text})
	}
	return c.Send(text)
}

// handleCallback handles ALL callback queries not matched by a registered button
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	data := cleanCallbackData(callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Static buttons whose Unique did not come through
	switch data {
	case btnRandom.Unique:
		return h.handleRandom(c)
	case btnBrowse.Unique:
		return h.handleBrowse(c)
	case btnSaved.Unique:
		return h.handleSavedList(c)
	case btnViewDays.Unique, btnBackToDays.Unique:
		return h.handleViewDays(c)
	case btnMainMenu.Unique:
		return h.handleStart(c)
	}

	action, args := parseCallback(data)
	switch action {
	case "card":
		return h.handleCard(c, args)
	case "say":
		return h.handleListen(c, args, false)
	case "chunk":
		return h.handleListen(c, args, true)
	case "save":
		return h.handleToggleSave(c, args)
	case "info":
		return h.handleDetails(c, args)
	case "replay":
		return h.handleReplay(c, args)
	case "page":
		return h.handlePagination(c, args)
	case "day":
		return h.handleDaySelection(c, args)
	}

	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}
