package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"idioviet/internal/domain"
	"idioviet/internal/middleware"
	"idioviet/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleVoice stores a voice message as an attempt for the current card
func (h *Handler) handleVoice(c tele.Context) error {
	userID := c.Sender().ID
	owner := middleware.TelegramOwner(c)

	voice := c.Message().Voice
	if voice == nil {
		return nil
	}

	state := h.GetState(userID)
	idiom, ok := h.catalog.Get(state.CurrentIdiomID)
	if state.State != domain.StatePracticing || !ok {
		return c.Send("Open an idiom card first, then send your voice message.", mainMenuMarkup())
	}

	if voice.FileSize > h.maxVoice {
		return c.Send("That voice message is too long, try a shorter one.")
	}

	data, err := h.downloadVoice(voice)
	if err != nil {
		h.logger.Error("Failed to download voice message",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return c.Send("Could not receive your voice message. Please try again.")
	}
	if int64(len(data)) > h.maxVoice {
		return c.Send("That voice message is too long, try a shorter one.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), voiceSaveTimeout)
	defer cancel()

	attempt, err := h.recordings.SaveAttempt(ctx, owner, idiom.ID, data, voice.MIME, service.SourceTelegram)
	if err != nil {
		if errors.Is(err, service.ErrEmptyRecording) {
			return c.Send("That voice message was empty. Please try again.")
		}
		h.logger.Error("Failed to save attempt",
			zap.Error(err),
			zap.String("owner", owner),
			zap.Int("idiom_id", idiom.ID),
		)
		return c.Send("Could not save your attempt. Please try again.")
	}

	h.SetState(userID, &domain.StateData{
		State:          domain.StatePracticing,
		CurrentIdiomID: idiom.ID,
		LastAttemptID:  attempt.Recording.ID,
	})

	return c.Send("🎉 "+attempt.Encouragement, attemptMarkup(idiom.ID, attempt.Recording.ID, h.catalog.Neighbour(idiom.ID, 1).ID))
}

func (h *Handler) downloadVoice(voice *tele.Voice) ([]byte, error) {
	rc, err := h.bot.File(&voice.File)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, h.maxVoice+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// attemptMarkup offers replay of the attempt next to the reference audio
func attemptMarkup(idiomID int, recordingID string, nextID int) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data("🔁 My attempt", "replay_"+recordingID),
			markup.Data("🔊 Listen", fmt.Sprintf("say_%d", idiomID)),
		),
		markup.Row(
			markup.Data("◀️ To card", fmt.Sprintf("card_%d", idiomID)),
			markup.Data("➡️ Next idiom", fmt.Sprintf("card_%d", nextID)),
		),
	)
	return markup
}

// handleReplay sends a stored attempt back to the learner
func (h *Handler) handleReplay(c tele.Context, args []string) error {
	owner := middleware.TelegramOwner(c)
	if len(args) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "Recording not found"})
	}

	rec, err := h.recordings.Get(owner, args[0])
	if err != nil {
		if errors.Is(err, service.ErrRecordingNotFound) {
			return c.Respond(&tele.CallbackResponse{Text: "Recording not found"})
		}
		h.logger.Error("Failed to get recording", zap.Error(err), zap.String("owner", owner))
		return c.Respond(&tele.CallbackResponse{Text: "Could not load the recording"})
	}

	if err := c.Send(replayMedia(rec)); err != nil {
		h.logger.Error("Failed to send recording", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Could not send the recording"})
	}
	return c.Respond()
}

// replayMedia sends ogg attempts as voice notes and anything else as audio
func replayMedia(rec *domain.Recording) tele.Sendable {
	file := tele.FromReader(bytes.NewReader(rec.Audio))
	if rec.ContentType == "audio/ogg" {
		return &tele.Voice{File: file, MIME: rec.ContentType}
	}

	ext := strings.TrimPrefix(rec.ContentType, "audio/")
	return &tele.Audio{File: file, MIME: rec.ContentType, FileName: "attempt." + ext}
}

// daysMarkup lists practice days with pagination
func daysMarkup(days []domain.Day, page, totalPages int) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}

	for _, day := range days {
		btnText := fmt.Sprintf("%s (%d)", day.DisplayString(), day.AttemptCount)
		rows = append(rows, markup.Row(markup.Data(btnText, "day_"+day.DateString())))
	}

	if totalPages > 1 {
		navRow := tele.Row{}
		if page > 1 {
			navRow = append(navRow, markup.Data("⬅️", fmt.Sprintf("page_%d", page-1)))
		}
		if page < totalPages {
			navRow = append(navRow, markup.Data("➡️", fmt.Sprintf("page_%d", page+1)))
		}
		if len(navRow) > 0 {
			rows = append(rows, navRow)
		}
	}

	rows = append(rows, markup.Row(btnMainMenu))
	markup.Inline(rows...)
	return markup
}

// handleViewDays shows the first page of practice days
func (h *Handler) handleViewDays(c tele.Context) error {
	return h.showDays(c, 1)
}

// handlePagination handles page_<n>
func (h *Handler) handlePagination(c tele.Context, args []string) error {
	page, ok := intArg(args, 0)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid page"})
	}
	return h.showDays(c, page)
}

func (h *Handler) showDays(c tele.Context, page int) error {
	owner := middleware.TelegramOwner(c)

	days, totalPages, err := h.recordings.PracticeHistory(owner, page)
	if err != nil {
		h.logger.Error("Failed to get practice days", zap.Error(err), zap.String("owner", owner))
		return h.fail(c, "Could not load practice days")
	}

	if len(days) == 0 {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{
				Text:      "No attempts yet. Send a voice message on any idiom card.",
				ShowAlert: true,
			})
		}
		return c.Send("No attempts yet. Send a voice message on any idiom card.", mainMenuMarkup())
	}

	return h.show(c, "📅 Your practice days:", daysMarkup(days, page, totalPages))
}

// handleDaySelection lists attempts of day_<YYYYMMDD>
func (h *Handler) handleDaySelection(c tele.Context, args []string) error {
	owner := middleware.TelegramOwner(c)
	if len(args) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid day"})
	}
	dateStr := args[0]

	recordings, err := h.recordings.AttemptsByDate(owner, dateStr)
	if err != nil {
		h.logger.Error("Failed to get attempts by date",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("date", dateStr),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Could not load attempts"})
	}

	if len(recordings) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "No attempts on this day"})
	}

	text, markup := h.attemptsView(recordings)
	return h.show(c, text, markup)
}

func (h *Handler) attemptsView(recordings []domain.Recording) (string, *tele.ReplyMarkup) {
	loc := domain.PracticeTimezone()

	var b strings.Builder
	fmt.Fprintf(&b, "🎙 Attempts on this day (%d):\n\n", len(recordings))

	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(recordings)+1)
	for i, rec := range recordings {
		phrase := fmt.Sprintf("idiom #%d", rec.IdiomID)
		if idiom, ok := h.catalog.Get(rec.IdiomID); ok {
			phrase = idiom.Phrase
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, rec.CreatedAt.In(loc).Format("15:04"), phrase)
		rows = append(rows, markup.Row(markup.Data(fmt.Sprintf("🔁 %d. %s", i+1, phrase), "replay_"+rec.ID)))
	}
	rows = append(rows, markup.Row(btnBackToDays, btnMainMenu))
	markup.Inline(rows...)

	return b.String(), markup
}
