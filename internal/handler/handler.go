package handler

import (
	"sync"
	"time"

	"idioviet/internal/catalog"
	"idioviet/internal/domain"
	"idioviet/internal/service"
	"idioviet/internal/speech"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	ttsTimeout       = 15 * time.Second
	voiceSaveTimeout = 20 * time.Second
)

// Handler manages all bot interactions
type Handler struct {
	bot        *tele.Bot
	catalog    *catalog.Catalog
	saved      *service.SavedService
	recordings *service.RecordingService
	tts        speech.Provider
	maxVoice   int64
	logger     *zap.Logger

	// Learner states (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	catalog *catalog.Catalog,
	saved *service.SavedService,
	recordings *service.RecordingService,
	tts speech.Provider,
	maxVoiceBytes int64,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:        bot,
		catalog:    catalog,
		saved:      saved,
		recordings: recordings,
		tts:        tts,
		maxVoice:   maxVoiceBytes,
		logger:     logger,
		states:     make(map[int64]*domain.StateData),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/random", h.handleRandom)
	h.bot.Handle("/browse", h.handleBrowse)
	h.bot.Handle("/saved", h.handleSavedList)
	h.bot.Handle("/history", h.handleViewDays)

	// Messages
	h.bot.Handle(tele.OnText, h.handleText)
	h.bot.Handle(tele.OnVoice, h.handleVoice)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnRandom, h.handleRandom)
	h.bot.Handle(&btnBrowse, h.handleBrowse)
	h.bot.Handle(&btnSaved, h.handleSavedList)
	h.bot.Handle(&btnViewDays, h.handleViewDays)
	h.bot.Handle(&btnBackToDays, h.handleViewDays)
	h.bot.Handle(&btnMainMenu, h.handleStart)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// GetState returns learner's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle}
	}
	return state
}

// SetState sets learner's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets learner to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle})
}

// Inline keyboard buttons
var (
	btnRandom = tele.Btn{
		Unique: "random",
		Text:   "🎲 Random idiom",
	}
	btnBrowse = tele.Btn{
		Unique: "browse",
		Text:   "📚 Browse",
	}
	btnSaved = tele.Btn{
		Unique: "saved",
		Text:   "⭐ Saved",
	}
	btnViewDays = tele.Btn{
		Unique: "view_days",
		Text:   "📅 Practice days",
	}
	btnBackToDays = tele.Btn{
		Unique: "back_to_days",
		Text:   "◀️ To days",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Menu",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnRandom, btnBrowse),
		menu.Row(btnSaved, btnViewDays),
	)
	return menu
}
