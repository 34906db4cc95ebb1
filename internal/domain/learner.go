package domain

import (
	"fmt"
	"time"
)

// Learner is a practising user, identified by an owner key
type Learner struct {
	Owner     string
	CreatedAt time.Time
}

// WebOwner returns the owner key for a browser session
func WebOwner(sessionID string) string {
	return "web:" + sessionID
}

// TelegramOwner returns the owner key for a Telegram user
func TelegramOwner(userID int64) string {
	return fmt.Sprintf("tg:%d", userID)
}

// ChatState represents what the bot expects next from a Telegram learner
type ChatState string

const (
	StateIdle       ChatState = "idle"
	StatePracticing ChatState = "practicing"
)

// StateData holds temporary data for a learner's current chat state
type StateData struct {
	State          ChatState
	CurrentIdiomID int
	LastAttemptID  string
}
