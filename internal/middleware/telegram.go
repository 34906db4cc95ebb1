package middleware

import (
	"idioviet/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const telegramOwnerKey = "owner"

// TelegramLearner makes sure the Telegram learner exists before any handler runs
func TelegramLearner(learnerService *service.LearnerService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			owner, err := learnerService.EnsureTelegramLearner(sender.ID)
			if err != nil {
				logger.Error("Failed to ensure learner exists in middleware",
					zap.Int64("user_id", sender.ID),
					zap.Error(err),
				)
				return c.Send("Something went wrong. Please try again later.")
			}

			c.Set(telegramOwnerKey, owner)
			return next(c)
		}
	}
}

// TelegramOwner returns the learner owner key set by TelegramLearner
func TelegramOwner(c tele.Context) string {
	if owner, ok := c.Get(telegramOwnerKey).(string); ok {
		return owner
	}
	return ""
}
