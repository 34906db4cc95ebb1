package middleware

import (
	"net/http"

	"idioviet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	// SessionName is the learner cookie name
	SessionName = "idioviet"

	sessionLearnerKey = "learner_id"
	ctxKeyOwner       = "owner"
	sessionMaxAge     = 365 * 24 * 60 * 60
)

// NewSessionStore creates the cookie store holding learner ids
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Learner resolves the browser learner from the session cookie, creating
// one on first visit, and makes sure the learner record exists
func Learner(store sessions.Store, learnerService *service.LearnerService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// A cookie that fails to decode yields a fresh session
		session, _ := store.Get(c.Request, SessionName)

		learnerID, ok := session.Values[sessionLearnerKey].(string)
		if !ok || learnerID == "" {
			learnerID = uuid.NewString()
			session.Values[sessionLearnerKey] = learnerID
			if err := session.Save(c.Request, c.Writer); err != nil {
				logger.Error("Failed to save learner session", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unexpected server error"})
				return
			}
		}

		owner, err := learnerService.EnsureWebLearner(learnerID)
		if err != nil {
			logger.Error("Failed to ensure learner exists in middleware",
				zap.String("owner", owner),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unexpected server error"})
			return
		}

		c.Set(ctxKeyOwner, owner)
		c.Next()
	}
}

// Owner returns the learner owner key set by Learner
func Owner(c *gin.Context) string {
	return c.GetString(ctxKeyOwner)
}
