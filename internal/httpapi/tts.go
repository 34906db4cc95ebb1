package httpapi

import (
	"errors"
	"net/http"

	"idioviet/internal/speech"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgMissingText    = "Missing 'text' query param"
	msgUpstreamFailed = "Upstream TTS request failed"
)

func (a *API) handleTTS(c *gin.Context) {
	text, err := speech.PrepareText(c.Query("text"))
	if err != nil {
		abortError(c, http.StatusBadRequest, msgMissingText)
		return
	}

	audio, err := a.tts.Synthesize(c.Request.Context(), text)
	if err != nil {
		var upstream *speech.UpstreamError
		switch {
		case errors.As(err, &upstream):
			a.logger.Warn("Upstream TTS request failed", zap.Int("status", upstream.StatusCode))
			abortError(c, errorStatus(upstream.StatusCode), msgUpstreamFailed)
		case errors.Is(err, speech.ErrCircuitOpen):
			abortError(c, http.StatusServiceUnavailable, msgUpstreamFailed)
		default:
			a.logger.Error("TTS request failed", zap.Error(err))
			abortError(c, http.StatusInternalServerError, msgUnexpected)
		}
		return
	}

	h := c.Writer.Header()
	h.Set("Content-Disposition", `inline; filename="tts.mp3"`)
	h.Set("Accept-Ranges", "bytes")
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0, s-maxage=0")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Set("CDN-Cache-Control", "no-store")
	h.Set("Netlify-CDN-Cache-Control", "no-store")
	c.Data(http.StatusOK, "audio/mpeg", audio.Data)
}

// errorStatus mirrors upstream error statuses; anything outside 4xx/5xx
// becomes 502 so the JSON body is always delivered
func errorStatus(upstream int) int {
	if upstream < http.StatusBadRequest || upstream > 599 {
		return http.StatusBadGateway
	}
	return upstream
}
