package httpapi

import (
	"errors"
	"io"
	"net/http"

	"idioviet/internal/middleware"
	"idioviet/internal/recorder"
	"idioviet/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgSessionNotFound = "Recording session not found"

type startRecordingRequest struct {
	IdiomID  int    `json:"idiom_id" binding:"required"`
	MimeType string `json:"mime_type"`
}

func (a *API) startRecording(c *gin.Context) {
	var req startRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "Body must contain idiom_id")
		return
	}

	session, err := a.recordings.Start(middleware.Owner(c), req.IdiomID, req.MimeType)
	if err != nil {
		if errors.Is(err, service.ErrUnknownIdiom) {
			abortError(c, http.StatusNotFound, msgIdiomNotFound)
			return
		}
		a.logger.Error("Failed to start recording", zap.Error(err))
		abortError(c, http.StatusInternalServerError, msgUnexpected)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         session.ID,
		"idiom_id":   session.IdiomID,
		"mime_type":  session.MimeType,
		"started_at": session.StartedAt,
	})
}

func (a *API) appendRecording(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, a.maxRecordingBytes)
	chunk, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortError(c, http.StatusRequestEntityTooLarge, "Recording is too large")
			return
		}
		abortError(c, http.StatusBadRequest, "Failed to read audio chunk")
		return
	}

	switch err := a.recordings.Append(middleware.Owner(c), c.Param("id"), chunk); {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, recorder.ErrSessionNotFound):
		abortError(c, http.StatusNotFound, msgSessionNotFound)
	case errors.Is(err, recorder.ErrTooLarge):
		abortError(c, http.StatusRequestEntityTooLarge, "Recording is too large")
	default:
		a.logger.Error("Failed to append recording chunk", zap.Error(err))
		abortError(c, http.StatusInternalServerError, msgUnexpected)
	}
}

func (a *API) stopRecording(c *gin.Context) {
	attempt, err := a.recordings.Stop(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, recorder.ErrSessionNotFound) {
			abortError(c, http.StatusNotFound, msgSessionNotFound)
			return
		}
		a.logger.Error("Failed to stop recording", zap.Error(err))
		abortError(c, http.StatusInternalServerError, msgUnexpected)
		return
	}

	if attempt == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

func (a *API) recordingAudio(c *gin.Context) {
	rec, err := a.recordings.Get(middleware.Owner(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRecordingNotFound) {
			abortError(c, http.StatusNotFound, msgRecordingNotFound)
			return
		}
		a.logger.Error("Failed to get recording", zap.Error(err))
		abortError(c, http.StatusInternalServerError, msgUnexpected)
		return
	}

	c.Header("Cache-Control", "private, no-cache")
	c.Data(http.StatusOK, rec.ContentType, rec.Audio)
}
