package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"idioviet/internal/domain"
	"idioviet/internal/middleware"
	"idioviet/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgIdiomNotFound     = "Idiom not found"
	msgRecordingNotFound = "Recording not found"
)

type idiomView struct {
	domain.Idiom
	Saved bool `json:"saved"`
}

func (a *API) listIdioms(c *gin.Context) {
	set, err := a.saved.List(middleware.Owner(c))
	if err != nil {
		a.logger.Error("Failed to list saved idioms", zap.Error(err))
		abortError(c, http.StatusInternalServerError, msgUnexpected)
		return
	}

	idioms := a.catalog.All()
	if c.Query("saved") == "true" {
		idioms = a.catalog.Filter(set)
	}

	views := make([]idiomView, 0, len(idioms))
	for _, idiom := range idioms {
		views = append(views, idiomView{Idiom: idiom, Saved: set.Has(idiom.ID)})
	}
	c.JSON(http.StatusOK, views)
}

func (a *API) getIdiom(c *gin.Context) {
	id, ok := a.idiomParam(c)
	if !ok {
		return
	}

	idiom, _ := a.catalog.Get(id)
	saved, err := a.saved.IsSaved(middleware.Owner(c), id)
	if err != nil {
		a.logger.Error("Failed to check saved idiom", zap.Int("idiom_id", id), zap.Error(err))
		abortError(c, http.StatusInternalServerError, msgUnexpected)
		return
	}
	c.JSON(http.StatusOK, idiomView{Idiom: idiom, Saved: saved})
}

func (a *API) latestRecording(c *gin.Context) {
	id, ok := a.idiomParam(c)
	if !ok {
		return
	}

	rec, err := a.recordings.Latest(middleware.Owner(c), id)
	if err != nil {
		if errors.Is(err, service.ErrRecordingNotFound) {
			abortError(c, http.StatusNotFound, msgRecordingNotFound)
			return
		}
		a.logger.Error("Failed to get latest recording", zap.Int("idiom_id", id), zap.Error(err))
		abortError(c, http.StatusInternalServerError, msgUnexpected)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// idiomParam parses :id and answers 404 when it is not a catalog idiom
func (a *API) idiomParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || !a.catalog.Has(id) {
		abortError(c, http.StatusNotFound, msgIdiomNotFound)
		return 0, false
	}
	return id, true
}
