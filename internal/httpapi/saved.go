package httpapi

import (
	"net/http"

	"idioviet/internal/domain"
	"idioviet/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) listSaved(c *gin.Context) {
	set, err := a.saved.List(middleware.Owner(c))
	if err != nil {
		a.logger.Error("Failed to list saved idioms", zap.Error(err))
		abortError(c, http.StatusInternalServerError, msgUnexpected)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (a *API) replaceSaved(c *gin.Context) {
	var set domain.SavedSet
	if err := c.ShouldBindJSON(&set); err != nil {
		abortError(c, http.StatusBadRequest, "Body must be a JSON array of idiom ids")
		return
	}

	stored, err := a.saved.Replace(middleware.Owner(c), set)
	if err != nil {
		a.logger.Error("Failed to replace saved idioms", zap.Error(err))
		abortError(c, http.StatusInternalServerError, msgUnexpected)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (a *API) toggleSaved(c *gin.Context) {
	id, ok := a.idiomParam(c)
	if !ok {
		return
	}

	saved, err := a.saved.Toggle(middleware.Owner(c), id)
	if err != nil {
		a.logger.Error("Failed to toggle saved idiom", zap.Int("idiom_id", id), zap.Error(err))
		abortError(c, http.StatusInternalServerError, msgUnexpected)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "saved": saved})
}
