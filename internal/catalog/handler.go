package catalog

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/recordings", h.list)
}

func (h *Handler) list(c *gin.Context) {
	year := strings.TrimSpace(c.Query("year"))

	var (
		recs any
		err  error
	)
	if year != "" {
		recs, err = h.Repo.ListByYear(c.Request.Context(), year)
	} else {
		recs, err = h.Repo.List(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audioFiles": recs})
}
