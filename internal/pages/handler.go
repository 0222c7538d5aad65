// Package pages composes CMS content into the JSON payloads the frontend
// renders. A failed facade query degrades to an empty section, never to a
// failed page.
package pages

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"venuehub/internal/cms"
)

type Handler struct {
	CMS    *cms.Client
	Logger *log.Logger
}

func NewHandler(client *cms.Client, logger *log.Logger) *Handler {
	return &Handler{CMS: client, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pages/home", h.home)
	rg.GET("/pages/events", h.events)
	rg.GET("/pages/info/:slug", h.infoPage)
	rg.GET("/tracks", h.tracks)
}

func (h *Handler) home(c *gin.Context) {
	ctx := c.Request.Context()

	var events []cms.Event
	if err := h.CMS.Do(ctx, cms.EventsQuery(), &events); err != nil {
		events = nil
	}

	var audio []cms.AudioTrack
	if err := h.CMS.Do(ctx, cms.AudioTracksQuery(), &audio); err != nil {
		audio = nil
	}

	var club cms.TextPage
	clubOK := h.CMS.Do(ctx, cms.ClubQuery(), &club) == nil

	var info []cms.TextPage
	if err := h.CMS.Do(ctx, cms.InfoPagesQuery(), &info); err != nil {
		info = nil
	}

	payload := gin.H{
		"events":     orEmptyEvents(events),
		"audioFiles": presentable(audio),
		"infoPages":  orEmptyPages(info),
	}
	if clubOK {
		payload["clubPage"] = club
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) events(c *gin.Context) {
	var events []cms.Event
	if err := h.CMS.Do(c.Request.Context(), cms.EventsQuery(), &events); err != nil {
		events = nil
	}
	c.JSON(http.StatusOK, gin.H{"events": orEmptyEvents(events)})
}

func (h *Handler) infoPage(c *gin.Context) {
	slug := c.Param("slug")

	if slug == "impressum" {
		var page cms.TextPage
		if err := h.CMS.Do(c.Request.Context(), cms.ImpressumQuery(), &page); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "content unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"page": page})
		return
	}

	var info []cms.TextPage
	if err := h.CMS.Do(c.Request.Context(), cms.InfoPagesQuery(), &info); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "content unavailable"})
		return
	}
	for _, page := range info {
		if page.Slug == slug {
			c.JSON(http.StatusOK, gin.H{"page": page})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
}

func (h *Handler) tracks(c *gin.Context) {
	var audio []cms.AudioTrack
	if err := h.CMS.Do(c.Request.Context(), cms.AudioTracksQuery(), &audio); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch audio files"})
		return
	}
	c.JSON(http.StatusOK, presentable(audio))
}

// presentable keeps tracks the player can actually show (title and date
// present) and rewrites their CMS URLs to the seekable stream endpoint.
func presentable(tracks []cms.AudioTrack) []cms.AudioTrack {
	out := make([]cms.AudioTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.Title == "" || t.DisplayDate == "" {
			continue
		}
		t.FilePath = cms.StreamPath(t.FilePath)
		out = append(out, t)
	}
	return out
}

func orEmptyEvents(events []cms.Event) []cms.Event {
	if events == nil {
		return []cms.Event{}
	}
	return events
}

func orEmptyPages(pages []cms.TextPage) []cms.TextPage {
	if pages == nil {
		return []cms.TextPage{}
	}
	return pages
}
