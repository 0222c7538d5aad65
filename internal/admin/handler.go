package admin

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"venuehub/internal/auth"
	"venuehub/internal/catalog"
	"venuehub/internal/reconcile"
	"venuehub/pkg/models"
)

// Handler is the admin panel API: password login and the recording
// management actions behind it.
type Handler struct {
	Repo        *catalog.Repo
	Tokens      auth.TokenService
	AdminHash   string
	ScanDir     string
	ServePrefix string
	Reconciler  *reconcile.Reconciler
	Logger      *log.Logger
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	mw := auth.AuthMiddleware(h.Tokens)

	rg.POST("/login", h.login)
	rg.GET("/recordings", mw, h.list)
	rg.POST("/recordings", mw, h.upload)
	rg.PATCH("/recordings/:id", mw, h.editTitle)
	rg.DELETE("/recordings/:id", mw, h.remove)
	rg.POST("/reconcile", mw, h.runReconcile)
}

type loginReq struct {
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.AdminHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	token, exp, err := h.Tokens.Sign()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}

	c.SetCookie(auth.CookieName, token, int(h.Tokens.Duration.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"status":     "logged in",
		"expires_at": exp.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *Handler) list(c *gin.Context) {
	recs, err := h.Repo.ListDescending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audioFiles": recs})
}

func (h *Handler) upload(c *gin.Context) {
	file, err := c.FormFile("fileToUpload")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "you must provide a file to upload"})
		return
	}

	name := filepath.Base(file.Filename)
	if err := os.MkdirAll(h.ScanDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	dst := filepath.Join(h.ScanDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		h.Logger.Error("error writing upload", "file", name, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file"})
		return
	}

	// same filename convention as the reconciliation scan; a file that
	// doesn't match it is stored but gets no catalogue row
	rawDate, title, err := reconcile.ParseName(name)
	if err != nil {
		h.Logger.Error("uploaded file name not parseable", "file", name, "err", err)
		c.JSON(http.StatusOK, gin.H{
			"status":  "uploaded",
			"warning": "file name does not match the catalogue convention; no entry created",
		})
		return
	}

	rec := models.AudioRecording{
		ID:          uuid.NewString(),
		Year:        "20" + rawDate[:2],
		SortDate:    reconcile.SortDate(rawDate),
		DisplayDate: reconcile.DisplayDate(rawDate),
		Title:       title,
		FilePath:    reconcile.LogicalPath(h.ServePrefix, name),
	}

	if err := h.Repo.Insert(c.Request.Context(), rec); err != nil {
		// unique file_path constraint: same file uploaded twice
		h.Logger.Error("error inserting uploaded recording", "file", name, "err", err)
		c.JSON(http.StatusConflict, gin.H{"error": "recording already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "uploaded", "recording": rec})
}

type editReq struct {
	Title string `json:"title"`
}

func (h *Handler) editTitle(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req editReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	ok, err := h.Repo.UpdateTitle(c.Request.Context(), id, req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) remove(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	rec, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	ok, err := h.Repo.DeleteByID(c.Request.Context(), id)
	if err != nil || !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	// row first, then file; an unlink failure leaves the file in the scan
	// dir and the next reconciliation pass will insert a row for it again
	if err := os.Remove(reconcile.PhysicalPath(h.ScanDir, rec.FilePath)); err != nil && !os.IsNotExist(err) {
		h.Logger.Error("error unlinking file", "path", rec.FilePath, "err", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) runReconcile(c *gin.Context) {
	res, err := h.Reconciler.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, reconcile.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "reconciliation already running"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}
