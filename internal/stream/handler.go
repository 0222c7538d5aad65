package stream

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Only the first start-end pair of a Range header is honored; multi-range
// requests are a known limitation, not supported.
var rangeSpec = regexp.MustCompile(`bytes=(\d+)-(\d+)?`)

type Handler struct {
	Resolver *Resolver
	Logger   *log.Logger
}

func NewHandler(resolver *Resolver, logger *log.Logger) *Handler {
	return &Handler{Resolver: resolver, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stream", h.stream)
}

func (h *Handler) stream(c *gin.Context) {
	logical := c.Query("file")

	abs, err := h.Resolver.Resolve(logical)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingParam):
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file parameter"})
		case errors.Is(err, ErrForbidden):
			h.Logger.Warn("path traversal attempt", "file", logical)
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		}
		return
	}

	f, err := os.Open(abs)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stat failed"})
		return
	}
	size := info.Size()

	if rangeHeader := c.GetHeader("Range"); rangeHeader != "" {
		h.serveRange(c, f, size, rangeHeader)
		return
	}

	c.Header("Content-Type", "audio/mpeg")
	c.Header("Content-Length", strconv.FormatInt(size, 10))
	c.Header("Accept-Ranges", "bytes")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, f)
}

func (h *Handler) serveRange(c *gin.Context, f *os.File, size int64, rangeHeader string) {
	m := rangeSpec.FindStringSubmatch(rangeHeader)

	var start, end int64
	var err error
	if m == nil {
		err = fmt.Errorf("unparseable range: %s", rangeHeader)
	} else {
		start, err = strconv.ParseInt(m[1], 10, 64)
		end = size - 1
		if err == nil && m[2] != "" {
			end, err = strconv.ParseInt(m[2], 10, 64)
		}
	}

	if err != nil || start >= size || end >= size || end < start {
		c.Header("Content-Range", fmt.Sprintf("bytes */%d", size))
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	c.Header("Content-Type", "audio/mpeg")
	c.Header("Content-Length", strconv.FormatInt(end-start+1, 10))
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	c.Header("Accept-Ranges", "bytes")
	c.Status(http.StatusPartialContent)

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return
	}
	_, _ = io.CopyN(c.Writer, f, end-start+1)
}
