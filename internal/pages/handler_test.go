package pages

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"venuehub/internal/cms"
)

// fakeCMS answers every KQL query from a canned envelope per query string.
func fakeCMS(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var q cms.Query
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		for key, result := range results {
			if strings.Contains(q.Query, key) {
				_, _ = w.Write([]byte(`{"code": 200, "status": "ok", "result": ` + result + `}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"code": 404, "status": "error", "result": null}`))
	}))
}

func newPagesRouter(cmsURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard)
	router := gin.New()
	NewHandler(cms.NewClient(cmsURL, "", "", logger), logger).RegisterRoutes(router.Group("/api"))
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestTracks(t *testing.T) {
	t.Run("FiltersAndRewrites", func(t *testing.T) {
		srv := fakeCMS(t, map[string]string{
			"aufnahmen": `[
				{"id": "f1", "title": "Opening Set", "displayDate": "01.01.2025", "filePath": "https://cms.example/media/pages/x/a.mp3"},
				{"id": "f2", "title": "", "displayDate": "02.01.2025", "filePath": "https://cms.example/media/pages/x/b.mp3"}
			]`,
		})
		defer srv.Close()

		w := get(newPagesRouter(srv.URL), "/api/tracks")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var tracks []cms.AudioTrack
		if err := json.Unmarshal(w.Body.Bytes(), &tracks); err != nil {
			t.Fatal(err)
		}
		if len(tracks) != 1 {
			t.Fatalf("expected untitled track filtered out, got %d tracks", len(tracks))
		}
		if tracks[0].FilePath != "/api/stream?file=media/pages/x/a.mp3" {
			t.Errorf("expected rewritten stream path, got %s", tracks[0].FilePath)
		}
	})

	t.Run("UpstreamDown", func(t *testing.T) {
		srv := fakeCMS(t, nil)
		defer srv.Close()

		w := get(newPagesRouter(srv.URL), "/api/tracks")
		if w.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", w.Code)
		}
	})
}

func TestHomeDegradesGracefully(t *testing.T) {
	// only events resolve; everything else errors out upstream
	srv := fakeCMS(t, map[string]string{
		"veranstaltungen": `[{"id": "e1", "title": "Season Opening", "date": "2025-09-01", "videoUrl": "https://cms.example/media/pages/e1/teaser.mp4", "videoMime": "video/mp4"}]`,
	})
	defer srv.Close()

	w := get(newPagesRouter(srv.URL), "/api/pages/home")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var payload struct {
		Events     []cms.Event      `json:"events"`
		AudioFiles []cms.AudioTrack `json:"audioFiles"`
		InfoPages  []cms.TextPage   `json:"infoPages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(payload.Events))
	}
	if payload.Events[0].VideoURL == "" || payload.Events[0].VideoMime != "video/mp4" {
		t.Errorf("expected event video fields to pass through, got %+v", payload.Events[0])
	}
	if payload.AudioFiles == nil || payload.InfoPages == nil {
		t.Error("failed sections should degrade to empty arrays, not null")
	}
}

func TestInfoPage(t *testing.T) {
	srv := fakeCMS(t, map[string]string{
		"page('info')":      `[{"id": "i1", "title": "Anfahrt", "slug": "anfahrt", "text": "<p>...</p>"}]`,
		"page('impressum')": `{"title": "Impressum", "text": "legal"}`,
	})
	defer srv.Close()
	router := newPagesRouter(srv.URL)

	t.Run("BySlug", func(t *testing.T) {
		w := get(router, "/api/pages/info/anfahrt")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("Impressum", func(t *testing.T) {
		w := get(router, "/api/pages/info/impressum")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("UnknownSlug", func(t *testing.T) {
		w := get(router, "/api/pages/info/nope")
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}
