package cms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestClient(url string) *Client {
	return NewClient(url, "api-user", "api-pass", log.New(io.Discard))
}

func TestClientDo(t *testing.T) {
	ctx := context.Background()

	t.Run("TypedResult", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if user, pass, ok := r.BasicAuth(); !ok || user != "api-user" || pass != "api-pass" {
				t.Error("expected basic auth credentials")
			}

			var q Query
			if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
				t.Errorf("query decode failed: %v", err)
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"code": 200,
				"status": "ok",
				"result": [
					{"id": "f1", "title": "Opening Set", "displayDate": "01.01.2025", "filePath": "https://cms.example/media/pages/x/f.mp3"}
				]
			}`))
		}))
		defer srv.Close()

		var tracks []AudioTrack
		if err := newTestClient(srv.URL).Do(ctx, AudioTracksQuery(), &tracks); err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(tracks) != 1 || tracks[0].Title != "Opening Set" {
			t.Errorf("unexpected result: %+v", tracks)
		}
	})

	t.Run("ErrorEnvelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code": 403, "status": "error", "result": null}`))
		}))
		defer srv.Close()

		var out []AudioTrack
		err := newTestClient(srv.URL).Do(ctx, AudioTracksQuery(), &out)
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("NonJSONResponse", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>login page</html>"))
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).Do(ctx, ClubQuery(), &TextPage{})
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("TransportFailure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		err := newTestClient(srv.URL).Do(ctx, ClubQuery(), &TextPage{})
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code": 200, "status": "ok", "result": "just a string"}`))
		}))
		defer srv.Close()

		var tracks []AudioTrack
		err := newTestClient(srv.URL).Do(ctx, AudioTracksQuery(), &tracks)
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable for shape mismatch, got %v", err)
		}
	})
}

func TestStreamPath(t *testing.T) {
	got := StreamPath("https://cms.example/media/pages/abc/250101.mp3")
	want := "/api/stream?file=media/pages/abc/250101.mp3"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	// URLs without a media segment pass through
	plain := "https://cms.example/other/file.mp3"
	if got := StreamPath(plain); got != plain {
		t.Errorf("expected passthrough, got %q", got)
	}
}
