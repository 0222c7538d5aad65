package cms

import "strings"

// Event is a listed event page.
type Event struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	EndDate          string `json:"endDate"`
	Text             string `json:"text"`
	FormattedDate    string `json:"formattedDate"`
	FormattedEndDate string `json:"formattedEndDate"`
	URL              string `json:"url"`
	ThumbnailURL     string `json:"thumbnailUrl,omitempty"`
	VideoURL         string `json:"videoUrl,omitempty"`
	VideoMime        string `json:"videoMime,omitempty"`
}

// AudioTrack is a recording file attached to the recordings page.
type AudioTrack struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Year        string `json:"year"`
	DisplayDate string `json:"displayDate"`
	SortDate    string `json:"sortDate"`
	FilePath    string `json:"filePath"`
}

// TextPage is a plain content page (club, info children, impressum).
type TextPage struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
	Text  string `json:"text"`
}

func EventsQuery() Query {
	return Query{
		Query: "page('veranstaltungen').children.listed.sortBy('date', 'desc')",
		Select: map[string]any{
			"id":               "page.id",
			"title":            true,
			"date":             true,
			"time":             true,
			"endDate":          true,
			"text":             "page.text.toBlocks.toHtml",
			"formattedDate":    "page.date.toDate('d.m.Y')",
			"formattedEndDate": "page.endDate.toDate('d.m.Y')",
			"url":              true,
			"thumbnailUrl":     "page.text.toBlocks.filterBy('type', 'image').first.content.image.toFiles.first.url ?? page.images.first.url",
			"videoUrl":         "page.videos.first.url",
			"videoMime":        "page.videos.first.mime",
		},
	}
}

func AudioTracksQuery() Query {
	return Query{
		Query: "page('aufnahmen').files.sortBy('datum', 'desc')",
		Select: map[string]any{
			"id":          "file.uuid",
			"filename":    "file.filename",
			"title":       "file.titel.value",
			"year":        "file.datum.toDate('Y')",
			"displayDate": "file.datum.toDate('d.m.Y')",
			"sortDate":    "file.datum.toDate('Y-m-d')",
			"filePath":    "file.url",
		},
	}
}

func ClubQuery() Query {
	return Query{
		Query: "page('club')",
		Select: map[string]any{
			"title": true,
			"text":  "page.text.toBlocks.toHtml",
		},
	}
}

func InfoPagesQuery() Query {
	return Query{
		Query: "page('info').children.listed",
		Select: map[string]any{
			"id":    true,
			"title": true,
			"slug":  true,
			"text":  "page.text.toBlocks.toHtml",
		},
	}
}

func ImpressumQuery() Query {
	return Query{
		Query: "page('impressum')",
		Select: map[string]any{
			"title": true,
			"text":  "page.text.kirbytext",
		},
	}
}

// StreamPath rewrites a CMS media URL to the local streaming endpoint so
// the player can seek via Range requests. URLs without a media segment are
// passed through untouched.
func StreamPath(fileURL string) string {
	idx := strings.Index(fileURL, "/media/")
	if idx < 0 {
		return fileURL
	}
	return "/api/stream?file=" + fileURL[idx+1:]
}
