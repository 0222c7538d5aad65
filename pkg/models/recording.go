package models

// AudioRecording is one row of the audio catalogue. FilePath is the
// logical serving path and acts as the natural key during reconciliation:
// at most one row exists per distinct path.
type AudioRecording struct {
	ID          string `json:"id"`
	Year        string `json:"year"`
	SortDate    string `json:"sortDate"`
	DisplayDate string `json:"displayDate"`
	Title       string `json:"title"`
	FilePath    string `json:"filePath"`
}
