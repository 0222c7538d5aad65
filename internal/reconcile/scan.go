package reconcile

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ScannedFile is one qualifying audio file found during a directory scan.
// FilePath is the logical path the streaming layer addresses it by.
type ScannedFile struct {
	FilePath string
	Name     string
	Year     string
}

var datePrefix = regexp.MustCompile(`^(\d{6})`)

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ScanDir lists dir (non-recursive) and returns the .mp3 files whose names
// start with a YYMMDD date. Non-mp3 entries are ignored silently; mp3 files
// without a date prefix are logged and skipped so they take part in neither
// insert nor delete decisions.
func ScanDir(dir, servePrefix string, logger *log.Logger) ([]ScannedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []ScannedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.ToLower(filepath.Ext(name)) != ".mp3" {
			continue
		}

		m := datePrefix.FindStringSubmatch(name)
		if m == nil {
			logger.Error("unexpected file name format", "file", name)
			continue
		}

		files = append(files, ScannedFile{
			FilePath: LogicalPath(servePrefix, name),
			Name:     name,
			Year:     "20" + m[1][:2],
		})
	}
	return files, nil
}

// LogicalPath maps a file name in the scan directory to the path the
// streaming endpoint serves it under.
func LogicalPath(servePrefix, name string) string {
	return path.Join(servePrefix, name)
}

// PhysicalPath maps a logical path back to the file's location in the scan
// directory. Only the base name is trusted.
func PhysicalPath(scanDir, logicalPath string) string {
	return filepath.Join(scanDir, path.Base(logicalPath))
}

// ParseName splits a file name of the form "YYMMDD --- Title.mp3" into its
// raw date and title. The date's month must be within 1-12; a value outside
// that range is malformed input, not a lookup into nowhere.
func ParseName(name string) (rawDate, title string, err error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, " --- ")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("unexpected file name format: %s", name)
	}
	rawDate, title = parts[0], parts[1]

	if !datePrefix.MatchString(rawDate) || len(rawDate) != 6 {
		return "", "", fmt.Errorf("unexpected date in file name: %s", name)
	}
	month, err := strconv.Atoi(rawDate[2:4])
	if err != nil || month < 1 || month > 12 {
		return "", "", fmt.Errorf("month out of range in file name: %s", name)
	}
	return rawDate, title, nil
}

// DisplayDate renders a YYMMDD date as "Mon DD", day digits taken verbatim.
func DisplayDate(rawDate string) string {
	month, _ := strconv.Atoi(rawDate[2:4])
	return monthNames[month-1] + " " + rawDate[4:6]
}

// SortDate renders a YYMMDD date as 20YY-MM-DD. Literal concatenation, no
// calendar validation: day 31 in a 30-day month passes through unchecked.
func SortDate(rawDate string) string {
	return "20" + rawDate[:2] + "-" + rawDate[2:4] + "-" + rawDate[4:6]
}
