package reconcile

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"venuehub/internal/catalog"
	"venuehub/pkg/models"
)

// ErrAlreadyRunning is returned when a pass is requested while another one
// holds the guard. Concurrent passes would race on insert/delete, so they
// are rejected instead of queued.
var ErrAlreadyRunning = errors.New("reconciliation already running")

// Reconciler synchronizes the audio_files table with the scan directory:
// one row per qualifying file, keyed by logical path.
type Reconciler struct {
	Repo        *catalog.Repo
	Dir         string
	ServePrefix string
	DryRun      bool
	Logger      *log.Logger

	mu sync.Mutex
}

// Result summarizes one reconciliation pass.
type Result struct {
	Scanned  int `json:"scanned"`
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
	Skipped  int `json:"skipped"`
}

// Run performs one pass. A directory read failure aborts the pass; per-file
// parse failures and per-row delete failures only affect that file or row.
// Rerunning with no filesystem changes mutates nothing.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	if !r.mu.TryLock() {
		return Result{}, ErrAlreadyRunning
	}
	defer r.mu.Unlock()

	var res Result

	scanned, err := ScanDir(r.Dir, r.ServePrefix, r.Logger)
	if err != nil {
		r.Logger.Error("error reading directory", "dir", r.Dir, "err", err)
		return res, err
	}
	res.Scanned = len(scanned)

	existing, err := r.Repo.List(ctx)
	if err != nil {
		return res, err
	}
	existingPaths := make(map[string]bool, len(existing))
	for _, rec := range existing {
		existingPaths[rec.FilePath] = true
	}

	processed := make(map[string]bool, len(scanned))
	for _, f := range scanned {
		processed[f.FilePath] = true

		if existingPaths[f.FilePath] {
			continue
		}

		rawDate, title, err := ParseName(f.Name)
		if err != nil {
			r.Logger.Error("skipping file", "file", f.Name, "err", err)
			res.Skipped++
			continue
		}

		rec := models.AudioRecording{
			ID:          uuid.NewString(),
			Year:        f.Year,
			SortDate:    SortDate(rawDate),
			DisplayDate: DisplayDate(rawDate),
			Title:       title,
			FilePath:    f.FilePath,
		}

		if r.DryRun {
			r.Logger.Info("would insert", "file", f.Name, "year", f.Year)
			res.Inserted++
			continue
		}

		if err := r.Repo.Insert(ctx, rec); err != nil {
			r.Logger.Error("error inserting", "file", f.Name, "err", err)
			continue
		}
		r.Logger.Info("inserted", "file", f.Name, "year", f.Year)
		res.Inserted++
	}

	for _, rec := range existing {
		if processed[rec.FilePath] {
			continue
		}

		if r.DryRun {
			r.Logger.Info("would delete", "path", rec.FilePath)
			res.Deleted++
			continue
		}

		ok, err := r.Repo.DeleteByID(ctx, rec.ID)
		if err != nil {
			r.Logger.Error("error deleting row", "path", rec.FilePath, "err", err)
			continue
		}
		if ok {
			// row first, file second: a failed unlink leaves an orphaned
			// file, never a dangling row
			if err := os.Remove(PhysicalPath(r.Dir, rec.FilePath)); err != nil && !os.IsNotExist(err) {
				r.Logger.Error("error unlinking file", "path", rec.FilePath, "err", err)
			}
			r.Logger.Info("deleted", "path", rec.FilePath)
			res.Deleted++
		}
	}

	return res, nil
}
