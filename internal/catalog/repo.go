package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"venuehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const recordingCols = `id, year, sort_date, display_date, title, file_path`

func (r *Repo) Insert(ctx context.Context, rec models.AudioRecording) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO audio_files (`+recordingCols+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Year, rec.SortDate, rec.DisplayDate, rec.Title, rec.FilePath)
	if err != nil {
		return fmt.Errorf("insert recording: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.AudioRecording, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordingCols+`
		FROM audio_files
		WHERE id = ?
	`, id)

	var rec models.AudioRecording
	if err := row.Scan(&rec.ID, &rec.Year, &rec.SortDate, &rec.DisplayDate, &rec.Title, &rec.FilePath); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &rec, nil
}

// List returns all recordings ordered by sort date, oldest first.
func (r *Repo) List(ctx context.Context) ([]models.AudioRecording, error) {
	return r.list(ctx, `SELECT `+recordingCols+` FROM audio_files ORDER BY sort_date ASC`)
}

// ListDescending returns all recordings newest first, the order the admin
// panel displays them in.
func (r *Repo) ListDescending(ctx context.Context) ([]models.AudioRecording, error) {
	return r.list(ctx, `SELECT `+recordingCols+` FROM audio_files ORDER BY sort_date DESC`)
}

func (r *Repo) ListByYear(ctx context.Context, year string) ([]models.AudioRecording, error) {
	return r.list(ctx, `
		SELECT `+recordingCols+`
		FROM audio_files
		WHERE year = ?
		ORDER BY sort_date ASC
	`, strings.TrimSpace(year))
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]models.AudioRecording, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.AudioRecording, 0)
	for rows.Next() {
		var rec models.AudioRecording
		if err := rows.Scan(&rec.ID, &rec.Year, &rec.SortDate, &rec.DisplayDate, &rec.Title, &rec.FilePath); err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) UpdateTitle(ctx context.Context, id, title string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE audio_files
		SET title = ?
		WHERE id = ?
	`, title, id)
	if err != nil {
		return false, fmt.Errorf("update title: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update title rows: %w", err)
	}
	return affected > 0, nil
}

func (r *Repo) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM audio_files
		WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete recording: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete recording rows: %w", err)
	}
	return affected > 0, nil
}
