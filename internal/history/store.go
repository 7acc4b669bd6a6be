package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a run ID matches nothing.
var ErrNotFound = errors.New("history: run not found")

// ErrAmbiguous is returned when a run ID prefix matches more than one run.
var ErrAmbiguous = errors.New("history: run id prefix is ambiguous")

const runColumns = "id, started_at, finished_at, input_dir, output_dir, backend, model, output_mode, status, total, completed, failed, error_message"

const itemColumns = "run_id, seq, source_path, output_path, status, segments, elapsed_ms, error_kind, error_message, finished_at"

// RunStarted inserts run with status running.
func (s *Store) RunStarted(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("history: run id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, started_at, input_dir, output_dir, backend, model, output_mode, status, total)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), run.InputDir, run.OutputDir, run.Backend, run.Model, run.OutputMode,
		string(RunRunning), run.Total,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RunTotal records the batch size once discovery has finished.
func (s *Store) RunTotal(ctx context.Context, runID string, total int) error {
	if _, err := s.exec(ctx, "UPDATE runs SET total = ? WHERE id = ?", total, runID); err != nil {
		return fmt.Errorf("update run total: %w", err)
	}
	return nil
}

// ItemFinished records the outcome of one file and bumps the run counters.
func (s *Store) ItemFinished(ctx context.Context, item Item) error {
	if item.FinishedAt.IsZero() {
		item.FinishedAt = time.Now()
	}
	_, err := withRetry(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.insertItem(ctx, item)
	})
	return err
}

func (s *Store) insertItem(ctx context.Context, item Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin item tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO run_items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.RunID, item.Seq, item.SourcePath, nullableString(item.OutputPath), string(item.Status),
		item.Segments, item.Elapsed.Milliseconds(), nullableString(item.ErrorKind), nullableString(item.Error),
		formatTime(item.FinishedAt),
	); err != nil {
		return fmt.Errorf("insert run item: %w", err)
	}

	counter := "completed = completed + 1"
	if item.Status == ItemFailed {
		counter = "completed = completed + 1, failed = failed + 1"
	}
	if _, err := tx.ExecContext(ctx, "UPDATE runs SET "+counter+" WHERE id = ?", item.RunID); err != nil {
		return fmt.Errorf("update run counters: %w", err)
	}
	return tx.Commit()
}

// RunFinished stores the terminal status and error message of a run.
func (s *Store) RunFinished(ctx context.Context, runID string, status RunStatus, message string) error {
	_, err := s.exec(ctx,
		"UPDATE runs SET status = ?, finished_at = ?, error_message = ? WHERE id = ?",
		string(status), formatTime(time.Now()), nullableString(message), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run whose ID equals or starts with id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id LIMIT 2",
		id, len(id), id,
	)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, fmt.Errorf("scan run: %w", err)
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

// ListItems returns the recorded files of a run in processing order.
func (s *Store) ListItems(ctx context.Context, runID string) ([]Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT "+itemColumns+" FROM run_items WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Prune deletes runs started before cutoff together with their items.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.exec(ctx, "DELETE FROM runs WHERE started_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		status      string
		errMsg      sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&run.InputDir,
		&run.OutputDir,
		&run.Backend,
		&run.Model,
		&run.OutputMode,
		&status,
		&run.Total,
		&run.Completed,
		&run.Failed,
		&errMsg,
	); err != nil {
		return Run{}, err
	}
	run.Status = RunStatus(status)
	run.Error = errMsg.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (Item, error) {
	var (
		item        Item
		outputPath  sql.NullString
		status      string
		elapsedMS   int64
		errKind     sql.NullString
		errMsg      sql.NullString
		finishedRaw string
	)
	if err := scanner.Scan(
		&item.RunID,
		&item.Seq,
		&item.SourcePath,
		&outputPath,
		&status,
		&item.Segments,
		&elapsedMS,
		&errKind,
		&errMsg,
		&finishedRaw,
	); err != nil {
		return Item{}, err
	}
	item.OutputPath = outputPath.String
	item.Status = ItemStatus(status)
	item.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	item.ErrorKind = errKind.String
	item.Error = errMsg.String
	if finished, err := parseTimeString(finishedRaw); err == nil {
		item.FinishedAt = finished
	}
	return item, nil
}
