package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"worklog/internal/core"

	_ "modernc.org/sqlite"
)

// Export bookkeeping states for the timesheet export pipeline.
const (
	ExportPending  = "pending"
	ExportDone     = "exported"
	ExportErrState = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Readiness checks use it.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser inserts a new user. The email must not be registered yet.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	if _, err := r.GetUserByEmail(ctx, u.Email); err == nil {
		return core.ErrEmailTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, role, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, string(u.Role), u.PasswordHash, u.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User saved to SQLite",
		"user_id", u.ID,
		"email", u.Email,
		"role", u.Role)

	return nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, name, role, password_hash, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser replaces the mutable profile fields (email, name, role).
func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, name = ?, role = ? WHERE id = ?`,
		u.Email, u.Name, string(u.Role), u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return requireRow(res)
}

// DeleteUser removes a user and all of that user's time entries in one
// transaction. The cascade is the store's responsibility. Returns the
// number of entries removed.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	entryRes, err := tx.ExecContext(ctx, `DELETE FROM time_entries WHERE user_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete user entries: %w", err)
	}
	removed, _ := entryRes.RowsAffected()

	userRes, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	if n, _ := userRes.RowsAffected(); n == 0 {
		return 0, core.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete user: %w", err)
	}

	slog.InfoContext(ctx, "User deleted from SQLite",
		"user_id", id,
		"entries_removed", removed)

	return removed, nil
}

func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.TimeEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO time_entries
		 (id, user_id, entry_date, start_time, end_time, category, subcategory, description, hours, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Date.String(), e.StartTime, e.EndTime,
		e.Category, e.Subcategory, e.Description, e.Hours,
		e.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}

	slog.InfoContext(ctx, "Time entry saved to SQLite",
		"entry_id", e.ID,
		"user_id", e.UserID,
		"entry_date", e.Date.String(),
		"category", e.Category,
		"subcategory", e.Subcategory,
		"hours", e.Hours)

	return nil
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.TimeEntry, error) {
	return r.scanEntry(r.db.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, id))
}

func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.TimeEntry, error) {
	return r.queryEntries(ctx, selectEntry+` ORDER BY entry_date, created_at, id`)
}

func (r *SQLiteRepository) ListEntriesByUser(ctx context.Context, userID string) ([]core.TimeEntry, error) {
	return r.queryEntries(ctx, selectEntry+` WHERE user_id = ? ORDER BY entry_date, created_at, id`, userID)
}

// UpdateEntry replaces the entry's fields and queues it for re-export.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, e core.TimeEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE time_entries
		 SET entry_date = ?, start_time = ?, end_time = ?, category = ?,
		     subcategory = ?, description = ?, hours = ?, export_status = ?
		 WHERE id = ?`,
		e.Date.String(), e.StartTime, e.EndTime, e.Category,
		e.Subcategory, e.Description, e.Hours, ExportPending, e.ID)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireRow(res)
}

// ListEntriesPendingExport returns entries not yet written to the
// timesheet, oldest first. Errored entries stay in the scan so the
// backlog pass retries them.
func (r *SQLiteRepository) ListEntriesPendingExport(ctx context.Context, limit int) ([]core.TimeEntry, error) {
	return r.queryEntries(ctx,
		selectEntry+` WHERE export_status IN (?, ?) ORDER BY created_at, id LIMIT ?`,
		ExportPending, ExportErrState, limit)
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET export_status = ? WHERE id = ?`, ExportDone, id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE time_entries
		 SET export_status = ?, export_attempts = export_attempts + 1
		 WHERE id = ?`, ExportErrState, id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return requireRow(res)
}

const selectEntry = `SELECT id, user_id, entry_date, start_time, end_time,
	category, subcategory, description, hours, created_at FROM time_entries`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scanUser(row rowScanner) (core.User, error) {
	var (
		u         core.User
		role      string
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = core.Role(role)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

func (r *SQLiteRepository) scanEntry(row rowScanner) (core.TimeEntry, error) {
	var (
		e         core.TimeEntry
		date      string
		createdAt string
	)
	err := row.Scan(&e.ID, &e.UserID, &date, &e.StartTime, &e.EndTime,
		&e.Category, &e.Subcategory, &e.Description, &e.Hours, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TimeEntry{}, core.ErrNotFound
	}
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("scan entry: %w", err)
	}
	e.Date, err = core.ParseDate(date)
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("scan entry date: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return e, nil
}

func (r *SQLiteRepository) queryEntries(ctx context.Context, query string, args ...any) ([]core.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []core.TimeEntry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
