package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type Store struct {
	DB  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, now: time.Now}
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Save writes the full snapshot for a user, replacing any previous one.
func (s *Store) Save(ctx context.Context, userID string, snapshot model.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
INSERT INTO snapshots (user_id, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		userID, string(payload), s.now().UTC())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, userID string) (model.Snapshot, bool, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx, "SELECT payload FROM snapshots WHERE user_id = ?", userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, false, nil
	}
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, true, nil
}

func (s *Store) DeleteSnapshot(ctx context.Context, userID string) error {
	if _, err := s.DB.ExecContext(ctx, "DELETE FROM snapshots WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, created_at FROM users WHERE email = ? COLLATE NOCASE", email)
	return scanUser(row)
}

func (s *Store) UserByID(ctx context.Context, id string) (model.User, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *Store) UpdateUser(ctx context.Context, user model.User) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE users SET email = ?, name = ?, password_hash = ? WHERE id = ?",
		user.Email, user.Name, user.PasswordHash, user.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

// DeleteUser removes the user with their snapshot and history.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM task_history WHERE user_id = ?",
		"DELETE FROM snapshots WHERE user_id = ?",
		"UPDATE device SET current_user_id = NULL WHERE current_user_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete user data: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) SetCurrentUser(ctx context.Context, userID string) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO device (id, current_user_id) VALUES (1, ?)
ON CONFLICT(id) DO UPDATE SET current_user_id = excluded.current_user_id`, userID)
	if err != nil {
		return fmt.Errorf("set current user: %w", err)
	}
	return nil
}

func (s *Store) ClearCurrentUser(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, "UPDATE device SET current_user_id = NULL WHERE id = 1"); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	return nil
}

func (s *Store) CurrentUserID(ctx context.Context) (string, bool, error) {
	var id sql.NullString
	err := s.DB.QueryRowContext(ctx, "SELECT current_user_id FROM device WHERE id = 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("current user: %w", err)
	}
	if !id.Valid || id.String == "" {
		return "", false, nil
	}
	return id.String, true, nil
}

func (s *Store) AddHistory(ctx context.Context, entry model.HistoryEntry) (model.HistoryEntry, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO task_history (user_id, task_id, event_type, details, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.UserID, entry.TaskID, entry.EventType, entry.Details, entry.CreatedAt.UTC())
	if err != nil {
		return model.HistoryEntry{}, fmt.Errorf("add history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.HistoryEntry{}, err
	}
	entry.ID = id
	return entry, nil
}

func (s *Store) ListHistory(ctx context.Context, userID, taskID string) ([]model.HistoryEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, user_id, task_id, event_type, details, created_at
FROM task_history WHERE user_id = ? AND task_id = ? ORDER BY id`, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	history := []model.HistoryEntry{}
	for rows.Next() {
		var entry model.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.TaskID, &entry.EventType, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// RecordTask appends a history entry describing a task event. before is
// ignored for "created" events.
func (s *Store) RecordTask(ctx context.Context, event string, before, after model.Task) error {
	var details string
	switch event {
	case "created":
		details = formatCreatedDetails(after)
	case "purged":
		details = formatPurgedDetails(before)
	default:
		details = formatTaskDiff(event, before, after)
	}

	userID, taskID := after.UserID, after.ID
	if taskID == "" {
		userID, taskID = before.UserID, before.ID
	}
	_, err := s.AddHistory(ctx, model.HistoryEntry{
		UserID:    userID,
		TaskID:    taskID,
		EventType: event,
		Details:   details,
	})
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var user model.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
