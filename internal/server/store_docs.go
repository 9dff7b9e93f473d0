package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/artsfest/festboard/internal/festival"
)

// DocStore implements Gateway over per-model sqlite tables with JSONB data
// columns: each program is one document, updated as a whole. After every
// successful mutation the full ordered collection is pushed to the broker,
// which is how subscribers get the real-time view.
type DocStore struct {
	db     *sql.DB
	broker *Broker
	logger *slog.Logger

	// writeMu serializes read-modify-write transactions: sqlite allows a
	// single writer, and a second concurrent write transaction would fail
	// rather than wait.
	writeMu sync.Mutex
}

func NewDocStore(ctx context.Context, db *sql.DB, broker *Broker, logger *slog.Logger) (*DocStore, error) {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS programs (
			id         TEXT PRIMARY KEY,
			start_time TEXT NOT NULL,
			data       JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id       TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			data     JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id   TEXT PRIMARY KEY,
			data JSONB NOT NULL
		)`,
	} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("creating table: %w", err)
		}
	}
	return &DocStore{db: db, broker: broker, logger: logger}, nil
}

// notify pushes the current collection to subscribers. Failures are logged,
// not surfaced: the write that triggered the push already succeeded.
func (s *DocStore) notify(ctx context.Context) {
	if s.broker == nil {
		return
	}
	programs, err := s.ListPrograms(ctx)
	if err != nil {
		s.logger.Error("loading programs for subscription push", "error", err)
		return
	}
	s.broker.Publish(programs)
}

// ListPrograms returns the full collection ordered by start time ascending
// (plain string compare — start times are display strings, not validated
// timestamps), with id as the tiebreaker.
func (s *DocStore) ListPrograms(ctx context.Context) ([]festival.Program, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json(data) FROM programs ORDER BY start_time, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programs []festival.Program
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var p festival.Program
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

func (s *DocStore) GetProgram(ctx context.Context, id string) (festival.Program, error) {
	var p festival.Program
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM programs WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	return p, json.Unmarshal([]byte(data), &p)
}

func (s *DocStore) CreateProgram(ctx context.Context, p festival.Program) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = festival.StatusPending
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO programs (id, start_time, data) VALUES (?, ?, jsonb(?))`,
		p.ID, p.StartTime, string(data),
	)
	if err != nil {
		return "", err
	}
	s.notify(ctx)
	return p.ID, nil
}

// UpdateProgram applies a partial update in a read-modify-write transaction,
// so each program write is atomic even when two editors race (last write
// wins, no conflict detection).
func (s *DocStore) UpdateProgram(ctx context.Context, id string, patch ProgramPatch) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.updateInTx(ctx, tx, id, patch); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *DocStore) updateInTx(ctx context.Context, q execer, id string, patch ProgramPatch) error {
	var data string
	err := q.QueryRowContext(ctx,
		`SELECT json(data) FROM programs WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var p festival.Program
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return err
	}
	patch.apply(&p)

	updated, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`UPDATE programs SET start_time = ?, data = jsonb(?) WHERE id = ?`,
		p.StartTime, string(updated), id,
	)
	return err
}

func (s *DocStore) DeleteProgram(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	s.notify(ctx)
	return nil
}

// BatchUpdatePrograms applies all updates in one transaction: atomic from the
// caller's point of view, with a single subscription push at the end. Callers
// needing best-effort partial success issue individual UpdateProgram calls
// instead.
func (s *DocStore) BatchUpdatePrograms(ctx context.Context, updates []ProgramUpdate) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range updates {
		if err := s.updateInTx(ctx, tx, u.ID, u.Patch); err != nil {
			return fmt.Errorf("updating program %s: %w", u.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// Users and sessions.

type sessionDoc struct {
	UserID string `json:"userId"`
}

// storedUser carries the password hash, which User deliberately keeps out of
// JSON responses.
type storedUser struct {
	User
	PasswordHash string `json:"passwordHash"`
}

func (s *DocStore) CreateUser(ctx context.Context, u User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	data, err := json.Marshal(storedUser{User: u, PasswordHash: u.PasswordHash})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, data) VALUES (?, ?, jsonb(?))`,
		u.ID, u.Username, string(data),
	)
	return err
}

func (s *DocStore) UserByUsername(ctx context.Context, username string) (User, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM users WHERE username = ?`, username,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	var su storedUser
	if err := json.Unmarshal([]byte(data), &su); err != nil {
		return User{}, err
	}
	su.User.PasswordHash = su.PasswordHash
	return su.User, nil
}

func (s *DocStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (s *DocStore) CreateSession(ctx context.Context, userID string) (string, error) {
	sessionID := uuid.NewString()
	data, err := json.Marshal(sessionDoc{UserID: userID})
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, data) VALUES (?, jsonb(?))`,
		sessionID, string(data),
	)
	return sessionID, err
}

func (s *DocStore) SessionUser(ctx context.Context, sessionID string) (User, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(u.data)
		 FROM sessions s
		 JOIN users u ON u.id = s.data ->> 'userId'
		 WHERE s.id = ?`, sessionID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	var su storedUser
	if err := json.Unmarshal([]byte(data), &su); err != nil {
		return User{}, err
	}
	su.User.PasswordHash = su.PasswordHash
	return su.User, nil
}

func (s *DocStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}
