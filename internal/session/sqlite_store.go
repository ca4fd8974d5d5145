package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps sessions in the scaling_sessions table. The schema is
// owned by internal/migrations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Create(ctx context.Context, sess *Session) error {
	blob, err := encodeState(sess)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scaling_sessions (id, kind, subject_id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sess.ID, string(sess.Kind), sess.SubjectID, blob,
		sess.CreatedAt.UTC().Format(timeLayout), sess.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	var (
		sess      Session
		kind      string
		blob      []byte
		createdAt string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, subject_id, state, created_at, updated_at
		FROM scaling_sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &kind, &sess.SubjectID, &blob, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess.Kind = Kind(kind)
	if sess.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse session created_at: %w", err)
	}
	if sess.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse session updated_at: %w", err)
	}
	if err := decodeState(blob, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SQLiteStore) Update(ctx context.Context, sess *Session) error {
	blob, err := encodeState(sess)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE scaling_sessions
		SET state = ?, updated_at = ?
		WHERE id = ?
	`, blob, sess.UpdatedAt.UTC().Format(timeLayout), sess.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return requireOneRow(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scaling_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return requireOneRow(res)
}

// Prune deletes stale sessions in one transaction.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM scaling_sessions WHERE updated_at < ?`, before.UTC().Format(timeLayout))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("read pruned rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune transaction: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scaling_sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
