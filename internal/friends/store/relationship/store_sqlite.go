package relationship

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"friendsd/internal/friends/models"
	"friendsd/internal/friends/store/relationship/migrations"
	"friendsd/internal/platform/storage/migrate"
	id "friendsd/pkg/domain"
)

// SQLiteStore keeps the classic layout: one users row per player with the
// friend list as a "|" separated column.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.Apply(ctx, db, migrate.SQLite, migrations.FS, "sqlite"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, owner id.PlayerID) (models.RelationshipSet, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, user_friends) VALUES (?, '')`, owner.String()); err != nil {
		return models.RelationshipSet{}, wrap("load relationships", err)
	}
	var raw string
	if err := s.db.QueryRowContext(ctx,
		`SELECT user_friends FROM users WHERE id = ?`, owner.String()).Scan(&raw); err != nil {
		return models.RelationshipSet{}, wrap("load relationships", err)
	}
	set, err := decodePeers(raw)
	if err != nil {
		return models.RelationshipSet{}, fmt.Errorf("load relationships: %w", err)
	}
	return set, nil
}

func (s *SQLiteStore) Save(ctx context.Context, owner id.PlayerID, set models.RelationshipSet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, user_friends) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET user_friends = excluded.user_friends`,
		owner.String(), encodePeers(set))
	if err != nil {
		return wrap("save relationships", err)
	}
	return nil
}

func (s *SQLiteStore) AddEdge(ctx context.Context, owner, peer id.PlayerID) error {
	return s.mutate(ctx, "add edge", owner, func(set *models.RelationshipSet) bool { return set.Add(peer) })
}

func (s *SQLiteStore) RemoveEdge(ctx context.Context, owner, peer id.PlayerID) error {
	return s.mutate(ctx, "remove edge", owner, func(set *models.RelationshipSet) bool { return set.Remove(peer) })
}

// mutate runs a read-modify-write of one row inside a transaction.
func (s *SQLiteStore) mutate(ctx context.Context, op string, owner id.PlayerID, fn func(*models.RelationshipSet) bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT user_friends FROM users WHERE id = ?`, owner.String()).Scan(&raw)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return wrap(op, err)
	}
	existed := err == nil
	set, err := decodePeers(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !fn(&set) && existed {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, user_friends) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET user_friends = excluded.user_friends`,
		owner.String(), encodePeers(set)); err != nil {
		return wrap(op, err)
	}
	if err := tx.Commit(); err != nil {
		return wrap(op, err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return wrap("ping sqlite", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
