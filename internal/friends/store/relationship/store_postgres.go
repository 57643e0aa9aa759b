package relationship

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"friendsd/internal/friends/models"
	"friendsd/internal/friends/store/relationship/migrations"
	"friendsd/internal/platform/storage/migrate"
	id "friendsd/pkg/domain"
)

// PostgresStore persists one row per player with the friend list in a
// UUID[] column. Single-edge changes are one atomic upsert each.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPostgresClock sets the clock used for updated_at.
func WithPostgresClock(clock func() time.Time) PostgresOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewPostgres wraps an open pool. Use OpenPostgres to also dial and migrate.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenPostgres dials dsn through the pgx driver and applies the schema.
func OpenPostgres(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, wrap("ping postgres", err)
	}
	if err := migrate.Apply(ctx, db, migrate.Postgres, migrations.FS, "postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return NewPostgres(db, opts...), nil
}

// Load returns the player's friends, inserting an empty row on first sight.
func (s *PostgresStore) Load(ctx context.Context, owner id.PlayerID) (models.RelationshipSet, error) {
	query := `
		INSERT INTO friendships (player_id, friend_ids, updated_at)
		VALUES ($1, '{}', $2)
		ON CONFLICT (player_id) DO UPDATE SET
			player_id = EXCLUDED.player_id
		RETURNING friend_ids::text[]
	`
	var peers []string
	if err := s.db.QueryRowContext(ctx, query, owner.String(), s.clock()).Scan(pq.Array(&peers)); err != nil {
		return models.RelationshipSet{}, wrap("load relationships", err)
	}
	set, err := parsePeers(peers)
	if err != nil {
		return models.RelationshipSet{}, fmt.Errorf("load relationships: %w", err)
	}
	return set, nil
}

func (s *PostgresStore) Save(ctx context.Context, owner id.PlayerID, set models.RelationshipSet) error {
	query := `
		INSERT INTO friendships (player_id, friend_ids, updated_at)
		VALUES ($1, $2::uuid[], $3)
		ON CONFLICT (player_id) DO UPDATE SET
			friend_ids = EXCLUDED.friend_ids,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, owner.String(), pq.Array(peerStrings(set)), s.clock()); err != nil {
		return wrap("save relationships", err)
	}
	return nil
}

func (s *PostgresStore) AddEdge(ctx context.Context, owner, peer id.PlayerID) error {
	query := `
		INSERT INTO friendships (player_id, friend_ids, updated_at)
		VALUES ($1, ARRAY[$2::uuid], $3)
		ON CONFLICT (player_id) DO UPDATE SET
			friend_ids = CASE
				WHEN $2::uuid = ANY(friendships.friend_ids) THEN friendships.friend_ids
				ELSE array_append(friendships.friend_ids, $2::uuid)
			END,
			updated_at = $3
	`
	if _, err := s.db.ExecContext(ctx, query, owner.String(), peer.String(), s.clock()); err != nil {
		return wrap("add edge", err)
	}
	return nil
}

func (s *PostgresStore) RemoveEdge(ctx context.Context, owner, peer id.PlayerID) error {
	query := `
		INSERT INTO friendships (player_id, friend_ids, updated_at)
		VALUES ($1, '{}', $3)
		ON CONFLICT (player_id) DO UPDATE SET
			friend_ids = array_remove(friendships.friend_ids, $2::uuid),
			updated_at = $3
	`
	if _, err := s.db.ExecContext(ctx, query, owner.String(), peer.String(), s.clock()); err != nil {
		return wrap("remove edge", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return wrap("ping postgres", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
