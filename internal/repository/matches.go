package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// MatchResult is the durable record of one finished match.
type MatchResult struct {
	MatchID     string
	Winner      string
	Loser       string
	Turns       int
	Surrendered bool
	StartedAt   time.Time
	EndedAt     time.Time
}

// Store persists match results in Postgres. The store is optional at
// runtime; callers hold a nil *Store when persistence is disabled.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New connects to the database and verifies the connection.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Init creates the results table when missing.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS match_results (
			match_id    TEXT PRIMARY KEY,
			winner      TEXT NOT NULL,
			loser       TEXT NOT NULL,
			turns       INT NOT NULL,
			surrendered BOOLEAN NOT NULL DEFAULT FALSE,
			started_at  TIMESTAMPTZ NOT NULL,
			ended_at    TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create match_results: %w", err)
	}
	return nil
}

// SaveResult records one finished match. Safe to call on a nil store.
func (s *Store) SaveResult(ctx context.Context, result MatchResult) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_results (match_id, winner, loser, turns, surrendered, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (match_id) DO NOTHING`,
		result.MatchID, result.Winner, result.Loser, result.Turns,
		result.Surrendered, result.StartedAt, result.EndedAt)
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}
	s.logger.Info("match result saved",
		zap.String("match_id", result.MatchID),
		zap.String("winner", result.Winner),
		zap.Int("turns", result.Turns),
	)
	return nil
}

// RecentResults returns the newest results, newest first.
func (s *Store) RecentResults(ctx context.Context, limit int) ([]MatchResult, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT match_id, winner, loser, turns, surrendered, started_at, ended_at
		FROM match_results ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query match results: %w", err)
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		var r MatchResult
		if err := rows.Scan(&r.MatchID, &r.Winner, &r.Loser, &r.Turns, &r.Surrendered, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close releases the connection pool. Safe on nil.
func (s *Store) Close() {
	if s != nil {
		s.pool.Close()
	}
}
