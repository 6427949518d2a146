package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// RevocationStore implements domain.RevocationList on a SQLite table keyed
// by the SHA-256 digest of each token and indexed by token expiry.
type RevocationStore struct {
	db *sql.DB
}

// NewRevocationStore creates a SQLite-backed RevocationStore.
func NewRevocationStore(db *DB) *RevocationStore {
	return &RevocationStore{db: db.SqlDB}
}

func (s *RevocationStore) Revoke(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (token_hash, expires_at, revoked_at)
		 VALUES (?, ?, ?)`,
		tokenHash(token), expiresAt.UTC().Unix(), time.Now().UTC().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("insert revoked token: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM revoked_tokens WHERE token_hash = ?", tokenHash(token),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query revoked token: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationStore) Prune(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM revoked_tokens WHERE expires_at < ?", now.UTC().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("prune revoked tokens: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
