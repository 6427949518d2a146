package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/account-service/internal/domain"
	"github.com/msomdec/account-service/internal/repository/sqlite"
)

// Verify the SQLite types satisfy their domain interfaces at compile time.
var (
	_ domain.Database       = (*sqlite.DB)(nil)
	_ domain.RevocationList = (*sqlite.RevocationStore)(nil)
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file was not created")
	}

	var mode string
	if err := db.SqlDB.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("check journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected journal_mode=wal, got %q", mode)
	}
}

func TestRevocationStore_RevokeIsIdempotent(t *testing.T) {
	store := newTestDB(t).Revocations()
	ctx := context.Background()
	exp := time.Now().Add(30 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "tok-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("expected fresh token not to be revoked")
	}

	if inserted, err := store.Revoke(ctx, "tok-1", exp); err != nil || !inserted {
		t.Fatalf("Revoke: inserted=%v err=%v", inserted, err)
	}
	if inserted, err := store.Revoke(ctx, "tok-1", exp); err != nil || inserted {
		t.Fatalf("second Revoke: inserted=%v err=%v", inserted, err)
	}

	revoked, err = store.IsRevoked(ctx, "tok-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected token to be revoked")
	}

	if other, _ := store.IsRevoked(ctx, "tok-2"); other {
		t.Fatal("expected unrelated token not to be revoked")
	}
}

func TestRevocationStore_Prune(t *testing.T) {
	store := newTestDB(t).Revocations()
	ctx := context.Background()
	now := time.Now()

	if _, err := store.Revoke(ctx, "expired", now.Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke expired: %v", err)
	}
	if _, err := store.Revoke(ctx, "live", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke live: %v", err)
	}

	n, err := store.Prune(ctx, now)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned, got %d", n)
	}

	if revoked, _ := store.IsRevoked(ctx, "live"); !revoked {
		t.Fatal("expected live token to stay revoked after prune")
	}
	if revoked, _ := store.IsRevoked(ctx, "expired"); revoked {
		t.Fatal("expected expired entry to be pruned")
	}
}

func TestRevocationStore_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "revocations.db")
	ctx := context.Background()

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := db.Revocations().Revoke(ctx, "persisted", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	db.Close()

	reopened, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Migrate(ctx); err != nil {
		t.Fatalf("Migrate after reopen: %v", err)
	}

	revoked, err := reopened.Revocations().IsRevoked(ctx, "persisted")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected revocation to survive a restart")
	}
}
