package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/account-service/internal/domain"
)

// MemoryRevocationList is a process-lifetime domain.RevocationList.
// It is safe for concurrent use.
type MemoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time // token -> token expiry
}

// NewMemoryRevocationList creates an empty in-memory revocation list.
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{revoked: make(map[string]time.Time)}
}

func (l *MemoryRevocationList) Revoke(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.revoked[token]; ok {
		return false, nil
	}
	l.revoked[token] = expiresAt
	return true, nil
}

func (l *MemoryRevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.revoked[token]
	return ok, nil
}

func (l *MemoryRevocationList) Prune(ctx context.Context, now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for token, exp := range l.revoked {
		if exp.Before(now) {
			delete(l.revoked, token)
			n++
		}
	}
	return n, nil
}

// Len reports the number of entries held.
func (l *MemoryRevocationList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.revoked)
}

// RevocationPruner periodically drops revocation entries whose tokens have
// expired on their own.
type RevocationPruner struct {
	list     domain.RevocationList
	interval time.Duration
	now      func() time.Time
}

// NewRevocationPruner creates a pruner that runs every interval.
func NewRevocationPruner(list domain.RevocationList, interval time.Duration) *RevocationPruner {
	return &RevocationPruner{list: list, interval: interval, now: time.Now}
}

// Run prunes on every tick until ctx is cancelled.
func (p *RevocationPruner) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PruneOnce(ctx)
		}
	}
}

// PruneOnce runs a single prune pass and returns the number of entries removed.
func (p *RevocationPruner) PruneOnce(ctx context.Context) int {
	n, err := p.list.Prune(ctx, p.now())
	if err != nil {
		slog.Error("prune revoked tokens", "error", err)
		return 0
	}
	if n > 0 {
		slog.Debug("pruned revoked tokens", "count", n)
	}
	return n
}
