package service

import "time"

// SetClock replaces the limiter's time source.
func (tb *TokenBucket) SetClock(now func() time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.now = now
}

// DropStale runs one cleanup pass.
func (tb *TokenBucket) DropStale() int {
	return tb.dropStale()
}

// SetClock replaces the pruner's time source.
func (p *RevocationPruner) SetClock(now func() time.Time) {
	p.now = now
}
