package badges

import (
	"sync"

	"github.com/samber/lo"
)

// Ledger accumulates badges earned during one lesson or quiz. Adding a
// badge twice is a no-op.
type Ledger struct {
	mu     sync.Mutex
	earned []Badge
}

// Add records b and reports whether it was new to this ledger.
func (l *Ledger) Add(b Badge) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lo.Contains(l.earned, b) {
		return false
	}
	l.earned = append(l.earned, b)
	return true
}

// AddAll records every badge in bs.
func (l *Ledger) AddAll(bs ...Badge) {
	for _, b := range bs {
		l.Add(b)
	}
}

// Earned returns the badges in the order they were first added.
func (l *Ledger) Earned() []Badge {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Badge(nil), l.earned...)
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.earned)
}

// Strings converts badges to their stored labels, dropping duplicates.
func Strings(bs []Badge) []string {
	return lo.Uniq(lo.Map(bs, func(b Badge, _ int) string { return string(b) }))
}
