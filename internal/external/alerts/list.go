package alerts

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// List is the set of tickers on a regulatory alert or suspension list.
// Safe for concurrent use.
// ⭐ SSOT: alert hits are answered from here only
type List struct {
	mu        sync.RWMutex
	seed      []string
	tickers   map[string]struct{}
	updatedAt time.Time
}

// NewList creates a list holding seed. Seed tickers survive every Replace.
func NewList(seed []string) *List {
	l := &List{seed: normalizeAll(seed)}
	l.Replace(nil)
	return l
}

// Contains reports whether ticker is listed (case-insensitive)
func (l *List) Contains(ticker string) bool {
	key := normalize(ticker)
	if key == "" {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.tickers[key]
	return ok
}

// Replace sets the list to seed plus tickers
func (l *List) Replace(tickers []string) {
	next := make(map[string]struct{}, len(l.seed)+len(tickers))
	for _, t := range l.seed {
		next[t] = struct{}{}
	}
	for _, t := range tickers {
		if key := normalize(t); key != "" {
			next[key] = struct{}{}
		}
	}

	l.mu.Lock()
	l.tickers = next
	l.updatedAt = time.Now().UTC()
	l.mu.Unlock()
}

// Tickers returns the listed tickers sorted
func (l *List) Tickers() []string {
	l.mu.RLock()
	out := make([]string, 0, len(l.tickers))
	for t := range l.tickers {
		out = append(out, t)
	}
	l.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Len returns the number of listed tickers
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tickers)
}

// UpdatedAt returns when the list was last replaced
func (l *List) UpdatedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.updatedAt
}

func normalize(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if key := normalize(t); key != "" {
			out = append(out, key)
		}
	}
	return out
}
