// Package ratelimit provides a sliding-window rate limiter keyed by action
// category, with windows persisted across runs as JSON arrays of
// epoch-millisecond timestamps.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Rule bounds one category: at most MaxCalls timestamps younger than Window
// ever count as active.
type Rule struct {
	MaxCalls int
	Window   time.Duration
}

// DefaultRules covers the rate-limited action categories.
var DefaultRules = map[string]Rule{
	"transactions":       {MaxCalls: 10, Window: time.Minute},
	"queries":            {MaxCalls: 30, Window: time.Minute},
	"wallet_connections": {MaxCalls: 5, Window: time.Minute},
}

// Limiter is an injectable sliding-window limiter. All window reads and
// writes happen under one mutex; the at-most-MaxCalls invariant holds on a
// multi-threaded host.
type Limiter struct {
	mu       sync.Mutex
	rules    map[string]Rule
	windows  map[string][]int64 // epoch ms, ascending
	loaded   map[string]bool
	stateDir string
	now      func() time.Time
}

// New creates a limiter persisting windows under stateDir. An empty stateDir
// keeps windows in memory only.
func New(stateDir string, rules map[string]Rule) *Limiter {
	if rules == nil {
		rules = DefaultRules
	}
	return &Limiter{
		rules:    rules,
		windows:  make(map[string][]int64),
		loaded:   make(map[string]bool),
		stateDir: stateDir,
		now:      time.Now,
	}
}

// CanMakeCall reports whether another call in the category is currently
// within bounds. Unknown categories are unlimited.
func (l *Limiter) CanMakeCall(category string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rule, ok := l.rules[category]
	if !ok {
		return true
	}
	active := l.prune(category, rule)
	return len(active) < rule.MaxCalls
}

// RecordCall appends the current instant to the category's window and
// persists it.
func (l *Limiter) RecordCall(category string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rule, ok := l.rules[category]
	if !ok {
		return
	}
	active := l.prune(category, rule)
	l.windows[category] = append(active, l.now().UnixMilli())
	l.persist(category)
}

// RetryAfter returns how long until the next call in the category would be
// allowed; zero when a call is allowed now.
func (l *Limiter) RetryAfter(category string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	rule, ok := l.rules[category]
	if !ok {
		return 0
	}
	active := l.prune(category, rule)
	if len(active) < rule.MaxCalls {
		return 0
	}
	oldest := time.UnixMilli(active[len(active)-rule.MaxCalls])
	wait := oldest.Add(rule.Window).Sub(l.now())
	if wait < 0 {
		return 0
	}
	return wait
}

// Reset clears the category's window.
func (l *Limiter) Reset(category string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.windows[category] = nil
	l.loaded[category] = true
	l.persist(category)
}

// prune loads the window if needed and drops timestamps older than the rule
// window. Caller holds the mutex.
func (l *Limiter) prune(category string, rule Rule) []int64 {
	if !l.loaded[category] {
		l.windows[category] = l.load(category)
		l.loaded[category] = true
	}

	cutoff := l.now().Add(-rule.Window).UnixMilli()
	window := l.windows[category]
	keep := window[:0]
	for _, ts := range window {
		if ts > cutoff {
			keep = append(keep, ts)
		}
	}
	l.windows[category] = keep
	return keep
}

func (l *Limiter) statePath(category string) string {
	return filepath.Join(l.stateDir, fmt.Sprintf("ratelimit_%s.json", category))
}

// load reads a persisted window. Missing or corrupted state degrades to an
// empty window, never a failure.
func (l *Limiter) load(category string) []int64 {
	if l.stateDir == "" {
		return nil
	}
	data, err := os.ReadFile(l.statePath(category))
	if err != nil {
		return nil
	}
	var window []int64
	if err := json.Unmarshal(data, &window); err != nil {
		zap.L().Debug("discarding corrupted rate-limit state",
			zap.String("category", category),
			zap.Error(err))
		return nil
	}
	return window
}

func (l *Limiter) persist(category string) {
	if l.stateDir == "" {
		return
	}
	if err := os.MkdirAll(l.stateDir, 0o755); err != nil {
		zap.L().Debug("failed to create rate-limit state dir", zap.Error(err))
		return
	}
	window := l.windows[category]
	if window == nil {
		window = []int64{}
	}
	data, err := json.Marshal(window)
	if err != nil {
		return
	}
	if err := os.WriteFile(l.statePath(category), data, 0o644); err != nil {
		zap.L().Debug("failed to persist rate-limit state",
			zap.String("category", category),
			zap.Error(err))
	}
}
