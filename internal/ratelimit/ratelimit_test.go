package ratelimit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testRules() map[string]Rule {
	return map[string]Rule{
		"transactions": {MaxCalls: 2, Window: time.Minute},
	}
}

func TestLimiterBlocksAtMaxCalls(t *testing.T) {
	l := New("", testRules())

	require.True(t, l.CanMakeCall("transactions"))
	l.RecordCall("transactions")
	require.True(t, l.CanMakeCall("transactions"))
	l.RecordCall("transactions")

	require.False(t, l.CanMakeCall("transactions"))
	require.Greater(t, l.RetryAfter("transactions"), time.Duration(0))
}

func TestLimiterResetClearsWindow(t *testing.T) {
	l := New("", testRules())
	l.RecordCall("transactions")
	l.RecordCall("transactions")
	require.False(t, l.CanMakeCall("transactions"))

	l.Reset("transactions")
	require.True(t, l.CanMakeCall("transactions"))
}

func TestLimiterExpiresOldTimestamps(t *testing.T) {
	l := New("", testRules())
	now := time.Now()
	l.now = func() time.Time { return now }

	l.RecordCall("transactions")
	l.RecordCall("transactions")
	require.False(t, l.CanMakeCall("transactions"))

	l.now = func() time.Time { return now.Add(61 * time.Second) }
	require.True(t, l.CanMakeCall("transactions"))
	require.Zero(t, l.RetryAfter("transactions"))
}

func TestLimiterUnknownCategoryIsUnlimited(t *testing.T) {
	l := New("", testRules())
	for i := 0; i < 100; i++ {
		l.RecordCall("nonsense")
	}
	require.True(t, l.CanMakeCall("nonsense"))
}

func TestLimiterPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	l1 := New(dir, testRules())
	l1.RecordCall("transactions")
	l1.RecordCall("transactions")

	l2 := New(dir, testRules())
	require.False(t, l2.CanMakeCall("transactions"))
}

func TestLimiterCorruptedStateDegradesToEmptyWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ratelimit_transactions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	l := New(dir, testRules())
	require.True(t, l.CanMakeCall("transactions"))
}

func TestLimiterMissingStateDirIsEmptyWindow(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "does", "not", "exist"), testRules())
	require.True(t, l.CanMakeCall("transactions"))
}
