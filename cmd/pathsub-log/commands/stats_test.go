package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pathsub/pathsub-go/pkg/clock"
	"github.com/pathsub/pathsub-go/pkg/log"
	"github.com/pathsub/pathsub-go/pkg/pathtree"
	"github.com/pathsub/pathsub-go/pkg/subscription"
)

func TestStatsCountsByKind(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Kind: log.KindSubscribe, Path: []string{"user"}},
		{Timestamp: ts, Kind: log.KindPublish, Path: []string{"user"}},
		{Timestamp: ts, Kind: log.KindPublish, Path: []string{"user"}},
		{Timestamp: ts, Kind: log.KindSettle, Path: []string{"user"}, Listeners: 1},
		{Timestamp: ts, Kind: log.KindError, Path: []string{"nobody"}, Error: "no subscribers"},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Total Events: 5") {
		t.Errorf("expected 5 events, got: %s", output)
	}
	if !strings.Contains(output, "SUBSCRIBE:") {
		t.Error("expected SUBSCRIBE kind in output")
	}
	if !strings.Contains(output, "PUBLISH:") {
		t.Error("expected PUBLISH kind in output")
	}
	if strings.Contains(output, "UNSUBSCRIBE:") {
		t.Error("expected no UNSUBSCRIBE line when count is zero")
	}
	if !strings.Contains(output, "Errors: 1") {
		t.Errorf("expected error count, got: %s", output)
	}
}

func TestStatsPerPath(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Kind: log.KindPublish, Path: []string{"user"}, Armed: true},
		{Timestamp: ts.Add(5 * time.Millisecond), Kind: log.KindPublish, Path: []string{"user"}, Armed: true},
		{Timestamp: ts.Add(10 * time.Millisecond), Kind: log.KindPublish, Path: []string{"user"}, Armed: true},
		{Timestamp: ts.Add(30 * time.Millisecond), Kind: log.KindSettle, Path: []string{"user"}, Listeners: 2},
		{Timestamp: ts.Add(40 * time.Millisecond), Kind: log.KindSubscribe},
	}

	stats, err := CollectStats(createTestLogFile(t, events))
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}

	if len(stats.Paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(stats.Paths))
	}

	user := stats.Paths[pathtree.Path{"user"}.Key()]
	if user == nil {
		t.Fatal("expected stats for user")
	}
	if user.Publishes != 3 || user.Settlements != 1 {
		t.Errorf("expected 3 publishes and 1 settlement, got %d and %d", user.Publishes, user.Settlements)
	}
	if user.Coalesced() != 2 {
		t.Errorf("expected 2 coalesced, got %d", user.Coalesced())
	}
	if user.Delivered != 2 {
		t.Errorf("expected 2 delivered, got %d", user.Delivered)
	}
	if d := user.LastSeen.Sub(user.FirstSeen); d != 30*time.Millisecond {
		t.Errorf("expected 30ms span, got %s", d)
	}

	if stats.Paths[pathtree.Path{}.Key()] == nil {
		t.Error("expected root path stats")
	}
	if d := stats.TimeRange.End.Sub(stats.TimeRange.Start); d != 40*time.Millisecond {
		t.Errorf("expected 40ms range, got %s", d)
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Total Events: 0") {
		t.Errorf("expected 0 events, got: %s", output)
	}
	if strings.Contains(output, "Time Range") {
		t.Errorf("expected no time range for empty file, got: %s", output)
	}
}

func TestStatsSeparatesPathsAndUnobservedPublishes(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "session.plog")
	trace, err := log.NewFileLogger(tracePath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	c := clock.Fake(time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC))
	store := subscription.NewStoreWithConfig(map[string]any{"a": map[string]any{}}, subscription.Config{
		Delay:                  20 * time.Millisecond,
		Clock:                  c,
		AllowUnobservedPublish: true,
		Trace:                  trace,
	})

	nested := pathtree.Path{"a", "b"}
	slashed := pathtree.Path{"a/b"}
	store.Subscribe(nested, func(any, *subscription.Subscription) {})
	if err := store.Publish(slashed, map[string]any{"k": "unobserved"}); err != nil {
		t.Fatalf("unobserved publish failed: %v", err)
	}
	if err := store.Publish(nested, map[string]any{"k": "observed"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	c.Advance(time.Second)
	trace.Close()

	stats, err := CollectStats(tracePath)
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}

	if len(stats.Paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(stats.Paths))
	}

	n := stats.Paths[nested.Key()]
	if n == nil {
		t.Fatal("expected stats for [a b]")
	}
	if n.Publishes != 1 || n.Armed != 1 || n.Settlements != 1 || n.Coalesced() != 0 {
		t.Errorf("[a b]: publishes=%d armed=%d settlements=%d coalesced=%d, want 1/1/1/0",
			n.Publishes, n.Armed, n.Settlements, n.Coalesced())
	}

	s := stats.Paths[slashed.Key()]
	if s == nil {
		t.Fatal("expected stats for [a/b]")
	}
	if s.Publishes != 1 || s.Unobserved() != 1 || s.Settlements != 0 || s.Coalesced() != 0 {
		t.Errorf("[a/b]: publishes=%d unobserved=%d settlements=%d coalesced=%d, want 1/1/0/0",
			s.Publishes, s.Unobserved(), s.Settlements, s.Coalesced())
	}

	var buf bytes.Buffer
	printStats(&buf, stats)
	output := buf.String()
	if !strings.Contains(output, `["a/b"]: 1 events, 1 publishes, 1 unobserved, 0 settlements, 0 coalesced`) {
		t.Errorf("expected separate row for [a/b], got: %s", output)
	}
	if !strings.Contains(output, `["a" "b"]: 3 events, 1 publishes, 0 unobserved, 1 settlements, 0 coalesced, 1 delivered`) {
		t.Errorf("expected separate row for [a b], got: %s", output)
	}
}
