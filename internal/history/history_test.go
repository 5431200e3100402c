package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenEmptyDSNDiscards(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
	if err := s.Record(context.Background(), Event{Type: EventStart}); err != nil {
		t.Fatalf("nop record: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
}

func TestSQLiteSinkRecord(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")
	s, err := NewSQLiteSink(dsn)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	events := []Event{
		{Type: EventStart, OccurredAt: time.Now(), PID: 100, Detail: "threads=4"},
		{Type: EventKill, OccurredAt: time.Now(), PID: 100, Detail: "escalated after graceful wait"},
		{Type: EventStop, OccurredAt: time.Now(), PID: 100},
	}
	for _, e := range events {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("record %s: %v", e.Type, err)
		}
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_history`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != len(events) {
		t.Fatalf("expected %d rows, got %d", len(events), n)
	}

	var event string
	var pid int
	row := s.db.QueryRowContext(ctx,
		`SELECT event, pid FROM job_history WHERE event = ?`, string(EventKill))
	if err := row.Scan(&event, &pid); err != nil {
		t.Fatalf("select kill row: %v", err)
	}
	if event != string(EventKill) || pid != 100 {
		t.Fatalf("unexpected row: %s %d", event, pid)
	}
}

func TestSQLiteSinkDSNPrefix(t *testing.T) {
	s, err := NewSQLiteSink("sqlite://" + filepath.Join(t.TempDir(), "h.db"))
	if err != nil {
		t.Fatalf("prefixed dsn: %v", err)
	}
	_ = s.Close()
}

func TestSQLiteSinkEmptyDSN(t *testing.T) {
	if _, err := NewSQLiteSink("  "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
