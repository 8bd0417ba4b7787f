package audit

import (
	"context"
	"testing"
	"time"

	"github.com/nerrad567/lookingglass/internal/infrastructure/database"
	"github.com/nerrad567/lookingglass/internal/lookingglass"
	"github.com/nerrad567/lookingglass/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(database.Config{Path: database.MemoryPath, BusyTimeout: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreate_GeneratesIDAndTimestamps(t *testing.T) {
	repo := newTestRepo(t)

	e := &Entry{Device: "r1", CommandID: "ping", Outcome: OutcomeSuccess}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(e.ID) != len("exe-")+8 || e.ID[:4] != "exe-" {
		t.Errorf("ID = %q, want exe-XXXXXXXX", e.ID)
	}
	if e.CreatedAt.IsZero() || !e.StartedAt.Equal(e.CreatedAt) {
		t.Errorf("timestamps = %v / %v", e.StartedAt, e.CreatedAt)
	}
}

func TestList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := []Entry{
		{Device: "r1", CommandID: "ping", Rendered: "ping 192.0.2.1", Outcome: OutcomeSuccess, DurationMS: 120, StartedAt: base},
		{Device: "r1", CommandID: "bgp_summary", Outcome: "command_not_allowed", Message: "Command not allowed", StartedAt: base.Add(time.Minute)},
		{Device: "r2", CommandID: "ping", Rendered: "ping 192.0.2.9", Outcome: OutcomeSuccess, StartedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name       string
		filter     Filter
		wantTotal  int
		wantFirst  string
		wantLength int
	}{
		{name: "all, newest first", filter: Filter{}, wantTotal: 3, wantFirst: "r2", wantLength: 3},
		{name: "by device", filter: Filter{Device: "r1"}, wantTotal: 2, wantFirst: "r1", wantLength: 2},
		{name: "by command", filter: Filter{CommandID: "ping"}, wantTotal: 2, wantFirst: "r2", wantLength: 2},
		{name: "by outcome", filter: Filter{Outcome: "command_not_allowed"}, wantTotal: 1, wantFirst: "r1", wantLength: 1},
		{name: "paged", filter: Filter{Limit: 1, Offset: 1}, wantTotal: 3, wantFirst: "r1", wantLength: 1},
		{name: "no match", filter: Filter{Device: "r9"}, wantTotal: 0, wantLength: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if res.Total != tt.wantTotal || len(res.Entries) != tt.wantLength {
				t.Fatalf("List() total=%d len=%d, want %d and %d", res.Total, len(res.Entries), tt.wantTotal, tt.wantLength)
			}
			if tt.wantLength > 0 && res.Entries[0].Device != tt.wantFirst {
				t.Errorf("first device = %q, want %q", res.Entries[0].Device, tt.wantFirst)
			}
		})
	}
}

func TestList_ClampsLimit(t *testing.T) {
	repo := newTestRepo(t)
	res, err := repo.List(context.Background(), Filter{Limit: 10000, Offset: -3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Limit != maxLimit || res.Offset != 0 {
		t.Errorf("limit=%d offset=%d, want %d and 0", res.Limit, res.Offset, maxLimit)
	}
	if res.Entries == nil {
		t.Error("Entries should be an empty slice, not nil")
	}
}

func TestRecorder(t *testing.T) {
	repo := newTestRepo(t)
	rec := NewRecorder(repo)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	execs := []lookingglass.Execution{
		{Device: "r1", CommandID: "ping", Rendered: "ping 192.0.2.1", Driver: "ios", StartedAt: started, Duration: 250 * time.Millisecond, OutputBytes: 42},
		{Device: "r1", CommandID: "ping", Kind: lookingglass.KindMissingRequiredVariable, Message: "Missing required variable: ip", StartedAt: started.Add(time.Second)},
	}
	for _, e := range execs {
		if err := rec.ObserveExecution(ctx, e); err != nil {
			t.Fatalf("ObserveExecution() error = %v", err)
		}
	}

	res, err := repo.List(ctx, Filter{Device: "r1"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.Entries))
	}

	failed, ok := res.Entries[0], res.Entries[1]
	if failed.Outcome != string(lookingglass.KindMissingRequiredVariable) || failed.Message == "" {
		t.Errorf("failed entry = %+v", failed)
	}
	if ok.Outcome != OutcomeSuccess || ok.DurationMS != 250 || ok.OutputBytes != 42 || ok.Driver != "ios" {
		t.Errorf("success entry = %+v", ok)
	}
	if !ok.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", ok.StartedAt, started)
	}
}
