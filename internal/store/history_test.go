package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/greenlint/internal/model"
)

func openTemp(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestHistory_SaveAndRecent(t *testing.T) {
	h := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, carbon := range []float64{10, 8, 5} {
		r := &model.ScanResult{Root: "/repo", TotalCarbon: carbon, Passed: i != 1, FilesScanned: 3}
		rec := NewRecord(r, "hash", model.Sustainability{Score: 40 + i, Points: 20, Badges: []string{"green_starter"}}, base.Add(time.Duration(i)*time.Hour))
		if err := h.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	other := NewRecord(&model.ScanResult{Root: "/other"}, "h2", model.Sustainability{}, base)
	if err := h.Save(ctx, other); err != nil {
		t.Fatalf("Save: %v", err)
	}

	recs, err := h.Recent(ctx, "/repo", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Carbon != 5 || recs[1].Carbon != 8 {
		t.Errorf("order = %v, %v; want newest first", recs[0].Carbon, recs[1].Carbon)
	}
	if recs[1].Passed {
		t.Error("second scan should be recorded as failing")
	}
	if len(recs[0].Badges) != 1 || recs[0].Badges[0] != "green_starter" {
		t.Errorf("badges = %v", recs[0].Badges)
	}
	if !recs[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("created = %v", recs[0].CreatedAt)
	}

	all, err := h.Recent(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("all roots: got %d, want 4", len(all))
	}
	if n, _ := h.Count(ctx); n != 4 {
		t.Errorf("Count = %d, want 4", n)
	}
}

func TestHistory_Baseline(t *testing.T) {
	h := openTemp(t)
	ctx := context.Background()

	b, err := h.Baseline(ctx, "/repo")
	if err != nil {
		t.Fatal(err)
	}
	if b.Scans != 0 {
		t.Fatalf("empty history baseline = %+v", b)
	}

	now := time.Now()
	for i, passed := range []bool{true, false, true} {
		r := &model.ScanResult{Root: "/repo", TotalCarbon: float64(10 - i), Passed: passed}
		rec := NewRecord(r, "x", model.Sustainability{Points: 15, Intensity: 379}, now.Add(time.Duration(i)*time.Second))
		if err := h.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	b, err = h.Baseline(ctx, "/repo")
	if err != nil {
		t.Fatal(err)
	}
	want := model.Baseline{Scans: 3, PassingScans: 2, LastCarbon: 8, LastIntensity: 379, TotalPoints: 45}
	if b != want {
		t.Errorf("baseline = %+v, want %+v", b, want)
	}
}

func TestHistory_RecentOrdersWithinOneSecond(t *testing.T) {
	h := openTemp(t)
	ctx := context.Background()
	// RFC3339Nano would store these as ...:00Z and ...:00.1Z, which sort
	// the wrong way round as text.
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, carbon := range []float64{7, 3} {
		rec := NewRecord(&model.ScanResult{Root: "/repo", TotalCarbon: carbon}, "h", model.Sustainability{},
			at.Add(time.Duration(i)*100*time.Millisecond))
		if err := h.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := h.Recent(ctx, "/repo", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Carbon != 3 {
		t.Fatalf("recent = %+v, want the later scan first", recs)
	}
	if !recs[0].CreatedAt.Equal(at.Add(100 * time.Millisecond)) {
		t.Errorf("CreatedAt = %v", recs[0].CreatedAt)
	}

	b, err := h.Baseline(ctx, "/repo")
	if err != nil {
		t.Fatal(err)
	}
	if b.LastCarbon != 3 {
		t.Errorf("LastCarbon = %v, want 3", b.LastCarbon)
	}
}

func TestHistory_BaselineCountsBudgetAndGreenRegions(t *testing.T) {
	h := openTemp(t)
	ctx := context.Background()
	now := time.Now()

	scans := []struct {
		carbon, ceiling, intensity float64
	}{
		{5, 10, 30},   // under budget, green
		{12, 10, 30},  // over budget, green
		{10, 10, 379}, // at the ceiling, moderate
		{5, 0, 0},     // no ceiling, no regions
	}
	for i, sc := range scans {
		r := &model.ScanResult{Root: "/repo", TotalCarbon: sc.carbon, Passed: true,
			Budget: model.NewBudgetStats(sc.carbon, 0, sc.ceiling, 0)}
		rec := NewRecord(r, "x", model.Sustainability{Intensity: sc.intensity}, now.Add(time.Duration(i)*time.Second))
		if err := h.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	b, err := h.Baseline(ctx, "/repo")
	if err != nil {
		t.Fatal(err)
	}
	if b.Scans != 4 || b.PassingScans != 4 || b.UnderBudget != 2 || b.GreenRegion != 2 {
		t.Errorf("baseline = %+v, want 4 scans, 4 passing, 2 under budget, 2 green", b)
	}

	recs, err := h.Recent(ctx, "/repo", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !recs[3].UnderBudget || recs[2].UnderBudget {
		t.Errorf("under-budget flags not round-tripped: %+v", recs)
	}
}

func TestRebind(t *testing.T) {
	pg := &History{dialect: Postgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	lite := &History{dialect: SQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind = %q", got)
	}
}
