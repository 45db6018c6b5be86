package daily

import (
	"context"
	"testing"
	"time"

	"github.com/robalobadob/searchrescue/internal/records"
)

func TestSeedStablePerDay(t *testing.T) {
	morning := time.Date(2026, 10, 17, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC)
	next := time.Date(2026, 10, 18, 0, 0, 1, 0, time.UTC)

	if Seed(morning, "salt") != Seed(evening, "salt") {
		t.Fatal("seed changed within one UTC day")
	}
	if Seed(morning, "salt") == Seed(next, "salt") {
		t.Fatal("seed repeated on the next day")
	}
	if Seed(morning, "salt") == Seed(morning, "pepper") {
		t.Fatal("salt does not affect the seed")
	}
	if DateKey(evening.In(time.FixedZone("UTC+5", 5*3600))) != "2026-10-17" {
		t.Fatal("date key is not UTC")
	}
}

func TestStoreLeaderboard(t *testing.T) {
	ctx := context.Background()
	db, err := records.Open(records.MemoryDSN)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := records.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := NewStore(db)
	date := "2026-10-17"

	if played, err := s.AlreadyPlayed(ctx, "a", date); err != nil || played {
		t.Fatalf("played = %v, %v", played, err)
	}
	for _, r := range []Result{
		{UserID: "a", Date: date, GameID: "g1", Found: true, TurnsUsed: 4, ElapsedMs: 900},
		{UserID: "b", Date: date, GameID: "g2", Found: true, TurnsUsed: 2, ElapsedMs: 5000},
		{UserID: "c", Date: date, GameID: "g3", Found: false, TurnsUsed: 10, ElapsedMs: 100},
		{UserID: "d", Date: date, GameID: "g4", Found: true, TurnsUsed: 4, ElapsedMs: 300},
		{UserID: "a", Date: date, GameID: "g5", Found: true, TurnsUsed: 1, ElapsedMs: 1},
	} {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatalf("insert %+v: %v", r, err)
		}
	}
	if played, err := s.AlreadyPlayed(ctx, "c", date); err != nil || !played {
		t.Fatalf("c played = %v, %v", played, err)
	}

	top, err := s.Leaderboard(ctx, date, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	want := []string{"b", "d", "a"}
	if len(top) != len(want) {
		t.Fatalf("leaderboard = %+v", top)
	}
	for i, id := range want {
		if top[i].UserID != id {
			t.Fatalf("position %d = %s, want %s (%+v)", i+1, top[i].UserID, id, top)
		}
	}
	if top[2].TurnsUsed != 4 {
		t.Fatal("duplicate insert overwrote the first result")
	}
}
