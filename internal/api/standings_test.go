package api

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"club-points-ledger/internal/apperr"
	"club-points-ledger/internal/database"
	"club-points-ledger/internal/ledger"
	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"
)

func setupApiDb(t *testing.T) *database.Service {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Driver:          database.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "api.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
		BusyTimeout:     5 * time.Second,
		TxMaxAttempts:   5,
		TxRetryBackoff:  time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestGetStanding(t *testing.T) {
	db := setupApiDb(t)
	svc := NewLedgerService(db)
	ctx := context.Background()

	if _, err := db.CreateUser(ctx, models.User{Id: "u1", Nickname: "neo", Points: 200}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	standing, err := svc.GetStanding(ctx, "u1")
	if err != nil {
		t.Fatalf("GetStanding failed: %v", err)
	}
	if standing.Tier != models.TierSilver || standing.NextTier != models.TierGold || standing.PointsToNext != 100 {
		t.Errorf("Unexpected standing: %+v", standing)
	}
	if standing.ProgressPercent.String() != "50" {
		t.Errorf("Expected 50%% progress, got %s", standing.ProgressPercent)
	}
	if standing.Name != "neo" {
		t.Errorf("Expected name neo, got %q", standing.Name)
	}

	if _, err := svc.GetStanding(ctx, "ghost"); apperr.CodeOf(err) != apperr.NotFound {
		t.Errorf("Expected not-found, got %v", err)
	}
	if _, err := svc.GetStanding(ctx, ""); apperr.CodeOf(err) != apperr.InvalidArgument {
		t.Errorf("Expected invalid-argument, got %v", err)
	}
}

func TestGetRanking(t *testing.T) {
	db := setupApiDb(t)
	svc := NewLedgerService(db)
	ctx := context.Background()

	users := []models.User{
		{Id: "a", Points: 10},
		{Id: "b", Points: 500},
		{Id: "c", Points: 80},
		{Id: "tester", Points: 9000, IsTestAccount: true},
	}
	for _, u := range users {
		if _, err := db.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", u.Id, err)
		}
	}

	ranking, err := svc.GetRanking(ctx, 0)
	if err != nil {
		t.Fatalf("GetRanking failed: %v", err)
	}
	if len(ranking) != 3 {
		t.Fatalf("Expected 3 ranked members, got %d", len(ranking))
	}
	want := []string{"b", "c", "a"}
	for i, entry := range ranking {
		if entry.UserId != want[i] || entry.Rank != i+1 {
			t.Errorf("Rank %d: got %s (rank %d), want %s", i+1, entry.UserId, entry.Rank, want[i])
		}
	}
	if ranking[0].Name != models.DefaultMemberLabel {
		t.Errorf("Expected fallback label, got %q", ranking[0].Name)
	}

	top, err := svc.GetRanking(ctx, 1)
	if err != nil || len(top) != 1 || top[0].UserId != "b" {
		t.Errorf("Expected top member b, got %v (%v)", top, err)
	}
}

func TestGetPointHistory(t *testing.T) {
	db := setupApiDb(t)
	svc := NewLedgerService(db)
	ctx := context.Background()
	engine := ledger.NewEngine(false)

	if _, err := db.CreateUser(ctx, models.User{Id: "u1", Points: 2}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	for _, step := range []struct {
		key   string
		delta int64
	}{
		{ledger.PostCreateKey("p1"), 10},
		{ledger.AdminAdjustKey("u1", "r1"), -50},
	} {
		err := db.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
			_, err := engine.ApplyDelta(ctx, tx, "u1", step.delta, step.key)
			return err
		})
		if err != nil {
			t.Fatalf("ApplyDelta failed: %v", err)
		}
	}

	history, err := svc.GetPointHistory(ctx, "u1", 0, -1)
	if err != nil {
		t.Fatalf("GetPointHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(history))
	}

	var clamp models.PointEventRecord
	for _, record := range history {
		if record.Key == ledger.AdminAdjustKey("u1", "r1") {
			clamp = record
		}
	}
	if clamp.Delta != -50 || clamp.Applied != -12 || clamp.Points != 0 {
		t.Errorf("Unexpected clamped record: %+v", clamp)
	}
}
