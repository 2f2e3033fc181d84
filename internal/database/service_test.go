package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"
)

func testConfig(t *testing.T) models.DatabaseConfig {
	t.Helper()
	return models.DatabaseConfig{
		Driver:          DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "club.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
		BusyTimeout:     5 * time.Second,
		TxMaxAttempts:   5,
		TxRetryBackoff:  time.Millisecond,
	}
}

func setupTestDb(t *testing.T) (*Service, func()) {
	t.Helper()
	service, err := NewService(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return service, service.Close
}

func TestNewService_Validation(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxOpenConns = 0
	if _, err := NewService(context.Background(), cfg); err == nil {
		t.Error("Expected error for zero max open connections")
	}

	cfg = testConfig(t)
	cfg.Driver = "mysql"
	if _, err := NewService(context.Background(), cfg); err == nil {
		t.Error("Expected error for unsupported driver")
	}

	cfg = testConfig(t)
	cfg.Path = ""
	if _, err := NewService(context.Background(), cfg); err == nil {
		t.Error("Expected error for empty sqlite path")
	}
}

func TestMigrationVersion(t *testing.T) {
	cfg := testConfig(t)
	if err := MigrateUp(cfg); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	// Second run is a no-op
	if err := MigrateUp(cfg); err != nil {
		t.Fatalf("Second MigrateUp failed: %v", err)
	}

	version, dirty, err := MigrationVersion(cfg)
	if err != nil {
		t.Fatalf("MigrationVersion failed: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("Expected clean version 1, got %d (dirty=%v)", version, dirty)
	}
}

func TestCreateUser(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	created, err := service.CreateUser(ctx, models.User{Id: "u1", Nickname: "neo", Points: 320})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.Tier != models.TierGold {
		t.Errorf("Expected derived tier gold, got %s", created.Tier)
	}

	got, err := service.GetUserById(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if got.Points != 320 || got.Nickname != "neo" || got.Version != 1 {
		t.Errorf("Unexpected user: %+v", got)
	}

	_, err = service.CreateUser(ctx, models.User{Id: "u1"})
	if !errors.Is(err, store.ErrDuplicateUser) {
		t.Errorf("Expected ErrDuplicateUser, got %v", err)
	}

	_, err = service.GetUserById(ctx, "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateUser_ClampsNegativeSeed(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	created, err := service.CreateUser(context.Background(), models.User{Id: "u1", Points: -5, IsChallenger: true})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.Points != 0 {
		t.Errorf("Expected points clamped to 0, got %d", created.Points)
	}
	if created.Tier != models.TierChallenger {
		t.Errorf("Expected challenger tier, got %s", created.Tier)
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := service.CreateUser(ctx, models.User{Id: "u1"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	boom := errors.New("boom")
	err := service.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		user, err := tx.GetUser(ctx, "u1")
		if err != nil {
			return err
		}
		user.Points = 500
		if err := tx.SaveUser(ctx, user); err != nil {
			return err
		}
		if err := tx.InsertPointEvent(ctx, models.PointEvent{Key: "k1", TargetUserId: "u1", Delta: 500, PointsAfter: 500, CreatedAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	user, _ := service.GetUserById(ctx, "u1")
	if user.Points != 0 {
		t.Errorf("Expected rollback to keep 0 points, got %d", user.Points)
	}
	history, err := service.GetPointHistory(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("GetPointHistory failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("Expected no events after rollback, got %d", len(history))
	}
}

func TestRunInTx_RetryBudget(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	calls := 0
	err := service.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		calls++
		return store.ErrConcurrentModification
	})
	if !errors.Is(err, store.ErrTxContention) {
		t.Fatalf("Expected ErrTxContention, got %v", err)
	}
	if calls != 5 {
		t.Errorf("Expected 5 attempts, got %d", calls)
	}

	calls = 0
	err = service.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		calls++
		if calls < 3 {
			return store.ErrConcurrentModification
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Expected success on third attempt, got %v after %d calls", err, calls)
	}
}

func TestSaveUser_StaleVersion(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := service.CreateUser(ctx, models.User{Id: "u1"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	attempts := 0
	err := service.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		attempts++
		stale := &models.User{Id: "u1", Points: 10, Tier: models.TierBronze, Version: 99}
		return tx.SaveUser(ctx, stale)
	})
	if !errors.Is(err, store.ErrTxContention) {
		t.Fatalf("Expected ErrTxContention, got %v", err)
	}
	if attempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", attempts)
	}
}

func TestGetUser_UnknownTierDerivedFromPoints(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := service.CreateUser(ctx, models.User{Id: "u1", Points: 350}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := service.db.ExecContext(ctx, `UPDATE users SET tier = 'legend' WHERE id = 'u1'`); err != nil {
		t.Fatalf("Failed to corrupt tier: %v", err)
	}

	user, err := service.GetUserById(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if user.Tier != models.TierGold {
		t.Errorf("Expected gold derived from 350 points, got %s", user.Tier)
	}
}

func TestSaveUser_AdvancesVersion(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := service.CreateUser(ctx, models.User{Id: "u1"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	err := service.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		user, err := tx.GetUser(ctx, "u1")
		if err != nil {
			return err
		}
		user.IsAdmin = true
		if err := tx.SaveUser(ctx, user); err != nil {
			return err
		}
		if user.Version != 2 {
			t.Errorf("Expected in-memory version 2, got %d", user.Version)
		}
		// A second write with the advanced version must also succeed
		user.IsTestAccount = true
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		t.Fatalf("RunInTx failed: %v", err)
	}

	user, _ := service.GetUserById(ctx, "u1")
	if !user.IsAdmin || !user.IsTestAccount || user.Version != 3 {
		t.Errorf("Unexpected user after saves: %+v", user)
	}
}

func TestGetRanking(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	seed := []models.User{
		{Id: "a", Points: 50},
		{Id: "b", Points: 900},
		{Id: "c", Points: 5000, IsTestAccount: true},
		{Id: "d", Points: 300},
	}
	for _, u := range seed {
		if _, err := service.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", u.Id, err)
		}
	}

	ranking, err := service.GetRanking(ctx, 10)
	if err != nil {
		t.Fatalf("GetRanking failed: %v", err)
	}
	want := []string{"b", "d", "a"}
	if len(ranking) != len(want) {
		t.Fatalf("Expected %d ranked users, got %d", len(want), len(ranking))
	}
	for i, id := range want {
		if ranking[i].Id != id {
			t.Errorf("Rank %d: expected %s, got %s", i+1, id, ranking[i].Id)
		}
	}

	top, err := service.GetRanking(ctx, 1)
	if err != nil {
		t.Fatalf("GetRanking(1) failed: %v", err)
	}
	if len(top) != 1 || top[0].Id != "b" {
		t.Errorf("Expected only b, got %+v", top)
	}
}
