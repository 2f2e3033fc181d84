package common

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"club-points-ledger/internal/database"
	"club-points-ledger/internal/models"

	"go.uber.org/zap"
)

const seedYAML = `
members:
  - id: admin
    nickname: Operator
    isAdmin: true
  - id: u1
    displayName: Ada
    points: 320
  - id: tester
    points: 5000
    isTestAccount: true
`

func TestParseMemberSeed(t *testing.T) {
	users, err := ParseMemberSeed([]byte(seedYAML))
	if err != nil {
		t.Fatalf("ParseMemberSeed failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("Expected 3 members, got %d", len(users))
	}
	if !users[0].IsAdmin || users[1].Points != 320 || !users[2].IsTestAccount {
		t.Errorf("Unexpected members: %+v", users)
	}

	if _, err := ParseMemberSeed([]byte("members:\n  - points: 3\n")); err == nil {
		t.Error("Expected error for missing id")
	}
	if _, err := ParseMemberSeed([]byte("members:\n  - id: a\n  - id: a\n")); err == nil {
		t.Error("Expected error for duplicate id")
	}
	if _, err := ParseMemberSeed([]byte("members:\n  - id: a\n    points: -1\n")); err == nil {
		t.Error("Expected error for negative points")
	}
}

func TestSeedMembers_Rerun(t *testing.T) {
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Driver:          database.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "seed.db"),
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
		BusyTimeout:     5 * time.Second,
		TxMaxAttempts:   3,
		TxRetryBackoff:  time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	users, _ := ParseMemberSeed([]byte(seedYAML))
	logger := zap.NewNop()

	first, err := SeedMembers(context.Background(), db, users, logger)
	if err != nil || first.Created != 3 {
		t.Fatalf("Expected 3 created, got %+v (%v)", first, err)
	}
	second, err := SeedMembers(context.Background(), db, users, logger)
	if err != nil || second.Created != 0 || second.Skipped != 3 {
		t.Errorf("Expected rerun to skip all, got %+v (%v)", second, err)
	}

	u1, _ := db.GetUserById(context.Background(), "u1")
	if u1.Tier != models.TierGold {
		t.Errorf("Expected seeded tier gold, got %s", u1.Tier)
	}
}

func TestFormatRankRow(t *testing.T) {
	row := FormatRankRow(models.RankEntry{Rank: 1, Name: "Ada", Points: 320, Tier: models.TierGold}, false)
	if !strings.Contains(row, "GOLD") || !strings.Contains(row, "320 pts") {
		t.Errorf("Unexpected row: %q", row)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate = %q", got)
	}
}
