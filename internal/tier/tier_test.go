package tier

import (
	"testing"

	"club-points-ledger/internal/models"

	"github.com/shopspring/decimal"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		points       int64
		isChallenger bool
		want         models.Tier
	}{
		{0, false, models.TierBronze},
		{99, false, models.TierBronze},
		{100, false, models.TierSilver},
		{299, false, models.TierSilver},
		{300, false, models.TierGold},
		{699, false, models.TierGold},
		{700, false, models.TierPlatinum},
		{1499, false, models.TierPlatinum},
		{1500, false, models.TierDiamond},
		{2999, false, models.TierDiamond},
		{3000, false, models.TierMaster},
		{1000000, false, models.TierMaster},
		{0, true, models.TierChallenger},
		{3000, true, models.TierChallenger},
	}
	for _, tt := range tests {
		if got := Classify(tt.points, tt.isChallenger); got != tt.want {
			t.Errorf("Classify(%d, %v) = %q, want %q", tt.points, tt.isChallenger, got, tt.want)
		}
	}
}

func TestNext(t *testing.T) {
	next, needed, ok := Next(models.TierBronze, 40)
	if !ok || next != models.TierSilver || needed != 60 {
		t.Errorf("Next(bronze, 40) = %q, %d, %v; want silver, 60, true", next, needed, ok)
	}

	next, needed, ok = Next(models.TierDiamond, 2990)
	if !ok || next != models.TierMaster || needed != 10 {
		t.Errorf("Next(diamond, 2990) = %q, %d, %v; want master, 10, true", next, needed, ok)
	}

	if _, _, ok := Next(models.TierMaster, 5000); ok {
		t.Error("expected no tier above master")
	}
	if _, _, ok := Next(models.TierChallenger, 0); ok {
		t.Error("expected no tier above challenger")
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		tier   models.Tier
		points int64
		want   string
	}{
		{models.TierBronze, 0, "0"},
		{models.TierBronze, 50, "50"},
		{models.TierSilver, 200, "50"},
		{models.TierGold, 400, "25"},
		{models.TierSilver, 133, "16.5"},
		{models.TierMaster, 3500, "100"},
		{models.TierChallenger, 10, "100"},
	}
	for _, tt := range tests {
		want := decimal.RequireFromString(tt.want)
		if got := Progress(tt.tier, tt.points); !got.Equal(want) {
			t.Errorf("Progress(%q, %d) = %s, want %s", tt.tier, tt.points, got, want)
		}
	}
}

func TestMin(t *testing.T) {
	if m, ok := Min(models.TierPlatinum); !ok || m != 700 {
		t.Errorf("Min(platinum) = %d, %v; want 700, true", m, ok)
	}
	if _, ok := Min(models.TierChallenger); ok {
		t.Error("challenger has no point threshold")
	}
}
