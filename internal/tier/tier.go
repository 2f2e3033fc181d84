/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package tier maps point balances to member tiers.
package tier

import (
	"club-points-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// ladder lists the point tiers in ascending order with their minimum balance.
// Challenger is not on the ladder; it is granted by role.
var ladder = []struct {
	tier models.Tier
	min  int64
}{
	{models.TierBronze, 0},
	{models.TierSilver, 100},
	{models.TierGold, 300},
	{models.TierPlatinum, 700},
	{models.TierDiamond, 1500},
	{models.TierMaster, 3000},
}

// Classify returns the tier for a balance. The challenger flag overrides points.
func Classify(points int64, isChallenger bool) models.Tier {
	if isChallenger {
		return models.TierChallenger
	}
	result := models.TierBronze
	for _, step := range ladder {
		if points >= step.min {
			result = step.tier
		}
	}
	return result
}

// Min returns the minimum balance of a ladder tier. Challenger reports 0, false.
func Min(t models.Tier) (int64, bool) {
	for _, step := range ladder {
		if step.tier == t {
			return step.min, true
		}
	}
	return 0, false
}

// Next returns the tier above t and the points still needed to reach it.
// ok is false for master and challenger.
func Next(t models.Tier, points int64) (next models.Tier, needed int64, ok bool) {
	for i, step := range ladder {
		if step.tier != t || i == len(ladder)-1 {
			continue
		}
		up := ladder[i+1]
		needed = up.min - points
		if needed < 0 {
			needed = 0
		}
		return up.tier, needed, true
	}
	return "", 0, false
}

var hundred = decimal.NewFromInt(100)

// Progress returns the percentage of the way from t's minimum to the next tier,
// rounded to one decimal place. Terminal tiers report 100.
func Progress(t models.Tier, points int64) decimal.Decimal {
	next, _, ok := Next(t, points)
	if !ok {
		return hundred
	}
	curMin, _ := Min(t)
	nextMin, _ := Min(next)

	span := decimal.NewFromInt(nextMin - curMin)
	done := decimal.NewFromInt(points - curMin)
	pct := done.Div(span).Mul(hundred)
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct.Round(1)
}
