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

package models

import "fmt"

// Tier is a member rank derived from points and the challenger flag
type Tier string

const (
	TierBronze     Tier = "bronze"
	TierSilver     Tier = "silver"
	TierGold       Tier = "gold"
	TierPlatinum   Tier = "platinum"
	TierDiamond    Tier = "diamond"
	TierMaster     Tier = "master"
	TierChallenger Tier = "challenger"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond, TierMaster, TierChallenger:
		return true
	default:
		return false
	}
}

// Category is a post category; it decides the creation award
type Category string

const (
	CategoryIntroduction Category = "introduction"
	CategoryStudy        Category = "study"
	CategoryProject      Category = "project"
	CategoryResources    Category = "resources"
)

// Point values awarded per action
const (
	PointsIntroduction int64 = 50
	PointsPost         int64 = 10
	PointsComment      int64 = 3
	PointsLikeReceived int64 = 2
)

// ParseCategory validates a raw category string.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	switch c {
	case CategoryIntroduction, CategoryStudy, CategoryProject, CategoryResources:
		return c, nil
	default:
		return "", fmt.Errorf("unknown category %q", raw)
	}
}

// Award returns the points granted to the author when a post in c is created.
func (c Category) Award() int64 {
	switch c {
	case CategoryIntroduction:
		return PointsIntroduction
	case CategoryStudy, CategoryProject, CategoryResources:
		return PointsPost
	default:
		return 0
	}
}
