package feature

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rushteam/nutrikit/core"
)

func testContext(goal core.GoalType, user *core.UserProfile, pop map[int64]int64) *core.RecommendContext {
	return &core.RecommendContext{
		UserID:     7,
		User:       user,
		Goal:       goal,
		Now:        time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC),
		Popularity: pop,
	}
}

func TestExtractorFixedShape(t *testing.T) {
	e := &Extractor{}
	g := &core.Grocery{ID: 1, Name: "tomato", Category: core.CategoryVegetable,
		ProteinPer100: 1, CarbsPer100: 4, FatPer100: 0.2, CaloriesPer100: 18}
	v := e.Extract(context.Background(), g, testContext(core.GoalMaintain, nil, nil))

	if got := len(v.Slice()); got != Dim {
		t.Fatalf("vector dim: got %d, want %d", got, Dim)
	}
	if got := len(Names()); got != Dim {
		t.Fatalf("names dim: got %d, want %d", got, Dim)
	}
	// Slice 与 Names 顺序一致
	m := v.Map()
	for i, name := range Names() {
		if v.Slice()[i] != m[name] {
			t.Errorf("slot %d (%s): slice %v != map %v", i, name, v.Slice()[i], m[name])
		}
	}
	if v.CategoryScore != 1.0 {
		t.Errorf("category_score placeholder: got %v, want 1.0", v.CategoryScore)
	}
}

func TestExtractorValues(t *testing.T) {
	birth := time.Date(1990, time.March, 2, 0, 0, 0, 0, time.UTC)
	user := &core.UserProfile{
		UserID:        7,
		Gender:        core.GenderFemale,
		Birthdate:     &birth,
		ActivityLevel: core.ActivityHigh,
	}
	g := &core.Grocery{ID: 9, Name: "apple", Category: core.CategoryFruit,
		ProteinPer100: 0.3, CarbsPer100: 14, FatPer100: 0.2, CaloriesPer100: 52}

	e := &Extractor{}
	v := e.Extract(context.Background(), g, testContext(core.GoalLoseWeight, user, map[int64]int64{9: 99}))

	if v.ProteinPer100 != 0.3 || v.CarbsPer100 != 14 || v.FatPer100 != 0.2 || v.CaloriesPer100 != 52 {
		t.Errorf("macro slots wrong: %+v", v)
	}
	if want := math.Log10(100); math.Abs(v.PopularityScore-want) > 1e-9 {
		t.Errorf("popularity_score: got %v, want %v", v.PopularityScore, want)
	}
	// 7 月水果为时令高峰
	if v.SeasonalityScore != 1.3 {
		t.Errorf("seasonality_score: got %v, want 1.3", v.SeasonalityScore)
	}
	if v.GoalType != core.GoalLoseWeight.Feature() {
		t.Errorf("goal_type: got %v", v.GoalType)
	}
	if v.UserAge != 35 {
		t.Errorf("user_age: got %v, want 35", v.UserAge)
	}
	if v.UserGender != 2 || v.UserActivityLevel != 3 {
		t.Errorf("gender/activity encoding: got %v/%v", v.UserGender, v.UserActivityLevel)
	}
}

func TestExtractorDefaultsWithoutUser(t *testing.T) {
	e := &Extractor{}
	g := &core.Grocery{ID: 2, Name: "rice", Category: core.CategoryGrain, CaloriesPer100: 130}
	v := e.Extract(context.Background(), g, testContext(core.GoalUnknown, nil, nil))

	if v.UserAge != 30 {
		t.Errorf("default age: got %v, want 30", v.UserAge)
	}
	if v.UserGender != 0 || v.UserActivityLevel != 0 {
		t.Errorf("unknown encodings must be 0: %v/%v", v.UserGender, v.UserActivityLevel)
	}
	// 未知目标按 Maintain 编码
	if v.GoalType != core.GoalMaintain.Feature() {
		t.Errorf("goal fallback: got %v", v.GoalType)
	}
}

type staticSource struct{ feats map[string]float64 }

func (s *staticSource) Name() string { return "static" }
func (s *staticSource) UserFeatures(ctx context.Context, userID int64) (map[string]float64, error) {
	return s.feats, nil
}

func TestExtractorOnlineOverride(t *testing.T) {
	e := &Extractor{Source: &staticSource{feats: map[string]float64{
		FeatUserAge: 42,
	}}}
	g := &core.Grocery{ID: 3, Name: "salmon", Category: core.CategoryFish}
	user := &core.UserProfile{UserID: 7, Gender: core.GenderMale}
	v := e.Extract(context.Background(), g, testContext(core.GoalMaintain, user, nil))

	if v.UserAge != 42 {
		t.Errorf("online age override: got %v, want 42", v.UserAge)
	}
	// 在线源未提供的槽位保留画像值
	if v.UserGender != 1 {
		t.Errorf("gender fallback to profile: got %v, want 1", v.UserGender)
	}
}

func TestVectorMapRoundTrip(t *testing.T) {
	v := Vector{ProteinPer100: 1, CarbsPer100: 2, FatPer100: 3, CaloriesPer100: 4,
		PopularityScore: 5, SeasonalityScore: 6, CategoryScore: 7, GoalType: 1,
		UserAge: 30, UserGender: 2, UserActivityLevel: 3}
	if got := FromMap(v.Map()); got != v {
		t.Errorf("round trip mismatch: %+v != %+v", got, v)
	}
}
