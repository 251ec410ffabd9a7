package recommend

import (
	"strings"
	"testing"
	"time"

	"github.com/rushteam/nutrikit/core"
)

func explainItem(g *core.Grocery, popularity int64) *core.Item {
	it := core.NewItem(g)
	it.Popularity = popularity
	return it
}

func explainContext(goal core.GoalType, now time.Time) *core.RecommendContext {
	return &core.RecommendContext{UserID: 1, Goal: goal, Now: now}
}

func TestExplainPopularityTiers(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	g := approvedGrocery(1, "lentils", core.CategoryOther, 9, 20, 0.4, 116)

	cases := []struct {
		popularity int64
		want       string
		absent     string
	}{
		{100, "a favorite among people with your goal", "something new"},
		{20, "popular with people sharing your goal", "favorite"},
		{2, "something new to try", "popular"},
	}
	for _, c := range cases {
		got := Explain(explainItem(g, c.popularity), explainContext(core.GoalMaintain, now))
		if !strings.Contains(got, c.want) {
			t.Errorf("popularity %d: %q missing %q", c.popularity, got, c.want)
		}
		if strings.Contains(got, c.absent) {
			t.Errorf("popularity %d: %q must not contain %q", c.popularity, got, c.absent)
		}
	}
}

func TestExplainSeasonalAndFoodGroup(t *testing.T) {
	july := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	january := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	strawberry := approvedGrocery(1, "strawberry", core.CategoryFruit, 0.7, 8, 0.3, 33)

	summer := Explain(explainItem(strawberry, 10), explainContext(core.GoalMaintain, july))
	if !strings.Contains(summer, "seasonal peak") {
		t.Errorf("summer fruit: %q missing seasonal reason", summer)
	}
	if !strings.Contains(summer, "daily fruit") {
		t.Errorf("summer fruit: %q missing food-group note", summer)
	}

	winter := Explain(explainItem(strawberry, 10), explainContext(core.GoalMaintain, january))
	if strings.Contains(winter, "season") {
		t.Errorf("off-season fruit must not claim seasonality: %q", winter)
	}
}

func TestExplainGoalSpecific(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	chicken := approvedGrocery(1, "chicken breast", core.CategoryMeat, 31, 0, 3.6, 165)
	rice := approvedGrocery(2, "rice", core.CategoryGrain, 2.7, 77, 0.3, 360)

	lose := Explain(explainItem(chicken, 10), explainContext(core.GoalLoseWeight, now))
	if !strings.Contains(lose, "high in protein") {
		t.Errorf("lose-weight chicken: %q", lose)
	}

	gain := Explain(explainItem(rice, 10), explainContext(core.GoalGainWeight, now))
	if !strings.Contains(gain, "carbs") {
		t.Errorf("gain-weight rice: %q", gain)
	}
	if strings.Contains(gain, "light in calories") {
		t.Errorf("lose-weight reason leaked into gain goal: %q", gain)
	}
}

func TestExplainRecentlyEnjoyed(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	g := approvedGrocery(7, "oats", core.CategoryGrain, 13, 68, 6.5, 379)
	rctx := explainContext(core.GoalMaintain, now)
	rctx.RecentItemIDs = map[int64]bool{7: true}

	got := Explain(explainItem(g, 10), rctx)
	if !strings.Contains(got, "enjoyed this recently") {
		t.Errorf("recent item: %q", got)
	}
}

func TestExplainFallback(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	// 中等流行度、非应季、无目标亮点、非蔬果:没有任何具体理由命中
	g := approvedGrocery(1, "white bread", core.CategoryGrain, 9, 49, 3.2, 265)
	got := Explain(explainItem(g, 20), explainContext(core.GoalMaintain, now))
	want := "popular with people sharing your goal"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// 真正零理由的组合回落到通用文案（流行度落在两档之间）
	bland := approvedGrocery(2, "tofu", core.CategoryOther, 8, 2, 4, 76)
	got = Explain(explainItem(bland, 7), explainContext(core.GoalGainWeight, now))
	if got != "a reasonable match for your goal" {
		t.Errorf("fallback: %q", got)
	}
}
