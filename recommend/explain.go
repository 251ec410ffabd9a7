package recommend

import (
	"strings"

	"github.com/rushteam/nutrikit/core"
	"github.com/rushteam/nutrikit/season"
)

// 解释文案的触发阈值。与打分公式无关，纯展示层判断。
const (
	explainPopularHigh  = 50  // 高流行度档
	explainPopularMid   = 10  // 中流行度档
	explainPopularNovel = 5   // 与新颖度加权同一阈值
	explainHighProtein  = 15.0
	explainLowCalorie   = 100.0
	explainEnergyDense  = 250.0
	explainCarbRich     = 30.0
)

// Explain 为单条推荐生成可读解释：按固定顺序拼接命中的理由片段
// （流行度档位、季节性、目标相关的营养亮点、食物组、最近吃过），
// 一个都没命中时回落到通用文案。
func Explain(it *core.Item, rctx *core.RecommendContext) string {
	if it == nil || it.Grocery == nil {
		return ""
	}
	g := it.Grocery
	reasons := make([]string, 0, 4)

	switch {
	case it.Popularity >= explainPopularHigh:
		reasons = append(reasons, "a favorite among people with your goal")
	case it.Popularity >= explainPopularMid:
		reasons = append(reasons, "popular with people sharing your goal")
	case it.Popularity < explainPopularNovel:
		reasons = append(reasons, "something new to try")
	}

	if s := season.ScoreAt(g.Category, rctx.Now); s >= 1.2 {
		reasons = append(reasons, "at its seasonal peak")
	} else if s >= 1.1 {
		reasons = append(reasons, "in season right now")
	}

	reasons = append(reasons, goalReasons(g, rctx.EffectiveGoal())...)

	switch g.Category {
	case core.CategoryVegetable:
		reasons = append(reasons, "counts toward your daily vegetables")
	case core.CategoryFruit:
		reasons = append(reasons, "counts toward your daily fruit")
	}

	if rctx.RecentItemIDs[it.ID()] {
		reasons = append(reasons, "you've enjoyed this recently")
	}

	if len(reasons) == 0 {
		return "a reasonable match for your goal"
	}
	return strings.Join(reasons, "; ")
}

// goalReasons 返回与生效目标相关的营养亮点。
func goalReasons(g *core.Grocery, goal core.GoalType) []string {
	var out []string
	switch goal {
	case core.GoalLoseWeight:
		if g.ProteinPer100 >= explainHighProtein {
			out = append(out, "high in protein")
		}
		if g.CaloriesPer100 <= explainLowCalorie {
			out = append(out, "light in calories")
		}
	case core.GoalGainWeight:
		if g.CaloriesPer100 >= explainEnergyDense {
			out = append(out, "energy dense")
		}
		if g.CarbsPer100 >= explainCarbRich {
			out = append(out, "a solid source of carbs")
		}
		if g.ProteinPer100 >= explainHighProtein {
			out = append(out, "high in protein")
		}
	default:
		if g.ProteinPer100 >= explainHighProtein && g.CaloriesPer100 <= 2*explainLowCalorie {
			out = append(out, "balanced protein and calories")
		}
	}
	return out
}
