package feature

import (
	"context"
	"math"

	"github.com/rushteam/nutrikit/core"
	"github.com/rushteam/nutrikit/season"
)

// UserFeatureSource 是用户侧在线特征源的策略接口。
//
// 默认实现直接读 UserProfile 快照；接入 Feature Store（如 Feast）时，
// 可用在线特征覆盖画像值，画像值作为兜底。
type UserFeatureSource interface {
	// UserFeatures 返回用户的在线特征字典（key 为 Feat* 常量中的用户侧特征名）
	UserFeatures(ctx context.Context, userID int64) (map[string]float64, error)

	// Name 返回特征源名称（用于日志/监控）
	Name() string
}

// Extractor 把 (食材, 上下文) 对组装为定形特征向量。
//
// 抽取策略：
//   - 宏量营养素与热量直接取自食材快照（非负性由 catalog 层保证，这里不再校验）
//   - popularity_score = log10(1 + cohort 内食用次数)
//   - seasonality_score 按类别与请求时刻的自然月查表
//   - category_score 恒为 1.0（占位槽位）
//   - 用户侧特征默认取自画像；Source 非空时用在线特征覆盖可用槽位，
//     在线源失败或缺槽时静默回落到画像值
type Extractor struct {
	// Source 可选的用户在线特征源；为 nil 时只用画像快照。
	Source UserFeatureSource
}

// Extract 构建特征向量。不会修改任何入参。
func (e *Extractor) Extract(ctx context.Context, g *core.Grocery, rctx *core.RecommendContext) Vector {
	v := Vector{
		ProteinPer100:    g.ProteinPer100,
		CarbsPer100:      g.CarbsPer100,
		FatPer100:        g.FatPer100,
		CaloriesPer100:   g.CaloriesPer100,
		PopularityScore:  math.Log10(1 + float64(rctx.PopularityOf(g.ID))),
		SeasonalityScore: season.ScoreAt(g.Category, rctx.Now),
		CategoryScore:    1.0,
		GoalType:         rctx.EffectiveGoal().Feature(),
	}

	if u := rctx.User; u != nil {
		v.UserAge = float64(u.AgeAt(rctx.Now))
		v.UserGender = u.Gender.Feature()
		v.UserActivityLevel = u.ActivityLevel.Feature()
	} else {
		v.UserAge = 30
	}

	if e.Source != nil {
		if online, err := e.Source.UserFeatures(ctx, rctx.UserID); err == nil {
			if age, ok := online[FeatUserAge]; ok {
				v.UserAge = age
			}
			if gender, ok := online[FeatUserGender]; ok {
				v.UserGender = gender
			}
			if activity, ok := online[FeatUserActivityLevel]; ok {
				v.UserActivityLevel = activity
			}
		}
	}

	return v
}
