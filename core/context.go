package core

import (
	"time"

	"github.com/rushteam/nutrikit/pkg/utils"
)

// RecommendContext 承载用户/目标/实时信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID int64

	// User 是强类型用户画像；未知用户时为 nil（链路按空结果降级，不报错）。
	User *UserProfile

	// Goal 是本次请求生效的营养目标：
	// 进行中的目标实例优先，否则取画像级目标。
	Goal GoalType

	// Now 是本次请求的基准时间，由引擎注入（可 mock），
	// 季节性、年龄、新近度计算都以它为准。
	Now time.Time

	// Popularity 是候选食材在当前 cohort 内的历史食用次数（每次请求重算，不缓存）。
	Popularity map[int64]int64

	// RecentItemIDs 是请求者近 30 天吃过的食材 ID 集合，仅用于推荐解释，不参与打分。
	RecentItemIDs map[int64]bool

	// Labels 是用户级标签，可驱动整个 Pipeline 行为。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（如 page、page_size、rule 开关等）。
	Params map[string]any
}

// EffectiveGoal 返回生效目标；未解析出目标时回落到 Maintain（默认公式）。
func (rctx *RecommendContext) EffectiveGoal() GoalType {
	if rctx.Goal == GoalUnknown {
		return GoalMaintain
	}
	return rctx.Goal
}

// PopularityOf 返回某食材在当前 cohort 内的食用次数，缺省为 0。
func (rctx *RecommendContext) PopularityOf(itemID int64) int64 {
	if rctx.Popularity == nil {
		return 0
	}
	return rctx.Popularity[itemID]
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
