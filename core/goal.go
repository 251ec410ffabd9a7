package core

// GoalType 是用户的营养目标类型，驱动整个打分策略的切换。
type GoalType int

const (
	GoalUnknown GoalType = iota
	GoalLoseWeight
	GoalMaintain
	GoalGainWeight
)

// AllGoalTypes 返回全部有效目标类型（不含 Unknown），供 cohort 全量重建遍历。
func AllGoalTypes() []GoalType {
	return []GoalType{GoalLoseWeight, GoalMaintain, GoalGainWeight}
}

func (g GoalType) String() string {
	switch g {
	case GoalLoseWeight:
		return "lose_weight"
	case GoalMaintain:
		return "maintain"
	case GoalGainWeight:
		return "gain_weight"
	default:
		return "unknown"
	}
}

// Feature 返回目标类型的数值编码，用于特征向量的 goal_type 槽位。
func (g GoalType) Feature() float64 {
	return float64(g)
}

// ParseGoalType 从字符串解析目标类型，无法识别时返回 GoalUnknown。
func ParseGoalType(s string) GoalType {
	switch s {
	case "lose_weight":
		return GoalLoseWeight
	case "maintain":
		return GoalMaintain
	case "gain_weight":
		return GoalGainWeight
	default:
		return GoalUnknown
	}
}
