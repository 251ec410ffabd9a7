package feature

// 特征向量的固定槽位定义。
//
// 约束：无论使用启发式打分还是训练后的线性模型，向量的维度与顺序
// 都保持不变，两种策略因此可以互换。category_score 目前是常量占位
// 槽位，为未来的类别级信号预留，删除它会破坏已训练模型的兼容性。

// 特征名常量，顺序与 Names 一致。
const (
	FeatProteinPer100     = "protein_per_100"
	FeatCarbsPer100       = "carbs_per_100"
	FeatFatPer100         = "fat_per_100"
	FeatCaloriesPer100    = "calories_per_100"
	FeatPopularityScore   = "popularity_score"
	FeatSeasonalityScore  = "seasonality_score"
	FeatCategoryScore     = "category_score"
	FeatGoalType          = "goal_type"
	FeatUserAge           = "user_age"
	FeatUserGender        = "user_gender"
	FeatUserActivityLevel = "user_activity_level"
)

// Names 返回固定顺序的特征名列表。训练与预测都按此顺序展开向量。
func Names() []string {
	return []string{
		FeatProteinPer100,
		FeatCarbsPer100,
		FeatFatPer100,
		FeatCaloriesPer100,
		FeatPopularityScore,
		FeatSeasonalityScore,
		FeatCategoryScore,
		FeatGoalType,
		FeatUserAge,
		FeatUserGender,
		FeatUserActivityLevel,
	}
}

// Dim 是特征向量的固定维度。
const Dim = 11

// Vector 是一条 (食材, 上下文) 的定形特征向量。
// 每次排序针对每个候选临时构建，不持久化。
type Vector struct {
	ProteinPer100     float64
	CarbsPer100       float64
	FatPer100         float64
	CaloriesPer100    float64
	PopularityScore   float64 // log10(1+食用次数)
	SeasonalityScore  float64
	CategoryScore     float64 // 占位槽位，基线恒为 1.0
	GoalType          float64
	UserAge           float64
	UserGender        float64
	UserActivityLevel float64
}

// Slice 按 Names 的固定顺序展开为 []float64，供模型训练/预测使用。
func (v Vector) Slice() []float64 {
	return []float64{
		v.ProteinPer100,
		v.CarbsPer100,
		v.FatPer100,
		v.CaloriesPer100,
		v.PopularityScore,
		v.SeasonalityScore,
		v.CategoryScore,
		v.GoalType,
		v.UserAge,
		v.UserGender,
		v.UserActivityLevel,
	}
}

// Map 转为特征字典（key 为特征名），与 Item.Features 互通。
func (v Vector) Map() map[string]float64 {
	return map[string]float64{
		FeatProteinPer100:     v.ProteinPer100,
		FeatCarbsPer100:       v.CarbsPer100,
		FeatFatPer100:         v.FatPer100,
		FeatCaloriesPer100:    v.CaloriesPer100,
		FeatPopularityScore:   v.PopularityScore,
		FeatSeasonalityScore:  v.SeasonalityScore,
		FeatCategoryScore:     v.CategoryScore,
		FeatGoalType:          v.GoalType,
		FeatUserAge:           v.UserAge,
		FeatUserGender:        v.UserGender,
		FeatUserActivityLevel: v.UserActivityLevel,
	}
}

// FromMap 从特征字典恢复定形向量，缺失的 key 填 0。
func FromMap(m map[string]float64) Vector {
	return Vector{
		ProteinPer100:     m[FeatProteinPer100],
		CarbsPer100:       m[FeatCarbsPer100],
		FatPer100:         m[FeatFatPer100],
		CaloriesPer100:    m[FeatCaloriesPer100],
		PopularityScore:   m[FeatPopularityScore],
		SeasonalityScore:  m[FeatSeasonalityScore],
		CategoryScore:     m[FeatCategoryScore],
		GoalType:          m[FeatGoalType],
		UserAge:           m[FeatUserAge],
		UserGender:        m[FeatUserGender],
		UserActivityLevel: m[FeatUserActivityLevel],
	}
}
