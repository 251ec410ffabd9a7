package model

// RankModel 是排序阶段的最小抽象：输入特征，输出一个可比较的分数。
// 具体实现可以是启发式公式的封装，也可以是在进程内训练的线性模型。
type RankModel interface {
	Name() string
	Predict(features map[string]float64) (float64, error)
}
