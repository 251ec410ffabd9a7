package model

import (
	"encoding/json"
	"math"
	"os"
	"sync"

	"github.com/rushteam/nutrikit/core"
)

// ErrNotTrained 表示模型尚未训练。
// 调用方（rank.ModelNode）对它按启发式公式兜底，这是定义好的降级路径，不是异常。
var ErrNotTrained = core.NewDomainError(core.ModuleModel, core.ErrorCodeUnavailable, "model: not trained")

// Linear 是在进程内训练的线性回归模型。
//
// 预测：score = bias + sum(weight_i * feature_i)
// 训练：对固定顺序的特征向量与标签做批量梯度下降，
// 内部先按列缩放稳定收敛，收敛后把缩放折算回原始权重。
//
// 未训练是显式的变体状态（Trained() == false），不是空指针：
// 大多数部署从不训练模型，排序链路必须对此静默回落到启发式公式。
type Linear struct {
	mu      sync.RWMutex
	bias    float64
	weights map[string]float64
	trained bool
}

func NewLinear() *Linear {
	return &Linear{weights: make(map[string]float64)}
}

func (m *Linear) Name() string { return "linear" }

// Trained 返回模型是否已成功拟合。
func (m *Linear) Trained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}

// Predict 线性加权求和。未训练时返回 ErrNotTrained。
func (m *Linear) Predict(features map[string]float64) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.trained {
		return 0, ErrNotTrained
	}
	score := m.bias
	for k, v := range features {
		if w, ok := m.weights[k]; ok {
			score += w * v
		}
	}
	return score, nil
}

// Fit 用平行的特征向量与标签拟合模型，成功后模型进入已训练状态。
//
// 参数：
//   - names: 特征名列表，与每条向量的槽位一一对应（feature.Names()）
//   - vectors: 每条样本一个定形向量
//   - labels: 与 vectors 平行的标签（如观测到的转化/互动信号）
func (m *Linear) Fit(names []string, vectors [][]float64, labels []float64) error {
	if len(vectors) == 0 || len(vectors) != len(labels) {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: vectors/labels size mismatch")
	}
	dim := len(names)
	for _, v := range vectors {
		if len(v) != dim {
			return core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: vector dim mismatch")
		}
	}

	// 列缩放：按每列最大绝对值归一，避免热量等大数值主导梯度
	scale := make([]float64, dim)
	for j := 0; j < dim; j++ {
		maxAbs := 0.0
		for _, v := range vectors {
			if a := math.Abs(v[j]); a > maxAbs {
				maxAbs = a
			}
		}
		if maxAbs == 0 {
			maxAbs = 1
		}
		scale[j] = maxAbs
	}

	const (
		epochs = 500
		lr     = 0.05
	)
	n := float64(len(vectors))
	w := make([]float64, dim)
	bias := 0.0

	for epoch := 0; epoch < epochs; epoch++ {
		gradW := make([]float64, dim)
		gradB := 0.0
		for i, v := range vectors {
			pred := bias
			for j := 0; j < dim; j++ {
				pred += w[j] * v[j] / scale[j]
			}
			diff := pred - labels[i]
			gradB += diff
			for j := 0; j < dim; j++ {
				gradW[j] += diff * v[j] / scale[j]
			}
		}
		bias -= lr * gradB / n
		for j := 0; j < dim; j++ {
			w[j] -= lr * gradW[j] / n
		}
	}

	weights := make(map[string]float64, dim)
	for j, name := range names {
		weights[name] = w[j] / scale[j]
	}

	m.mu.Lock()
	m.bias = bias
	m.weights = weights
	m.trained = true
	m.mu.Unlock()
	return nil
}

// linearState 是模型的 JSON 持久化形态。
type linearState struct {
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

// Save 把已训练模型写入 JSON 文件。未训练时返回 ErrNotTrained。
func (m *Linear) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.trained {
		return ErrNotTrained
	}
	data, err := json.Marshal(linearState{Bias: m.bias, Weights: m.weights})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadLinear 从 JSON 文件加载已训练的线性模型。
func LoadLinear(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw linearState
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Linear{bias: raw.Bias, weights: raw.Weights, trained: true}, nil
}
