// Package nutrikit 是一个食材推荐引擎（Nutrition Recommender Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank → PostProcess）
// - Labels-first: labels 全链路透传与标准化 merge，支撑推荐解释与观测
// - 目标感知: 打分策略按用户营养目标（减重/维持/增重）切换，可替换为训练后的线性模型
package nutrikit

import "github.com/rushteam/nutrikit/pipeline"

// 轻量 facade：便于用户直接 import "nutrikit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
