package rerank

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rushteam/nutrikit/core"
	"github.com/rushteam/nutrikit/pipeline"
	"github.com/rushteam/nutrikit/pkg/utils"
)

// recencyCap 是新近度表的最大条目数，超出时逐出最旧一条。
const recencyCap = 50

// Tracker 是进程级的多样性状态：记录最近出现过的食材与类别曝光计数，
// 对重复出现与类别扎堆给出乘性惩罚。
//
// 状态对所有用户、所有请求共享——这是全局的防重复信号，不是个性化信号。
// 并发排序会同时读写这里的两张表，读-改-写序列由互斥锁保护。
// 状态只存在内存里，不落盘；Reset 供运维/测试显式调用，正常请求处理从不调用。
type Tracker struct {
	mu            sync.Mutex
	clock         core.Clock
	lastShown     map[int64]time.Time
	categoryCount map[core.FoodCategory]int64
	total         int64
}

// NewTracker 创建多样性追踪器。clock 为 nil 时使用系统时钟。
func NewTracker(clock core.Clock) *Tracker {
	if clock == nil {
		clock = core.SystemClock
	}
	return &Tracker{
		clock:         clock,
		lastShown:     make(map[int64]time.Time, recencyCap),
		categoryCount: make(map[core.FoodCategory]int64, 16),
	}
}

// RecordShown 记录一次食材出现：刷新最近出现时间并累加类别计数。
// 新近度表超出上限时线性扫描逐出最旧的一条（规模固定为 50，无需更复杂的结构）。
func (t *Tracker) RecordShown(itemID int64, category core.FoodCategory) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock()
	if _, exists := t.lastShown[itemID]; !exists && len(t.lastShown) >= recencyCap {
		var oldestID int64
		var oldestAt time.Time
		first := true
		for id, at := range t.lastShown {
			if first || at.Before(oldestAt) {
				oldestID, oldestAt = id, at
				first = false
			}
		}
		delete(t.lastShown, oldestID)
	}
	t.lastShown[itemID] = now
	t.categoryCount[category]++
	t.total++
}

// Penalty 返回 (0,1] 的乘性惩罚：新近度惩罚 × 类别集中度惩罚。
//
// 新近度（距上次出现）：<24h → 0.3；<72h → 0.6；<168h → 0.8；否则 1.0。
// 类别集中度（该类别占全部记录的份额）：>40% → 0.7；(30%,40%] → 0.85；否则 1.0。
func (t *Tracker) Penalty(itemID int64, category core.FoodCategory) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := 1.0
	if at, ok := t.lastShown[itemID]; ok {
		switch since := t.clock().Sub(at); {
		case since < 24*time.Hour:
			p *= 0.3
		case since < 72*time.Hour:
			p *= 0.6
		case since < 168*time.Hour:
			p *= 0.8
		}
	}

	if t.total > 0 {
		share := float64(t.categoryCount[category]) / float64(t.total)
		switch {
		case share > 0.4:
			p *= 0.7
		case share > 0.3:
			p *= 0.85
		}
	}
	return p
}

// Reset 原子地清空全部状态。仅供运维/测试使用。
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastShown = make(map[int64]time.Time, recencyCap)
	t.categoryCount = make(map[core.FoodCategory]int64, 16)
	t.total = 0
}

// DiversityNode 把 Tracker 的惩罚乘进分数。
// 惩罚 < 1 时写入 labels：diversity。
type DiversityNode struct {
	Tracker *Tracker
}

func (n *DiversityNode) Name() string        { return "rerank.diversity" }
func (n *DiversityNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *DiversityNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Tracker == nil {
		return items, nil
	}
	for _, it := range items {
		if it == nil || it.Grocery == nil {
			continue
		}
		p := n.Tracker.Penalty(it.Grocery.ID, it.Grocery.Category)
		if p < 1 {
			it.Score *= p
			it.PutLabel("diversity", utils.Label{Value: fmt.Sprintf("%.2f", p), Source: "rerank"})
		}
	}
	return items, nil
}
