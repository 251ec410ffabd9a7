package recall

import (
	"context"

	"github.com/rushteam/nutrikit/core"
)

// Source 是候选生成源的最小抽象。
// Recall Node 可以直接实现它，也可以组合多个 Source。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
