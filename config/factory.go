package config

import (
	"fmt"

	"github.com/rushteam/nutrikit/core"
	"github.com/rushteam/nutrikit/feature"
	"github.com/rushteam/nutrikit/model"
	"github.com/rushteam/nutrikit/pipeline"
	"github.com/rushteam/nutrikit/pkg/conv"
	"github.com/rushteam/nutrikit/rank"
	"github.com/rushteam/nutrikit/recall"
	"github.com/rushteam/nutrikit/rerank"
)

// Deps 是依赖外部实例的 Node 所需的运行期对象。
// 配置文件只描述拓扑与参数，存储/模型/多样性状态由进程装配时注入。
type Deps struct {
	Catalog   core.CatalogStore
	Extractor *feature.Extractor
	Model     model.RankModel
	Tracker   *rerank.Tracker
}

// FactoryWithDeps 返回绑定了 deps 的 NodeFactory：
// 包含注册表中的全部静态 Node，外加 recall.catalog、rank.model、rerank.diversity。
func FactoryWithDeps(deps Deps) *pipeline.NodeFactory {
	f := DefaultFactory()

	f.Register("recall.catalog", func(cfg map[string]interface{}) (pipeline.Node, error) {
		if deps.Catalog == nil {
			return nil, fmt.Errorf("recall.catalog requires a catalog store")
		}
		return &recall.Catalog{
			Store:   deps.Catalog,
			PoolCap: int(conv.ConfigGetInt64(cfg, "pool_cap", 0)),
		}, nil
	})

	f.Register("rank.heuristic", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rank.HeuristicNode{Extractor: deps.Extractor}, nil
	})

	f.Register("rank.model", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rank.ModelNode{Model: deps.Model, Extractor: deps.Extractor}, nil
	})

	f.Register("rerank.diversity", func(cfg map[string]interface{}) (pipeline.Node, error) {
		if deps.Tracker == nil {
			return nil, fmt.Errorf("rerank.diversity requires a tracker instance")
		}
		return &rerank.DiversityNode{Tracker: deps.Tracker}, nil
	})

	return f
}
