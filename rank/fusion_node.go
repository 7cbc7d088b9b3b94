// Package rank 提供排序 Node：按融合分数打分并稳定降序排列。
package rank

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/feature"
	"github.com/rushteam/eventrec/metrics"
	"github.com/rushteam/eventrec/model"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/pkg/utils"
)

// MetaBreakdown 是 item.Meta 中存放逐特征明细（[]model.Contribution）的 key。
const MetaBreakdown = "breakdown"

// FusionNode 用线性融合模型给候选活动打分：
//   - 每次 Process 都从 Weights 重新取一次权重，空或全 0 时用 Fallback
//   - 写入 item.Score（4 位小数）、Meta["breakdown"]、label rank_model
//   - 按分数稳定降序排序，同分保持输入顺序
type FusionNode struct {
	Weights  feature.WeightProvider
	Fallback feature.Weights

	Logger zerolog.Logger
}

func (n *FusionNode) Name() string        { return "rank.fusion" }
func (n *FusionNode) Kind() pipeline.Kind { return pipeline.KindRank }

// SetWeightProvider 在配置构建后注入权重来源；已设置时不覆盖。
func (n *FusionNode) SetWeightProvider(p feature.WeightProvider) {
	if n.Weights == nil {
		n.Weights = p
	}
}

func (n *FusionNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	fallback := n.Fallback
	if len(fallback) == 0 {
		fallback = feature.RequestDefaultWeights()
	}
	weights, fellBack, err := feature.ActiveWeights(ctx, n.Weights, fallback)
	if err != nil {
		return nil, err
	}
	source := "learned"
	if fellBack {
		source = "default"
		metrics.WeightFallbacks.Inc()
		n.Logger.Debug().Msg("learned weights empty or all zero, using default weights")
	}

	m := model.NewLinearModel(weights)
	for _, it := range items {
		if it == nil {
			continue
		}
		score, breakdown := m.Explain(it.Features)
		it.Score = score
		it.PutMeta(MetaBreakdown, breakdown)
		it.PutLabel("rank_model", utils.Label{Value: m.Name() + ":" + source, Source: "rank"})
	}

	SortByScore(items)
	return items, nil
}

// SortByScore 按分数稳定降序排序，nil 排在最后。
func SortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
}

func (n *FusionNode) SetLogger(l zerolog.Logger) { n.Logger = l }

// SetFallback 设置回退权重；配置里已给出 fallback 时不覆盖。
func (n *FusionNode) SetFallback(w feature.Weights) {
	if len(n.Fallback) == 0 {
		n.Fallback = w.Clone()
	}
}
