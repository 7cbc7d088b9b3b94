package builders

import (
	"fmt"

	"github.com/rushteam/eventrec/config"
	"github.com/rushteam/eventrec/feature"
	"github.com/rushteam/eventrec/filter"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/pkg/conv"
	"github.com/rushteam/eventrec/rank"
	"github.com/rushteam/eventrec/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("rank.fusion", BuildFusionNode)
	config.Register("rerank.explore", BuildExploreNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

// BuildFusionNode 构建融合打分节点。配置了 weights 时使用固定权重，
// 否则由调用方通过 SetWeightProvider 注入学习到的权重。
func BuildFusionNode(cfg map[string]any) (pipeline.Node, error) {
	node := &rank.FusionNode{}
	if raw, ok := cfg["weights"].(map[string]any); ok {
		node.Weights = feature.StaticWeightProvider{W: feature.Weights(conv.MapToFloat64(raw))}
	}
	if raw, ok := cfg["fallback"].(map[string]any); ok {
		node.Fallback = feature.Weights(conv.MapToFloat64(raw))
	}
	return node, nil
}

func BuildExploreNode(cfg map[string]any) (pipeline.Node, error) {
	rate := conv.ConfigGetFloat64(cfg, "rate", rerank.DefaultExploreRate)
	if rate < 0 || rate > 1 {
		return nil, fmt.Errorf("explore rate must be in [0,1], got %v", rate)
	}
	minItems := int(conv.ConfigGetInt64(cfg, "min_items", rerank.DefaultExploreMinItems))
	return rerank.NewExploreNode(rate, minItems), nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{MaxPerCategory: int(conv.ConfigGetInt64(cfg, "max_per_category", 2))}, nil
}

// BuildFilterNode 构建过滤节点。名单类过滤器的存储在运行时通过 SetStore 注入。
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			key := conv.ConfigGet(filterMap, "key", "")
			filters = append(filters, filter.NewBlacklistFilter(ids, nil, key))
		case "user_block":
			keyPrefix := conv.ConfigGet(filterMap, "key_prefix", "")
			filters = append(filters, filter.NewUserBlockFilter(nil, keyPrefix))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, fmt.Errorf("expr filter: %w", err)
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}
