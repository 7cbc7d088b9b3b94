package rerank

import (
	"context"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序（和探索）之后限制返回的活动数量。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.FusionNode{...},         // 打分排序
//	        &rerank.ExploreNode{...},      // 探索
//	        &rerank.TopNNode{N: 20},       // 截取 Top 20
//	    },
//	}
//
// 截断放在探索之后：被交换到后面的活动仍可能被截掉。
type TopNNode struct {
	// N 要保留的活动数量；N <= 0 或 N >= len(items) 时不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
