package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/eventrec/core"
)

// Pipeline 把在线推荐拆成可组合的 Node 链：filter → rank → rerank。
type Pipeline struct {
	Nodes []Node

	// Logger 为空值时不输出
	Logger zerolog.Logger
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		start := time.Now()
		in := len(cur)
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		p.Logger.Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", in).
			Int("out", len(next)).
			Dur("took", time.Since(start)).
			Msg("pipeline node done")
		cur = next
	}
	return cur, nil
}

// Each 遍历所有 Node，用于在构建后注入运行时依赖。
func (p *Pipeline) Each(fn func(Node)) {
	for _, n := range p.Nodes {
		fn(n)
	}
}
