package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该活动就会被过滤掉。
type FilterNode struct {
	Filters []Filter

	// Logger 记录过滤器错误，空值时不输出
	Logger zerolog.Logger
}

func (n *FilterNode) Name() string {
	return "filter"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	filteredCount := 0

	for _, item := range items {
		if item == nil {
			continue
		}

		shouldFilter := false
		filterReason := ""

		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				// 过滤器错误时记录但不中断流程
				n.Logger.Warn().Err(err).Str("filter", f.Name()).Str("event_id", item.ID).Msg("filter failed, item kept")
				continue
			}
			if ok {
				shouldFilter = true
				filterReason = f.Name()
				break
			}
		}

		if shouldFilter {
			filteredCount++
			item.PutLabel("filtered", utils.Label{
				Value:  "true",
				Source: filterReason,
			})
			continue
		}

		out = append(out, item)
	}

	if filteredCount > 0 {
		n.Logger.Debug().Int("filtered", filteredCount).Int("kept", len(out)).Msg("candidates filtered")
	}
	return out, nil
}

// SetStore 给配置构建出来的、尚未绑定存储的名单过滤器注入存储。
func (n *FilterNode) SetStore(a *StoreAdapter) {
	if a == nil {
		return
	}
	for _, f := range n.Filters {
		switch v := f.(type) {
		case *BlacklistFilter:
			if v.Store == nil {
				v.Store = a
			}
		case *UserBlockFilter:
			if v.Store == nil {
				v.Store = a
			}
		}
	}
}

func (n *FilterNode) SetLogger(l zerolog.Logger) { n.Logger = l }
