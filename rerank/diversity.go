package rerank

import (
	"context"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/pkg/utils"
)

// MetaCategories 是 item.Meta 中存放活动类别（[]string）的 key。
const MetaCategories = core.MetaCategories

// Diversity 按主类别（第一个类别）打散：同一类别在前面最多出现 MaxPerCategory 次，
// 超出的活动保持相对顺序移到末尾。不丢弃任何候选。
type Diversity struct {
	MaxPerCategory int // 默认 2
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	limit := n.MaxPerCategory
	if limit <= 0 {
		limit = 2
	}

	seen := make(map[string]int, 16)
	head := make([]*core.Item, 0, len(items))
	var tail []*core.Item

	for _, it := range items {
		if it == nil {
			continue
		}
		cate := primaryCategory(it)
		if cate == "" {
			head = append(head, it)
			continue
		}
		seen[cate]++
		if seen[cate] > limit {
			it.PutLabel("demoted", utils.Label{Value: cate, Source: n.Name()})
			tail = append(tail, it)
			continue
		}
		head = append(head, it)
	}

	return append(head, tail...), nil
}

func primaryCategory(it *core.Item) string {
	if cates := it.Categories(); len(cates) > 0 {
		return cates[0]
	}
	return ""
}
