package filter

import (
	"context"
	"strings"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pkg/utils"
)

// BlockCategoryPrefix 标记屏蔽列表里的类别条目，如 "category:music"。
// 其余条目按活动 ID 匹配。
const BlockCategoryPrefix = "category:"

// UserBlockFilter 过滤用户标记为不感兴趣的活动，或整个类别。
// 命中时在活动上写 "blocked" 标签，值为 "event" 或 "category:<类别>"。
type UserBlockFilter struct {
	Store UserBlockStore

	// KeyPrefix 为空时用 "user_block"，实际 key 为 {KeyPrefix}:{UserID}
	KeyPrefix string
}

type UserBlockStore interface {
	GetUserBlocks(ctx context.Context, userID string, keyPrefix string) ([]string, error)
}

func NewUserBlockFilter(storeAdapter *StoreAdapter, keyPrefix string) *UserBlockFilter {
	f := &UserBlockFilter{KeyPrefix: keyPrefix}
	if storeAdapter != nil {
		f.Store = storeAdapter
	}
	return f
}

func (f *UserBlockFilter) Name() string {
	return "filter.user_block"
}

func (f *UserBlockFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Store == nil || item == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	prefix := f.KeyPrefix
	if prefix == "" {
		prefix = "user_block"
	}
	entries, err := f.Store.GetUserBlocks(ctx, rctx.UserID, prefix)
	if err != nil || len(entries) == 0 {
		return false, err
	}

	reason := matchBlock(entries, item)
	if reason == "" {
		return false, nil
	}
	item.PutLabel("blocked", utils.Label{Value: reason, Source: f.Name()})
	return true, nil
}

// matchBlock 返回命中原因，未命中时为空。类别不区分大小写。
func matchBlock(entries []string, item *core.Item) string {
	cates := item.Categories()
	for _, e := range entries {
		cate, isCate := strings.CutPrefix(e, BlockCategoryPrefix)
		if !isCate {
			if e == item.ID {
				return "event"
			}
			continue
		}
		for _, c := range cates {
			if strings.EqualFold(c, cate) {
				return BlockCategoryPrefix + strings.ToLower(cate)
			}
		}
	}
	return ""
}
