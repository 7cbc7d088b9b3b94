// Package filter 在打分前剔除不该出现的候选活动。
//
// 过滤器出错时只记录，不中断排序：宁可多推一个，也不让整个请求失败。
package filter

import (
	"context"

	"github.com/rushteam/eventrec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
