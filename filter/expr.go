package filter

import (
	"context"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式过滤活动，表达式为 true 时过滤。
//
//	&filter.ExprFilter{Expr: `item.features.distance == 0.0`}
//	&filter.ExprFilter{Expr: `"adult" in item.meta.categories && user.engagement_score < 0.2`}
type ExprFilter struct {
	Expr string
}

// NewExprFilter 创建表达式过滤器，并提前编译以尽早暴露语法错误。
func NewExprFilter(expr string) (*ExprFilter, error) {
	if _, err := dsl.Compile(expr); err != nil {
		return nil, err
	}
	return &ExprFilter{Expr: expr}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || f.Expr == "" {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}
