// Package dsl 提供基于 CEL 的候选过滤表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/eventrec/core"
)

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	// 编译结果按表达式缓存，同一个过滤器在每个请求里都会被重复执行
	programs sync.Map // map[string]cel.Program
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("user", cel.DynType),
			cel.Variable("params", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Compile 编译表达式并缓存，可用于在加载配置时提前发现语法错误。
func Compile(expr string) (cel.Program, error) {
	if p, ok := programs.Load(expr); ok {
		return p.(cel.Program), nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	programs.Store(expr, prg)
	return prg, nil
}

// Eval 针对单个候选活动求值。
//
// 可用变量：
//   - item.id / item.score / item.features.distance / item.meta.host_score
//   - label.<name>：Label 的 Value
//   - user.user_id / user.interests / user.engagement_score
//   - params：请求参数
//
// 示例：
//   - `item.features.distance == 0.0` → 超出距离范围
//   - `"kids" in item.meta.categories`
//   - `label.blocked != null`
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
}

func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	return &Eval{item: item, rctx: rctx}
}

// Evaluate 执行表达式，返回布尔结果。空表达式视为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	prg, err := Compile(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		// 访问不存在的 key 会报错，表达式里应先用 != null 判断
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

func (e *Eval) buildInput() map[string]any {
	labels := make(map[string]any, len(e.item.Labels))
	for k, v := range e.item.Labels {
		labels[k] = v.Value
	}

	features := make(map[string]any, len(e.item.Features))
	for k, v := range e.item.Features {
		features[k] = v
	}
	meta := make(map[string]any, len(e.item.Meta))
	for k, v := range e.item.Meta {
		if ss, ok := v.([]string); ok {
			meta[k] = toList(ss)
			continue
		}
		meta[k] = v
	}

	item := map[string]any{
		"id":       e.item.ID,
		"score":    e.item.Score,
		"features": features,
		"meta":     meta,
	}

	user := map[string]any{}
	params := map[string]any{}
	if e.rctx != nil {
		p := e.rctx.GetUserProfile()
		user = map[string]any{
			"user_id":          p.UserID,
			"latitude":         p.Latitude,
			"longitude":        p.Longitude,
			"interests":        toList(p.Interests),
			"engagement_score": p.EngagementScore,
		}
		for k, v := range e.rctx.Params {
			params[k] = v
		}
	}

	return map[string]any{
		"item":   item,
		"label":  labels,
		"user":   user,
		"params": params,
	}
}

func toList(ss []string) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}
