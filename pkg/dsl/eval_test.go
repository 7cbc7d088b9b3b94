package dsl

import (
	"testing"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pkg/utils"
)

func TestEval_Evaluate(t *testing.T) {
	item := core.NewItem("e1")
	item.Score = 0.72
	item.Features["distance"] = 0
	item.Features["interest"] = 0.5
	item.PutMeta("categories", []string{"music", "outdoor"})
	item.PutLabel("rank_model", utils.Label{Value: "linear", Source: "rank"})

	rctx := &core.RecommendContext{
		UserID: "u1",
		User:   &core.UserProfile{UserID: "u1", Interests: []string{"music"}, EngagementScore: 0.1},
		Params: map[string]any{"scene": "home"},
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{`item.features.distance == 0.0`, true},
		{`item.score > 0.7`, true},
		{`"outdoor" in item.meta.categories`, true},
		{`"kids" in item.meta.categories`, false},
		{`label.rank_model == "linear"`, true},
		{`"music" in user.interests && user.engagement_score < 0.2`, true},
		{`params.scene == "search"`, false},
		{`item.id.startsWith("e")`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := NewEval(item, rctx).Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEval_Errors(t *testing.T) {
	item := core.NewItem("e1")
	tests := []string{
		`item.score >`,         // 语法错误
		`item.id`,              // 非布尔结果
		`label.missing == "x"`, // 不存在的 key
	}
	for _, expr := range tests {
		if _, err := NewEval(item, nil).Evaluate(expr); err == nil {
			t.Errorf("Evaluate(%q) expected error", expr)
		}
	}
}

func TestCompile_Cached(t *testing.T) {
	p1, err := Compile(`item.score > 0.5`)
	if err != nil {
		t.Fatal(err)
	}
	p2, _ := Compile(`item.score > 0.5`)
	if p1 != p2 {
		t.Error("Compile() should return the cached program")
	}
}
