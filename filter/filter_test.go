package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/store"
)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(id))
	}
	return out
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFilterNode_Blacklist(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	adapter := NewStoreAdapter(s)
	if err := adapter.PutBlacklist(ctx, "cancelled_events", []string{"e3"}); err != nil {
		t.Fatal(err)
	}

	node := &FilterNode{Filters: []Filter{
		NewBlacklistFilter([]string{"e1"}, adapter, "cancelled_events"),
	}}
	in := items("e1", "e2", "e3", "e4")
	out, err := node.Process(ctx, &core.RecommendContext{UserID: "u1"}, in)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(out); len(got) != 2 || got[0] != "e2" || got[1] != "e4" {
		t.Errorf("Process() = %v, want [e2 e4]", got)
	}
	if lbl, ok := in[0].Labels["filtered"]; !ok || lbl.Source != "filter.blacklist" {
		t.Errorf("filtered label = %+v", in[0].Labels)
	}
}

func TestBlacklistFilter_StructLiteral(t *testing.T) {
	f := &BlacklistFilter{ItemIDs: []string{"e2"}}
	ok, err := f.ShouldFilter(context.Background(), nil, core.NewItem("e2"))
	if err != nil || !ok {
		t.Errorf("ShouldFilter() = %v, %v; want true", ok, err)
	}
}

func TestUserBlockFilter(t *testing.T) {
	ctx := context.Background()
	adapter := NewStoreAdapter(store.NewMemoryStore())
	_ = adapter.PutBlacklist(ctx, "user_block:u1", []string{"e2", "category:Music"})

	node := &FilterNode{Filters: []Filter{NewUserBlockFilter(adapter, "")}}

	build := func() []*core.Item {
		in := items("e1", "e2", "e3", "e4")
		in[0].PutMeta(core.MetaCategories, []string{"tech"})
		in[2].PutMeta(core.MetaCategories, []string{"sports", "music"})
		in[3].PutMeta(core.MetaCategories, "music")
		return in
	}

	in := build()
	out, _ := node.Process(ctx, &core.RecommendContext{UserID: "u1"}, in)
	if got := ids(out); len(got) != 1 || got[0] != "e1" {
		t.Errorf("u1 = %v, want [e1]", got)
	}
	tests := []struct {
		idx  int
		want string
	}{
		{1, "event"},
		{2, "category:music"},
		{3, "category:music"},
	}
	for _, tt := range tests {
		lbl, ok := in[tt.idx].Labels["blocked"]
		if !ok || lbl.Value != tt.want || lbl.Source != "filter.user_block" {
			t.Errorf("%s blocked label = %+v, want %s", in[tt.idx].ID, lbl, tt.want)
		}
	}
	if _, ok := in[0].Labels["blocked"]; ok {
		t.Errorf("e1 should not carry a blocked label")
	}

	out, _ = node.Process(ctx, &core.RecommendContext{UserID: "u2"}, build())
	if len(out) != 4 {
		t.Errorf("u2 = %v, want all kept", ids(out))
	}
}

func TestExprFilter(t *testing.T) {
	ctx := context.Background()
	f, err := NewExprFilter(`item.features.distance == 0.0`)
	if err != nil {
		t.Fatal(err)
	}

	near := core.NewItem("near")
	near.Features["distance"] = 0.8
	far := core.NewItem("far")
	far.Features["distance"] = 0

	out, _ := (&FilterNode{Filters: []Filter{f}}).Process(ctx, &core.RecommendContext{}, []*core.Item{near, far})
	if got := ids(out); len(got) != 1 || got[0] != "near" {
		t.Errorf("Process() = %v, want [near]", got)
	}

	if _, err := NewExprFilter(`item.features.distance ==`); err == nil {
		t.Error("NewExprFilter(invalid) expected error")
	}
}

type errFilter struct{}

func (errFilter) Name() string { return "filter.err" }
func (errFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return true, errors.New("backend down")
}

func TestFilterNode_ErrorKeepsItem(t *testing.T) {
	node := &FilterNode{Filters: []Filter{errFilter{}}}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, items("e1", "e2"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 2 {
		t.Errorf("Process() = %v, want both kept", ids(out))
	}
}

func TestFilterNode_SetStore(t *testing.T) {
	ctx := context.Background()
	adapter := NewStoreAdapter(store.NewMemoryStore())
	_ = adapter.PutBlacklist(ctx, "cancelled_events", []string{"e1"})
	_ = adapter.PutBlacklist(ctx, "user_block:u1", []string{"e2"})

	node := &FilterNode{Filters: []Filter{
		NewBlacklistFilter(nil, nil, "cancelled_events"),
		NewUserBlockFilter(nil, ""),
	}}
	node.SetStore(adapter)

	out, _ := node.Process(ctx, &core.RecommendContext{UserID: "u1"}, items("e1", "e2", "e3"))
	if got := ids(out); len(got) != 1 || got[0] != "e3" {
		t.Errorf("Process() = %v, want [e3]", got)
	}
}
