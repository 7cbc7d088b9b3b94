package rerank

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rushteam/eventrec/core"
)

type scriptedRand struct {
	floats []float64
	ints   []int
}

func (s *scriptedRand) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRand) Intn(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		panic("Intn out of range")
	}
	return v
}

func events(n int) []*core.Item {
	out := make([]*core.Item, 0, n)
	for i := 0; i < n; i++ {
		it := core.NewItem(string(rune('a' + i)))
		it.Score = float64(n - i)
		out = append(out, it)
	}
	return out
}

func order(items []*core.Item) string {
	s := ""
	for _, it := range items {
		s += it.ID
	}
	return s
}

func TestExploreNode(t *testing.T) {
	tests := []struct {
		name string
		n    int
		rand *scriptedRand
		want string
	}{
		{"below min items", 4, &scriptedRand{}, "abcd"},
		{"no explore", 5, &scriptedRand{floats: []float64{0.1}}, "abcde"},
		{"swap", 5, &scriptedRand{floats: []float64{0.05}, ints: []int{1, 3}}, "aecdb"},
		{"j shifted past i", 5, &scriptedRand{floats: []float64{0.0}, ints: []int{2, 2}}, "abdce"},
		{"j before i", 6, &scriptedRand{floats: []float64{0.09}, ints: []int{5, 0}}, "fbcdea"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &ExploreNode{Rate: 0.1, MinItems: 5, Rand: tt.rand}
			in := events(tt.n)
			out, err := node.Process(context.Background(), &core.RecommendContext{}, in)
			if err != nil {
				t.Fatal(err)
			}
			if got := order(out); got != tt.want {
				t.Errorf("order = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExploreNode_ScoresUnchanged(t *testing.T) {
	node := &ExploreNode{Rate: 1, MinItems: 5, Rand: &scriptedRand{floats: []float64{0.5}, ints: []int{0, 3}}}
	out, _ := node.Process(context.Background(), nil, events(5))
	want := map[string]float64{"a": 5, "b": 4, "c": 3, "d": 2, "e": 1}
	for _, it := range out {
		if it.Score != want[it.ID] {
			t.Errorf("%s score = %v, want %v", it.ID, it.Score, want[it.ID])
		}
	}
	if _, ok := out[0].Labels["explored"]; !ok {
		t.Error("swapped item should carry explored label")
	}
}

func TestExploreNode_Rate(t *testing.T) {
	node := &ExploreNode{Rate: DefaultExploreRate, MinItems: DefaultExploreMinItems, Rand: rand.New(rand.NewSource(42))}
	const runs = 10000
	swapped := 0
	for i := 0; i < runs; i++ {
		out, _ := node.Process(context.Background(), nil, events(5))
		if order(out) != "abcde" {
			swapped++
		}
	}
	rate := float64(swapped) / runs
	if rate < 0.08 || rate > 0.12 {
		t.Errorf("exploration rate = %v, want about 0.1", rate)
	}
}

func TestExploreNode_SetRand(t *testing.T) {
	first := &scriptedRand{floats: []float64{0.99}}
	node := &ExploreNode{Rate: 0.1}
	node.SetRand(first)
	node.SetRand(NewRand(1))
	if node.Rand != first {
		t.Error("SetRand should not replace an existing source")
	}
}

func TestTopNNode(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "abcde"},
		{3, "abc"},
		{10, "abcde"},
	}
	for _, tt := range tests {
		out, _ := (&TopNNode{N: tt.n}).Process(context.Background(), nil, events(5))
		if got := order(out); got != tt.want {
			t.Errorf("TopN(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestDiversity(t *testing.T) {
	in := events(5)
	cats := []string{"music", "music", "music", "sports", ""}
	for i, c := range cats {
		if c != "" {
			in[i].PutMeta(MetaCategories, []string{c, "outdoor"})
		}
	}
	out, _ := (&Diversity{MaxPerCategory: 2}).Process(context.Background(), nil, in)
	if got := order(out); got != "abdec" {
		t.Errorf("order = %s, want abdec", got)
	}
	if lbl := out[4].Labels["demoted"]; lbl.Value != "music" {
		t.Errorf("demoted label = %+v", lbl)
	}
}
