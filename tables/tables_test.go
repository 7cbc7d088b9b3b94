package tables

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/store"
)

type brokenStore struct {
	*store.MemoryStore
}

func (b *brokenStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("i/o timeout")
}

func TestTables_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tbl := New(store.NewMemoryStore(), WithPrefix("evrec:"))

	if err := tbl.SavePopularity(ctx, PopularityTable{"e1": 1.0986}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SaveWeights(ctx, WeightTable{"popularity": 0.4}); err != nil {
		t.Fatal(err)
	}

	pop, err := tbl.LoadPopularity(ctx)
	if err != nil || pop["e1"] != 1.0986 {
		t.Errorf("LoadPopularity() = %v, %v", pop, err)
	}
	w, err := tbl.LoadWeights(ctx)
	if err != nil || w["popularity"] != 0.4 {
		t.Errorf("LoadWeights() = %v, %v", w, err)
	}

	// 前缀生效
	if _, err := tbl.Store().Get(ctx, "evrec:popularity"); err != nil {
		t.Errorf("table not stored under prefixed key: %v", err)
	}
}

func TestTables_MissingOrCorruptIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	tbl := New(s)

	_ = s.Set(ctx, Popularity, []byte(`{"e1": 1.2, "e2": `))
	_ = s.Set(ctx, CollabScores, []byte(`null`))

	pop, err := tbl.LoadPopularity(ctx)
	if err != nil || pop == nil || len(pop) != 0 {
		t.Errorf("LoadPopularity(corrupt) = %v, %v; want empty", pop, err)
	}
	collab, err := tbl.LoadCollab(ctx)
	if err != nil || collab == nil || len(collab) != 0 {
		t.Errorf("LoadCollab(null) = %v, %v; want empty", collab, err)
	}
	eng, err := tbl.LoadEngagement(ctx)
	if err != nil || eng == nil || len(eng) != 0 {
		t.Errorf("LoadEngagement(missing) = %v, %v; want empty", eng, err)
	}
}

func TestTables_SimilarityPresence(t *testing.T) {
	ctx := context.Background()
	tbl := New(store.NewMemoryStore())

	_, exists, err := tbl.LoadSimilarity(ctx)
	if err != nil || exists {
		t.Fatalf("LoadSimilarity(missing) exists = %v, err = %v", exists, err)
	}

	_ = tbl.SaveSimilarity(ctx, SimilarityTable{})
	sim, exists, err := tbl.LoadSimilarity(ctx)
	if err != nil || !exists || len(sim) != 0 {
		t.Fatalf("LoadSimilarity(empty) = %v, exists = %v, err = %v", sim, exists, err)
	}
}

func TestTables_UnavailablePropagates(t *testing.T) {
	ctx := context.Background()
	tbl := New(&brokenStore{store.NewMemoryStore()})

	if _, err := tbl.LoadWeights(ctx); !core.IsUnavailable(err) {
		t.Errorf("LoadWeights() error = %v, want unavailable", err)
	}
	if _, _, err := tbl.LoadSimilarity(ctx); !core.IsUnavailable(err) {
		t.Errorf("LoadSimilarity() error = %v, want unavailable", err)
	}
}
