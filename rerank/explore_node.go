package rerank

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/metrics"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/pkg/utils"
)

const (
	DefaultExploreRate     = 0.1
	DefaultExploreMinItems = 5
)

// Rand 是探索用的随机源，测试里可以替换成确定性的实现。
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// lockedRand 让 *rand.Rand 可以被多个请求并发使用。
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewRand 返回并发安全的随机源。
func NewRand(seed int64) Rand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

// ExploreNode 做 epsilon-greedy 探索：候选数不少于 MinItems 时，
// 以 Rate 的概率随机交换两个不同位置的活动。
// 每次请求最多交换一次，不改变任何活动的分数。
type ExploreNode struct {
	Rate     float64
	MinItems int
	Rand     Rand

	Logger zerolog.Logger
}

func NewExploreNode(rate float64, minItems int) *ExploreNode {
	return &ExploreNode{Rate: rate, MinItems: minItems}
}

func (n *ExploreNode) Name() string        { return "rerank.explore" }
func (n *ExploreNode) Kind() pipeline.Kind { return pipeline.KindReRank }

// SetRand 注入随机源；已设置时不覆盖。
func (n *ExploreNode) SetRand(r Rand) {
	if n.Rand == nil {
		n.Rand = r
	}
}

func (n *ExploreNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	minItems := n.MinItems
	if minItems <= 0 {
		minItems = DefaultExploreMinItems
	}
	size := len(items)
	if size < minItems || size < 2 || n.Rate <= 0 {
		return items, nil
	}
	r := n.Rand
	if r == nil {
		r = defaultRand()
	}
	if r.Float64() >= n.Rate {
		return items, nil
	}

	i := r.Intn(size)
	j := r.Intn(size - 1)
	if j >= i {
		j++
	}
	items[i], items[j] = items[j], items[i]
	metrics.ExplorationSwaps.Inc()

	for _, it := range []*core.Item{items[i], items[j]} {
		if it != nil {
			it.PutLabel("explored", utils.Label{Value: "swap", Source: n.Name()})
		}
	}
	ev := n.Logger.Debug().Int("i", i).Int("j", j)
	if rctx != nil {
		ev = ev.Str("request_id", rctx.RequestID)
	}
	ev.Msg("exploration swap")
	return items, nil
}

var (
	sharedRand     Rand
	sharedRandOnce sync.Once
)

func defaultRand() Rand {
	sharedRandOnce.Do(func() {
		sharedRand = NewRand(time.Now().UnixNano())
	})
	return sharedRand
}

func (n *ExploreNode) SetLogger(l zerolog.Logger) { n.Logger = l }
