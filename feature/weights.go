package feature

import (
	"context"

	"github.com/rushteam/eventrec/tables"
)

// 八个打分特征。
const (
	Distance   = "distance"
	Interest   = "interest"
	Time       = "time"
	Host       = "host"
	Trust      = "trust"
	Popularity = "popularity"
	Collab     = "collab"
	Engagement = "engagement"
)

// Names 是特征的固定顺序，打分明细和解释文案都按这个顺序输出。
var Names = []string{Distance, Interest, Time, Host, Trust, Popularity, Collab, Engagement}

// Weights 是特征名到权重的映射。
type Weights map[string]float64

// Clone 返回副本。
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// AllZero 为空或全部为 0 时返回 true。
func (w Weights) AllZero() bool {
	for _, v := range w {
		if v != 0 {
			return false
		}
	}
	return true
}

// 注意：下面两组默认权重是两个不同的向量，不要合并。
//
// ConfigDefaultWeights 是离线侧的默认值：交互日志为空时权重学习任务原样写出它。
// collab / trust / engagement 为 0。
func ConfigDefaultWeights() Weights {
	return Weights{
		Distance:   0.30,
		Interest:   0.30,
		Time:       0.15,
		Host:       0.15,
		Popularity: 0.10,
		Collab:     0.00,
		Trust:      0.00,
		Engagement: 0.00,
	}
}

// RequestDefaultWeights 是在线打分的兜底值：学习到的权重缺失或全 0 时使用。
// host 为 0.1，collab / trust / engagement 非 0。
func RequestDefaultWeights() Weights {
	return Weights{
		Distance:   0.30,
		Interest:   0.30,
		Time:       0.15,
		Host:       0.10,
		Popularity: 0.10,
		Collab:     0.10,
		Trust:      0.05,
		Engagement: 0.05,
	}
}

// WeightProvider 提供当前生效的学习权重。每次打分都调用一次，
// 离线任务更新权重后无需重启即可生效。
type WeightProvider interface {
	Weights(ctx context.Context) (Weights, error)
}

// StaticWeightProvider 返回固定权重，测试和离线评估用。
type StaticWeightProvider struct {
	W Weights
}

func (p StaticWeightProvider) Weights(ctx context.Context) (Weights, error) {
	return p.W.Clone(), nil
}

// StoreWeightProvider 每次调用都从派生表重新读取 learned_weights。
type StoreWeightProvider struct {
	Tables *tables.Tables
}

func NewStoreWeightProvider(t *tables.Tables) *StoreWeightProvider {
	return &StoreWeightProvider{Tables: t}
}

func (p *StoreWeightProvider) Weights(ctx context.Context) (Weights, error) {
	w, err := p.Tables.LoadWeights(ctx)
	if err != nil {
		return nil, err
	}
	return Weights(w), nil
}

// ActiveWeights 返回本次打分使用的权重：provider 给出的权重非空且不全为 0 时用它，
// 否则用 fallback。第二个返回值表示是否发生了回退。
func ActiveWeights(ctx context.Context, provider WeightProvider, fallback Weights) (Weights, bool, error) {
	if provider == nil {
		return fallback, true, nil
	}
	w, err := provider.Weights(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(w) == 0 || w.AllZero() {
		return fallback, true, nil
	}
	return w, false, nil
}
