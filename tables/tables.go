// Package tables 读写离线任务产出的五张派生表。
//
// 每张表是一个 JSON 对象，存放在 core.Store 的单个 key 下，写入即整表替换。
// 读取时：key 不存在或内容无法解码都当作空表（记 warn 日志）；
// 只有存储不可用才返回错误。
package tables

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/metrics"
)

// 表名，同时也是默认的 key。
const (
	Popularity      = "popularity"
	Engagement      = "engagement"
	EventSimilarity = "event_similarity"
	CollabScores    = "collab_scores"
	LearnedWeights  = "learned_weights"
)

// PopularityTable 活动 → log(1+加权行为数)。
type PopularityTable map[string]float64

// EngagementTable 用户 → [0,1] 活跃度。
type EngagementTable map[string]float64

// SimilarityTable 活动 → 活动 → 余弦相似度（对称，只存正值）。
type SimilarityTable map[string]map[string]float64

// CollabTable 用户 → 活动 → 协同过滤分（只存正值）。
type CollabTable map[string]map[string]float64

// WeightTable 特征名 → 权重。
type WeightTable map[string]float64

// Tables 是派生表的读写入口。
type Tables struct {
	store  core.Store
	prefix string
	logger zerolog.Logger
}

type Option func(*Tables)

// WithPrefix 为所有表 key 加前缀，如 "evrec:"。
func WithPrefix(prefix string) Option {
	return func(t *Tables) { t.prefix = prefix }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tables) { t.logger = logger }
}

func New(store core.Store, opts ...Option) *Tables {
	t := &Tables{store: store, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Key 返回表在 Store 中的实际 key。
func (t *Tables) Key(table string) string { return t.prefix + table }

// Store 返回底层存储。
func (t *Tables) Store() core.Store { return t.store }

func (t *Tables) LoadPopularity(ctx context.Context) (PopularityTable, error) {
	out := PopularityTable{}
	return out, t.load(ctx, Popularity, &out)
}

func (t *Tables) SavePopularity(ctx context.Context, v PopularityTable) error {
	return t.save(ctx, Popularity, v, len(v))
}

func (t *Tables) LoadEngagement(ctx context.Context) (EngagementTable, error) {
	out := EngagementTable{}
	return out, t.load(ctx, Engagement, &out)
}

func (t *Tables) SaveEngagement(ctx context.Context, v EngagementTable) error {
	return t.save(ctx, Engagement, v, len(v))
}

// LoadSimilarity 读取相似度表。exists 区分“表不存在”和“表为空”，
// 协同过滤任务在表不存在时跳过。
func (t *Tables) LoadSimilarity(ctx context.Context) (tbl SimilarityTable, exists bool, err error) {
	tbl = SimilarityTable{}
	exists, err = t.loadWithPresence(ctx, EventSimilarity, &tbl)
	return tbl, exists, err
}

func (t *Tables) SaveSimilarity(ctx context.Context, v SimilarityTable) error {
	return t.save(ctx, EventSimilarity, v, len(v))
}

func (t *Tables) LoadCollab(ctx context.Context) (CollabTable, error) {
	out := CollabTable{}
	return out, t.load(ctx, CollabScores, &out)
}

func (t *Tables) SaveCollab(ctx context.Context, v CollabTable) error {
	return t.save(ctx, CollabScores, v, len(v))
}

func (t *Tables) LoadWeights(ctx context.Context) (WeightTable, error) {
	out := WeightTable{}
	return out, t.load(ctx, LearnedWeights, &out)
}

func (t *Tables) SaveWeights(ctx context.Context, v WeightTable) error {
	return t.save(ctx, LearnedWeights, v, len(v))
}

func (t *Tables) load(ctx context.Context, table string, dst any) error {
	_, err := t.loadWithPresence(ctx, table, dst)
	return err
}

func (t *Tables) loadWithPresence(ctx context.Context, table string, dst any) (bool, error) {
	key := t.Key(table)
	data, err := t.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return false, nil
		}
		return false, core.StoreUnavailable("load table "+table, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		t.logger.Warn().Err(err).Str("table", table).Str("key", key).Msg("derived table undecodable, treating as empty")
		resetEmpty(dst)
		return false, nil
	}
	resetNil(dst)
	return true, nil
}

func (t *Tables) save(ctx context.Context, table string, v any, n int) error {
	data, err := json.Marshal(v)
	if err != nil {
		return core.WrapDomainError(core.ModuleTables, core.ErrorCodeInternalError, "tables: encode "+table, err)
	}
	if err := t.store.Set(ctx, t.Key(table), data); err != nil {
		return core.StoreUnavailable("save table "+table, err)
	}
	metrics.SetTableEntries(table, n)
	return nil
}

// resetEmpty 丢弃解码失败时可能写入的部分内容。
func resetEmpty(dst any) {
	switch p := dst.(type) {
	case *PopularityTable:
		*p = PopularityTable{}
	case *EngagementTable:
		*p = EngagementTable{}
	case *SimilarityTable:
		*p = SimilarityTable{}
	case *CollabTable:
		*p = CollabTable{}
	case *WeightTable:
		*p = WeightTable{}
	}
}

// resetNil 把 JSON null 解出的 nil map 换成空 map。
func resetNil(dst any) {
	switch p := dst.(type) {
	case *PopularityTable:
		if *p == nil {
			*p = PopularityTable{}
		}
	case *EngagementTable:
		if *p == nil {
			*p = EngagementTable{}
		}
	case *SimilarityTable:
		if *p == nil {
			*p = SimilarityTable{}
		}
	case *CollabTable:
		if *p == nil {
			*p = CollabTable{}
		}
	case *WeightTable:
		if *p == nil {
			*p = WeightTable{}
		}
	}
}
