// Package feature 负责请求时的特征计算：内容特征（距离、兴趣、时间）、
// 调用方透传特征（host、trust、engagement）、离线学习特征（popularity、collab），
// 以及打分权重的来源与回退。
package feature

import (
	"context"
	"time"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/tables"
)

// Extractor 为单个候选活动抽取特征，采用策略模式。
//
// 使用示例：
//
//	ext := feature.NewCompositeExtractor("event",
//	    feature.NewContentExtractor(),
//	    &feature.LearnedExtractor{Popularity: pop, Collab: collab},
//	)
//	features, _ := ext.Extract(ctx, rctx, ev)
type Extractor interface {
	Extract(ctx context.Context, rctx *core.RecommendContext, ev core.Event) (map[string]float64, error)

	// Name 返回抽取器名称（用于日志/监控）
	Name() string
}

// ContentExtractor 计算内容特征与透传特征：
// distance、interest、time、host、trust、engagement。
type ContentExtractor struct {
	// MaxDistanceKm 距离衰减到 0 的半径
	MaxDistanceKm float64

	// Now 时间源，默认 time.Now
	Now func() time.Time
}

type ContentExtractorOption func(*ContentExtractor)

func WithMaxDistanceKm(km float64) ContentExtractorOption {
	return func(e *ContentExtractor) { e.MaxDistanceKm = km }
}

func WithNow(now func() time.Time) ContentExtractorOption {
	return func(e *ContentExtractor) {
		if now != nil {
			e.Now = now
		}
	}
}

func NewContentExtractor(opts ...ContentExtractorOption) *ContentExtractor {
	e := &ContentExtractor{
		MaxDistanceKm: DefaultMaxDistanceKm,
		Now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *ContentExtractor) Name() string { return "content" }

func (e *ContentExtractor) Extract(ctx context.Context, rctx *core.RecommendContext, ev core.Event) (map[string]float64, error) {
	user := core.NewUserProfile("")
	if rctx != nil {
		user = rctx.GetUserProfile()
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	return map[string]float64{
		Distance:   DistanceScore(user.Latitude, user.Longitude, ev.Latitude, ev.Longitude, e.MaxDistanceKm),
		Interest:   InterestScore(user.Interests, ev.Categories),
		Time:       TimeScore(ev.StartTime, now().UTC()),
		Host:       ev.HostScore,
		Trust:      ev.TrustScore,
		Engagement: user.EngagementScore,
	}, nil
}

// LearnedExtractor 从离线表快照中查 popularity 与 collab，查不到记 0。
// 快照由调用方每个请求加载一次。
type LearnedExtractor struct {
	Popularity tables.PopularityTable
	Collab     tables.CollabTable
}

func (e *LearnedExtractor) Name() string { return "learned" }

func (e *LearnedExtractor) Extract(ctx context.Context, rctx *core.RecommendContext, ev core.Event) (map[string]float64, error) {
	userID := ""
	if rctx != nil {
		userID = rctx.UserID
	}
	return map[string]float64{
		Popularity: e.Popularity[ev.EventID],
		Collab:     e.Collab[userID][ev.EventID],
	}, nil
}

// CustomExtractor 允许用函数自定义抽取逻辑。
type CustomExtractor struct {
	name    string
	extract func(ctx context.Context, rctx *core.RecommendContext, ev core.Event) (map[string]float64, error)
}

func NewCustomExtractor(name string, extract func(ctx context.Context, rctx *core.RecommendContext, ev core.Event) (map[string]float64, error)) *CustomExtractor {
	return &CustomExtractor{name: name, extract: extract}
}

func (e *CustomExtractor) Name() string { return e.name }

func (e *CustomExtractor) Extract(ctx context.Context, rctx *core.RecommendContext, ev core.Event) (map[string]float64, error) {
	if e.extract == nil {
		return nil, nil
	}
	return e.extract(ctx, rctx, ev)
}

// CompositeExtractor 组合多个抽取器，后面的覆盖前面的同名特征。
type CompositeExtractor struct {
	name       string
	extractors []Extractor
}

func NewCompositeExtractor(name string, extractors ...Extractor) *CompositeExtractor {
	return &CompositeExtractor{name: name, extractors: extractors}
}

func (e *CompositeExtractor) Name() string { return e.name }

// Extract 合并所有抽取器的结果，单个抽取器出错时跳过，最后补齐八个特征（缺失为 0）。
func (e *CompositeExtractor) Extract(ctx context.Context, rctx *core.RecommendContext, ev core.Event) (map[string]float64, error) {
	result := make(map[string]float64, len(Names))
	for _, ext := range e.extractors {
		features, err := ext.Extract(ctx, rctx, ev)
		if err != nil {
			continue
		}
		for k, v := range features {
			result[k] = v
		}
	}
	for _, name := range Names {
		if _, ok := result[name]; !ok {
			result[name] = 0
		}
	}
	return result, nil
}
