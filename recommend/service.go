// Package recommend 是请求时的推荐入口：加载离线表、计算特征、
// 跑 filter → rank.fusion → rerank.explore 链路并组装响应。
package recommend

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/feature"
	"github.com/rushteam/eventrec/filter"
	"github.com/rushteam/eventrec/metrics"
	"github.com/rushteam/eventrec/model"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/rank"
	"github.com/rushteam/eventrec/rerank"
	"github.com/rushteam/eventrec/tables"
)

// Service 处理推荐请求。离线表每个请求重新读取一次，不做缓存。
type Service struct {
	tables   *tables.Tables
	pipeline *pipeline.Pipeline

	weights       feature.WeightProvider
	fallback      feature.Weights
	rand          rerank.Rand
	filterStore   *filter.StoreAdapter
	maxDistanceKm float64
	exploreRate   float64
	exploreMin    int
	explain       bool
	now           func() time.Time

	logger zerolog.Logger
}

type Option func(*Service)

// WithPipeline 使用配置构建的链路替代内置链路。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(s *Service) { s.pipeline = p }
}

func WithWeightProvider(p feature.WeightProvider) Option {
	return func(s *Service) { s.weights = p }
}

// WithDefaultWeights 设置学习权重为空或全 0 时的回退权重。
func WithDefaultWeights(w feature.Weights) Option {
	return func(s *Service) { s.fallback = w.Clone() }
}

func WithRand(r rerank.Rand) Option {
	return func(s *Service) { s.rand = r }
}

func WithFilterStore(a *filter.StoreAdapter) Option {
	return func(s *Service) { s.filterStore = a }
}

func WithMaxDistanceKm(km float64) Option {
	return func(s *Service) { s.maxDistanceKm = km }
}

// WithExploration 设置内置链路的探索概率和最少候选数。
func WithExploration(rate float64, minItems int) Option {
	return func(s *Service) {
		s.exploreRate = rate
		s.exploreMin = minItems
	}
}

func WithExplanation(enabled bool) Option {
	return func(s *Service) { s.explain = enabled }
}

func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService 创建推荐服务。权重默认从 learned_weights 表读取。
func NewService(t *tables.Tables, opts ...Option) *Service {
	s := &Service{
		tables:        t,
		fallback:      feature.RequestDefaultWeights(),
		maxDistanceKm: feature.DefaultMaxDistanceKm,
		exploreRate:   rerank.DefaultExploreRate,
		exploreMin:    rerank.DefaultExploreMinItems,
		explain:       true,
		now:           time.Now,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.weights == nil {
		s.weights = feature.NewStoreWeightProvider(t)
	}
	if s.rand == nil {
		s.rand = rerank.NewRand(time.Now().UnixNano())
	}
	if s.pipeline == nil {
		s.pipeline = &pipeline.Pipeline{Nodes: []pipeline.Node{
			&rank.FusionNode{},
			rerank.NewExploreNode(s.exploreRate, s.exploreMin),
		}}
	}
	s.pipeline.Logger = s.logger
	s.inject()
	return s
}

// inject 把运行时依赖注入到链路中的各个 Node。
func (s *Service) inject() {
	s.pipeline.Each(func(n pipeline.Node) {
		if v, ok := n.(interface{ SetWeightProvider(feature.WeightProvider) }); ok {
			v.SetWeightProvider(s.weights)
		}
		if v, ok := n.(interface{ SetFallback(feature.Weights) }); ok {
			v.SetFallback(s.fallback)
		}
		if v, ok := n.(interface{ SetRand(rerank.Rand) }); ok {
			v.SetRand(s.rand)
		}
		if v, ok := n.(interface{ SetStore(*filter.StoreAdapter) }); ok {
			v.SetStore(s.filterStore)
		}
		if v, ok := n.(interface{ SetLogger(zerolog.Logger) }); ok {
			v.SetLogger(s.logger.With().Str("node", n.Name()).Logger())
		}
	})
}

// Recommend 给请求中的候选活动打分排序。
// 读取离线表或权重失败时返回 UNAVAILABLE 错误；候选为空时返回空结果。
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	defer func() { metrics.RecommendLatency.Observe(time.Since(start).Seconds()) }()
	metrics.RecommendCandidates.Observe(float64(len(req.Events)))

	rctx := &core.RecommendContext{
		RequestID: uuid.NewString(),
		UserID:    req.User.UserID,
		User:      req.User.profile(),
	}
	logger := s.logger.With().Str("request_id", rctx.RequestID).Str("user_id", rctx.UserID).Logger()

	if len(req.Events) == 0 {
		return &Response{Results: []ScoredEvent{}}, nil
	}

	pop, err := s.tables.LoadPopularity(ctx)
	if err != nil {
		return nil, err
	}
	collab, err := s.tables.LoadCollab(ctx)
	if err != nil {
		return nil, err
	}

	extractor := feature.NewCompositeExtractor("event",
		feature.NewContentExtractor(feature.WithMaxDistanceKm(s.maxDistanceKm), feature.WithNow(s.now)),
		&feature.LearnedExtractor{Popularity: pop, Collab: collab},
	)

	items := make([]*core.Item, 0, len(req.Events))
	for _, e := range req.Events {
		ev := e.event()
		features, err := extractor.Extract(ctx, rctx, ev)
		if err != nil {
			return nil, err
		}
		it := core.NewItem(ev.EventID)
		it.Features = features
		it.PutMeta(rerank.MetaCategories, ev.Categories)
		items = append(items, it)
	}

	ranked, err := s.pipeline.Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}

	resp := &Response{Results: make([]ScoredEvent, 0, len(ranked))}
	explored := false
	for _, it := range ranked {
		if it == nil {
			continue
		}
		if _, ok := it.Labels["explored"]; ok {
			explored = true
		}
		out := ScoredEvent{EventID: it.ID, Score: it.Score}
		if s.explain {
			breakdown, _ := it.Meta[rank.MetaBreakdown].([]model.Contribution)
			out.Explanation = Explain(breakdown)
			out.Debug = Debug(breakdown)
		}
		resp.Results = append(resp.Results, out)
	}

	logger.Info().
		Int("candidates", len(req.Events)).
		Int("results", len(resp.Results)).
		Bool("explored", explored).
		Dur("took", time.Since(start)).
		Msg("recommend done")
	return resp, nil
}

// Health 探测底层存储是否可用。
func (s *Service) Health(ctx context.Context) error {
	_, err := s.tables.Store().Get(ctx, s.tables.Key(tables.LearnedWeights))
	if err == nil || core.IsStoreNotFound(err) {
		return nil
	}
	return core.StoreUnavailable("health check", err)
}
