// Package interaction 实现只追加的交互日志。
//
// 整个日志以一个 JSON 数组存放在 core.Store 的单个 key 下，追加即
// “读全量、追加、写全量”。同一进程内的追加由互斥锁串行化；跨进程
// 的写入者需要自行保证单写。
package interaction

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/metrics"
)

// DefaultKey 是交互日志在 Store 中的 key。
const DefaultKey = "interactions"

// StoreLog 是基于 core.Store 的 InteractionLog 实现。
type StoreLog struct {
	store  core.Store
	key    string
	logger zerolog.Logger
	now    func() time.Time

	mu sync.Mutex
}

type Option func(*StoreLog)

// WithKey 指定日志所在的 key。
func WithKey(key string) Option {
	return func(l *StoreLog) {
		if key != "" {
			l.key = key
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *StoreLog) { l.logger = logger }
}

// WithClock 替换时间源，测试用。
func WithClock(now func() time.Time) Option {
	return func(l *StoreLog) {
		if now != nil {
			l.now = now
		}
	}
}

func NewStoreLog(store core.Store, opts ...Option) *StoreLog {
	l := &StoreLog{
		store:  store,
		key:    DefaultKey,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Key 返回日志所在的 key。
func (l *StoreLog) Key() string { return l.key }

// Append 追加一条记录，Timestamp 一律设为写入时的 UTC 时间。
// 写失败返回 UNAVAILABLE；已有日志无法解码时返回 INTERNAL_ERROR，
// 日志保持原样。
func (l *StoreLog) Append(ctx context.Context, rec core.Interaction) error {
	_, err := l.Add(ctx, rec)
	return err
}

// Add 与 Append 相同，额外返回实际写入的记录。
func (l *StoreLog) Add(ctx context.Context, rec core.Interaction) (core.Interaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec = core.Interaction{
		UserID:    rec.UserID,
		EventID:   rec.EventID,
		Action:    rec.Action,
		Timestamp: l.now().UTC(),
	}

	records, err := l.load(ctx, true)
	if err != nil {
		return core.Interaction{}, err
	}
	records = append(records, rec)

	data, err := json.Marshal(records)
	if err != nil {
		return core.Interaction{}, core.WrapDomainError(core.ModuleInteraction, core.ErrorCodeInternalError, "interaction: encode log", err)
	}
	if err := l.store.Set(ctx, l.key, data); err != nil {
		return core.Interaction{}, core.StoreUnavailable("append interaction", err)
	}

	metrics.InteractionsAppended.WithLabelValues(rec.Action).Inc()
	return rec, nil
}

// Record 是 Append 的便捷形式。
func (l *StoreLog) Record(ctx context.Context, userID, eventID, action string) error {
	return l.Append(ctx, core.Interaction{
		UserID:  userID,
		EventID: eventID,
		Action:  action,
	})
}

// LoadAll 按写入顺序返回全部记录，日志无法解码时视为空。
func (l *StoreLog) LoadAll(ctx context.Context) ([]core.Interaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx, false)
}

// strict 为 true 时解码失败返回错误，供写路径使用。
func (l *StoreLog) load(ctx context.Context, strict bool) ([]core.Interaction, error) {
	data, err := l.store.Get(ctx, l.key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []core.Interaction{}, nil
		}
		return nil, core.StoreUnavailable("load interactions", err)
	}
	if len(data) == 0 {
		return []core.Interaction{}, nil
	}

	var records []core.Interaction
	if err := json.Unmarshal(data, &records); err != nil {
		if strict {
			return nil, core.WrapDomainError(core.ModuleInteraction, core.ErrorCodeInternalError,
				"interaction: existing log undecodable, refusing to overwrite", err)
		}
		l.logger.Warn().Err(err).Str("key", l.key).Msg("interaction log undecodable, treating as empty")
		return []core.Interaction{}, nil
	}
	if records == nil {
		records = []core.Interaction{}
	}
	return records, nil
}

var _ core.InteractionLog = (*StoreLog)(nil)
