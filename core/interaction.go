package core

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
)

// Interaction 是一条用户行为记录，写入后不可变。
//
// Action 的取值没有统一词表：各个消费方（矩阵、热度、活跃度、权重学习）
// 各自维护大小写和拼写都不同的词表，未命中的 action 权重为 0。
type Interaction struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`

	// 无法解析的历史时间戳原样保留，重新编码时写回
	rawTimestamp string
}

// 历史日志中的时间戳可能不带时区（按 UTC 处理），也可能用空格分隔日期和时间。
var interactionTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// RawTimestamp 返回无法解析时保留的原始时间戳文本，可解析时为空。
func (i Interaction) RawTimestamp() string { return i.rawTimestamp }

// UnmarshalJSON 兼容多种 ISO-8601 写法。单条记录的时间戳无法解析时
// Timestamp 保持零值并保留原文，不让整个日志解码失败。
func (i *Interaction) UnmarshalJSON(data []byte) error {
	var raw struct {
		UserID    string `json:"user_id"`
		EventID   string `json:"event_id"`
		Action    string `json:"action"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Interaction{UserID: raw.UserID, EventID: raw.EventID, Action: raw.Action}
	if raw.Timestamp == "" {
		return nil
	}
	for _, layout := range interactionTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw.Timestamp, time.UTC); err == nil {
			i.Timestamp = t.UTC()
			return nil
		}
	}
	i.rawTimestamp = raw.Timestamp
	return nil
}

// MarshalJSON 对保留了原始时间戳的记录写回原文。
func (i Interaction) MarshalJSON() ([]byte, error) {
	type plain Interaction
	if i.Timestamp.IsZero() && i.rawTimestamp != "" {
		return json.Marshal(struct {
			UserID    string `json:"user_id"`
			EventID   string `json:"event_id"`
			Action    string `json:"action"`
			Timestamp string `json:"timestamp"`
		}{i.UserID, i.EventID, i.Action, i.rawTimestamp})
	}
	return json.Marshal(plain(i))
}

// InteractionLog 是交互日志的领域接口：只追加，全量读取。
type InteractionLog interface {
	// Append 持久化一条记录；Timestamp 由实现在写入时设为当前 UTC 时间，
	// 调用方传入的值被忽略。已有日志无法解码时返回错误且不改动日志。
	Append(ctx context.Context, rec Interaction) error

	// LoadAll 按写入顺序返回全部记录。
	// 日志不存在、为空或无法解码时返回空切片，不报错；
	// 只有存储不可用时返回 ErrStoreUnavailable。
	LoadAll(ctx context.Context) ([]Interaction, error)
}
