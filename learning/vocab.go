package learning

// 四个消费方各自维护行为词表，大小写和拼写互不一致，未命中的行为权重为 0。
// 它们刻意保持为四个独立变量：合并任何两个都会改变已持久化表的含义。
//
//	矩阵/协同过滤  VIEW SAVE REGISTER ATTENDED  （大写，ATTENDED）
//	热度           VIEW SAVE REGISTER ATTEND    （大写，ATTEND）
//	活跃度         view save register attend    （小写）
//	权重学习奖励   view join volunteer attend   （小写，词也不同）
var (
	// CollaborativeActionWeights 用户-活动矩阵的行为权重。
	CollaborativeActionWeights = map[string]float64{
		"VIEW":     1,
		"SAVE":     3,
		"REGISTER": 4,
		"ATTENDED": 5,
	}

	// PopularityActionWeights 热度统计的行为权重。注意这里是 ATTEND 而不是 ATTENDED。
	PopularityActionWeights = map[string]float64{
		"VIEW":     1,
		"SAVE":     3,
		"REGISTER": 4,
		"ATTEND":   5,
	}

	// EngagementActionWeights 用户活跃度的行为权重（小写）。
	EngagementActionWeights = map[string]float64{
		"view":     0.1,
		"save":     0.4,
		"register": 0.7,
		"attend":   1.0,
	}

	// RewardActionWeights 权重学习的奖励值。
	RewardActionWeights = map[string]float64{
		"view":      0.1,
		"join":      0.5,
		"volunteer": 0.7,
		"attend":    1.0,
	}
)

// Vocabularies 汇总一次任务运行使用的四个词表，可由配置覆盖。
type Vocabularies struct {
	Collaborative map[string]float64 `koanf:"collaborative"`
	Popularity    map[string]float64 `koanf:"popularity"`
	Engagement    map[string]float64 `koanf:"engagement"`
	Reward        map[string]float64 `koanf:"reward"`
}

// DefaultVocabularies 返回内置词表的副本。
func DefaultVocabularies() Vocabularies {
	return Vocabularies{
		Collaborative: cloneVocab(CollaborativeActionWeights),
		Popularity:    cloneVocab(PopularityActionWeights),
		Engagement:    cloneVocab(EngagementActionWeights),
		Reward:        cloneVocab(RewardActionWeights),
	}
}

// withDefaults 用内置词表补齐未配置的部分。
func (v Vocabularies) withDefaults() Vocabularies {
	d := DefaultVocabularies()
	if len(v.Collaborative) == 0 {
		v.Collaborative = d.Collaborative
	}
	if len(v.Popularity) == 0 {
		v.Popularity = d.Popularity
	}
	if len(v.Engagement) == 0 {
		v.Engagement = d.Engagement
	}
	if len(v.Reward) == 0 {
		v.Reward = d.Reward
	}
	return v
}

func cloneVocab(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
