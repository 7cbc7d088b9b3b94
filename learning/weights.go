package learning

import (
	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/feature"
	"github.com/rushteam/eventrec/pkg/conv"
	"github.com/rushteam/eventrec/tables"
)

// CollabRewardShare 是 collab 特征分到的奖励比例。
const CollabRewardShare = 0.5

// LearnWeights 用启发式归因学习线性权重：
// 每条记录的奖励 r 记给 popularity(+r)、engagement(+r)、collab(+0.5r)，
// 其余特征为 0，最后按总和归一化并保留 4 位小数。
//
// 日志为空时原样返回离线默认权重 feature.ConfigDefaultWeights。
func LearnWeights(records []core.Interaction) tables.WeightTable {
	return learnWeights(records, RewardActionWeights, feature.ConfigDefaultWeights())
}

func learnWeights(records []core.Interaction, reward map[string]float64, defaults feature.Weights) tables.WeightTable {
	if len(records) == 0 {
		return tables.WeightTable(defaults.Clone())
	}

	importance := make(map[string]float64, len(defaults))
	for name := range defaults {
		importance[name] = 0
	}
	for _, name := range feature.Names {
		importance[name] = 0
	}
	for _, r := range records {
		rw := reward[r.Action]
		importance[feature.Popularity] += rw
		importance[feature.Engagement] += rw
		importance[feature.Collab] += rw * CollabRewardShare
	}

	total := 0.0
	for _, name := range sortedKeys(importance) {
		total += importance[name]
	}
	if total == 0 {
		total = 1
	}

	out := make(tables.WeightTable, len(importance))
	for name, v := range importance {
		out[name] = conv.Round4(v / total)
	}
	return out
}
