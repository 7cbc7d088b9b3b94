package learning

import (
	"math"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pkg/conv"
	"github.com/rushteam/eventrec/tables"
)

// ComputePopularity 每个活动的热度 = log(1 + Σ行为权重)，保留 4 位小数。
// 只要出现过就有条目，包括权重全为 0 的活动（值为 0）。
func ComputePopularity(records []core.Interaction) tables.PopularityTable {
	return computePopularity(records, PopularityActionWeights)
}

func computePopularity(records []core.Interaction, vocab map[string]float64) tables.PopularityTable {
	sums := make(map[string]float64)
	for _, r := range records {
		sums[r.EventID] += vocab[r.Action]
	}
	out := make(tables.PopularityTable, len(sums))
	for event, s := range sums {
		out[event] = conv.Round4(math.Log1p(s))
	}
	return out
}

// ComputeEngagement 每个用户的活跃度 = min(Σ行为权重, 1)，保留 4 位小数。
func ComputeEngagement(records []core.Interaction) tables.EngagementTable {
	return computeEngagement(records, EngagementActionWeights)
}

func computeEngagement(records []core.Interaction, vocab map[string]float64) tables.EngagementTable {
	sums := make(map[string]float64)
	for _, r := range records {
		sums[r.UserID] += vocab[r.Action]
	}
	out := make(tables.EngagementTable, len(sums))
	for user, s := range sums {
		out[user] = conv.Round4(math.Min(s, 1.0))
	}
	return out
}
