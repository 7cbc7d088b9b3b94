package learning

import (
	"github.com/rushteam/eventrec/pkg/conv"
	"github.com/rushteam/eventrec/tables"
)

// ComputeCollabScores 对每个有历史的用户、相似度表中的每个活动 c：
//
//	score(u, c) = Σ_e sim(e, c) × w(u, e)
//
// 只保留正值，保留 4 位小数。候选集合是相似度表的 key，
// 用户交互过的活动如果也在表里同样会被打分。
func ComputeCollabScores(m UserEventMatrix, sim tables.SimilarityTable) tables.CollabTable {
	candidates := sortedKeys(sim)
	out := make(tables.CollabTable)
	for _, user := range sortedKeys(m) {
		history := m[user]
		seen := sortedKeys(history)
		for _, c := range candidates {
			score := 0.0
			for _, e := range seen {
				score += sim[e][c] * history[e]
			}
			if score <= 0 {
				continue
			}
			put(out, user, c, conv.Round4(score))
		}
	}
	return out
}
