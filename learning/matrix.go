// Package learning 实现离线学习任务：用户-活动矩阵、热度、活跃度、
// 活动相似度、协同过滤分数和线性权重。
//
// 每个任务都从完整交互日志重新计算，并整表覆盖对应的派生表。
// 计算函数是纯函数，Runner 负责读日志、调度和持久化。
package learning

import (
	"sort"

	"github.com/rushteam/eventrec/core"
)

// UserEventMatrix 用户 → 活动 → 累计行为权重。
type UserEventMatrix map[string]map[string]float64

// EventVectors 活动 → 用户 → 权重，是矩阵的转置。
type EventVectors map[string]map[string]float64

// BuildUserEventMatrix 用默认协同过滤词表构建矩阵。
func BuildUserEventMatrix(records []core.Interaction) UserEventMatrix {
	return buildMatrix(records, CollaborativeActionWeights)
}

// buildMatrix 按词表累加；未知行为贡献 0，但 (user, event) 条目仍会出现。
func buildMatrix(records []core.Interaction, vocab map[string]float64) UserEventMatrix {
	m := make(UserEventMatrix)
	for _, r := range records {
		row, ok := m[r.UserID]
		if !ok {
			row = make(map[string]float64)
			m[r.UserID] = row
		}
		row[r.EventID] += vocab[r.Action]
	}
	return m
}

// Transpose 把用户-活动矩阵转为活动向量。
func Transpose(m UserEventMatrix) EventVectors {
	out := make(EventVectors)
	for user, events := range m {
		for event, w := range events {
			vec, ok := out[event]
			if !ok {
				vec = make(map[string]float64)
				out[event] = vec
			}
			vec[user] = w
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
