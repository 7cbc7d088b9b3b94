package learning

import (
	"gonum.org/v1/gonum/floats"

	"github.com/rushteam/eventrec/pkg/conv"
	"github.com/rushteam/eventrec/tables"
)

// CosineSimilarity 计算两个稀疏向量（用户 → 权重）的余弦相似度。
// 点积只在共同用户上累加，模长用各自的全部分量；没有共同用户或任一模长为 0 时返回 0。
func CosineSimilarity(v1, v2 map[string]float64) float64 {
	// 按用户排序遍历，浮点累加顺序固定，同一份日志总是得到同一张表
	a := make([]float64, 0, len(v1))
	b := make([]float64, 0, len(v1))
	for _, user := range sortedKeys(v1) {
		if w2, ok := v2[user]; ok {
			a = append(a, v1[user])
			b = append(b, w2)
		}
	}
	if len(a) == 0 {
		return 0
	}

	n1 := floats.Norm(values(v1), 2)
	n2 := floats.Norm(values(v2), 2)
	if n1 == 0 || n2 == 0 {
		return 0
	}
	return floats.Dot(a, b) / (n1 * n2)
}

func values(m map[string]float64) []float64 {
	out := make([]float64, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, m[k])
	}
	return out
}

// ComputeEventSimilarity 对每一对活动计算余弦相似度，只保留正值，双向写入，不含自身。
// 复杂度是活动数的平方。
func ComputeEventSimilarity(m UserEventMatrix) tables.SimilarityTable {
	vectors := Transpose(m)
	events := sortedKeys(vectors)

	out := make(tables.SimilarityTable)
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			e1, e2 := events[i], events[j]
			sim := CosineSimilarity(vectors[e1], vectors[e2])
			if sim <= 0 {
				continue
			}
			sim = conv.Round4(sim)
			// 四舍五入后可能为 0
			if sim <= 0 {
				continue
			}
			put(out, e1, e2, sim)
			put(out, e2, e1, sim)
		}
	}
	return out
}

func put(t map[string]map[string]float64, a, b string, v float64) {
	row, ok := t[a]
	if !ok {
		row = make(map[string]float64)
		t[a] = row
	}
	row[b] = v
}
