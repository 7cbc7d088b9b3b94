package model

// RankModel 是排序阶段的最小抽象：输入特征，输出一个可比较的分数。
type RankModel interface {
	Name() string
	Predict(features map[string]float64) (float64, error)
}

// Contribution 是单个特征对分数的贡献，三个数值都保留 4 位小数。
type Contribution struct {
	Feature      string  `json:"-"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Explainer 是可以给出逐特征贡献明细的模型。
type Explainer interface {
	RankModel
	Explain(features map[string]float64) (float64, []Contribution)
}
